package sema

import (
	"vela/internal/ast"
	"vela/internal/scope"
	"vela/internal/types"
)

// CreateStmtSema dispatches on the surface statement's kind.
func (b *Binder) CreateStmtSema(id ast.StmtID, sc scope.ScopeID) *Stmt {
	s := b.AST.Stmts.Get(id)
	if s == nil {
		return &Stmt{Kind: StmtInvalid}
	}
	switch s.Kind {
	case ast.StmtBlock:
		children, _ := b.bindBlock(s.Block, sc)
		return &Stmt{Kind: StmtBlock, Span: s.Span, Scope: sc, Children: children}

	case ast.StmtLet:
		declared := types.NoTypeID
		if s.Declared.IsValid() {
			declared = b.BindTypeExpr(s.Declared, sc)
		}
		var init *Expr
		if s.Init.IsValid() {
			init = b.CreateExprSema(s.Init, sc)
		}
		varType := declared
		if !varType.IsValid() && init != nil {
			varType = init.Info.Type
		}
		flags := scope.FlagDefined
		if s.Mutable {
			flags |= scope.FlagMutable
		}
		symID := b.collect(b.Table.DeclareSymbol(scope.Symbol{
			Name: s.Name, Kind: scope.SymLocal, Category: scope.CatStatic,
			Scope: sc, Span: s.Span, Type: varType, Flags: flags,
		}))
		return &Stmt{Kind: StmtVar, Span: s.Span, Scope: sc, Var: symID, Init: init}

	case ast.StmtExpr:
		return &Stmt{Kind: StmtExprStmt, Span: s.Span, Scope: sc, Expr: b.CreateExprSema(s.Expr, sc)}

	case ast.StmtAssign:
		return &Stmt{
			Kind: StmtSimpleAssign, Span: s.Span, Scope: sc,
			Target: b.CreateExprSema(s.Target, sc), Value: b.CreateExprSema(s.Value, sc),
		}

	case ast.StmtCompoundAssign:
		target := b.CreateExprSema(s.Target, sc)
		value := b.CreateExprSema(s.Value, sc)
		opName := operatorSectionName(b, s.CompoundOp)
		opSym := b.collect(b.Table.ResolveStaticSymbol(ast.Simple(opName, s.Span), sc, sc, scope.SymOperator.Mask()))
		return &Stmt{
			Kind: StmtCompoundAssign, Span: s.Span, Scope: sc,
			Target: target, Value: value, Compound: opSym,
		}

	case ast.StmtIf:
		arms := make([]IfArm, len(s.Arms))
		for i, arm := range s.Arms {
			body, _ := b.bindBlock(arm.Body, sc)
			arms[i] = IfArm{Cond: b.CreateExprSema(arm.Cond, sc), Body: body}
		}
		var elseBody []*Stmt
		if s.Else != nil {
			elseBody, _ = b.bindBlock(*s.Else, sc)
		}
		return &Stmt{Kind: StmtIf, Span: s.Span, Scope: sc, Arms: arms, Else: elseBody}

	case ast.StmtWhile:
		body, _ := b.bindBlock(s.Body, sc)
		return &Stmt{Kind: StmtWhile, Span: s.Span, Scope: sc, Cond: b.CreateExprSema(s.Cond, sc), Body: body}

	case ast.StmtReturn:
		var ret *Expr
		if s.Expr.IsValid() {
			ret = b.CreateExprSema(s.Expr, sc)
		}
		return &Stmt{Kind: StmtReturn, Span: s.Span, Scope: sc, Expr: ret}

	case ast.StmtAssert:
		return &Stmt{Kind: StmtAssert, Span: s.Span, Scope: sc, Expr: b.CreateExprSema(s.Expr, sc)}

	default:
		return &Stmt{Kind: StmtInvalid, Span: s.Span, Scope: sc}
	}
}

// bindBlock creates a fresh child block scope for blk and binds its
// statements in it, returning both the bound statements and the scope
// they were bound in (needed by StmtIf/StmtWhile arms that don't
// themselves carry a Stmt node to hang the scope off of).
func (b *Binder) bindBlock(blk ast.Block, parent scope.ScopeID) ([]*Stmt, scope.ScopeID) {
	blockScope := b.Table.NewScope(scope.KindBlock, parent, scope.Owner{}, "")
	out := make([]*Stmt, len(blk.Stmts))
	for i, id := range blk.Stmts {
		out[i] = b.CreateStmtSema(id, blockScope)
	}
	return out, blockScope
}
