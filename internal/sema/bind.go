package sema

import (
	"vela/internal/ast"
	"vela/internal/diag"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/types"
)

// Binder walks a syntax tree and produces the corresponding sema tree,
// resolving every name through Table as it goes. One Binder is used for
// one function body (or module-level initializer); Table is shared
// across every Binder in a compilation.
type Binder struct {
	Table *scope.Table
	AST   *ast.Builder
	bag   *diag.Bag
}

// NewBinder creates a Binder reporting into bag.
func NewBinder(table *scope.Table, b *ast.Builder, bag *diag.Bag) *Binder {
	return &Binder{Table: table, AST: b, bag: bag}
}

func (b *Binder) collect(d diag.Diagnosed[scope.SymbolID]) scope.SymbolID {
	return diag.Collect(b.bag, d)
}

var (
	varMask           = scope.SymLocal.Mask() | scope.SymParam.Mask() | scope.SymSelfParam.Mask() | scope.SymStatic.Mask()
	callMask          = scope.SymFunction.Mask() | scope.SymOperator.Mask()
	fieldOrMethodMask = scope.SymField.Mask() | scope.SymFunction.Mask()
	typeMask          = scope.SymStruct.Mask() | scope.SymTrait.Mask() | scope.SymTypeParam.Mask() | scope.SymAlias.Mask()
)

func operatorSectionName(b *Binder, op ast.BinaryOp) source.StringID {
	names := map[ast.BinaryOp]string{
		ast.OpAdd: "operator+", ast.OpSub: "operator-", ast.OpMul: "operator*",
		ast.OpDiv: "operator/", ast.OpMod: "operator%",
		ast.OpBitAnd: "operator&", ast.OpBitOr: "operator|", ast.OpBitXor: "operator^",
		ast.OpShl: "operator<<", ast.OpShr: "operator>>",
		ast.OpEq: "operator==", ast.OpNotEq: "operator!=",
		ast.OpLess: "operator<", ast.OpLessEq: "operator<=",
		ast.OpGreater: "operator>", ast.OpGreaterEq: "operator>=",
	}
	return b.AST.Ident(names[op])
}

func unaryOpSectionName(b *Binder, op ast.UnaryOp) source.StringID {
	if op == ast.OpPos {
		return b.AST.Ident("operator+unary")
	}
	return b.AST.Ident("operator-unary")
}

// symError builds an error-typed Expr carrying a kind-appropriate error
// symbol, the standard fallback when resolution fails.
func (b *Binder) symError(span source.Span, kind ExprKind, sym scope.SymbolID) *Expr {
	return &Expr{
		Kind: kind, Span: span, Symbol: sym,
		Info: types.TypeInfo{Type: b.Table.Types.Builtins().Error, Value: types.ValueR},
	}
}

// BindTypeExpr resolves a surface type expression to a concrete TypeID.
func (b *Binder) BindTypeExpr(id ast.TypeExprID, sc scope.ScopeID) types.TypeID {
	te := b.AST.Types.Get(id)
	if te == nil {
		return b.Table.Types.Builtins().Error
	}
	switch te.Kind {
	case ast.TypeExprRef:
		elem := b.BindTypeExpr(te.Elem, sc)
		return b.Table.Types.GetWithRef(elem)
	case ast.TypeExprNamed:
		symID := b.collect(b.Table.ResolveStaticSymbol(te.Name, sc, sc, typeMask))
		sym := b.Table.Symbols.Get(symID)
		if sym == nil {
			return b.Table.Types.Builtins().Error
		}
		last := te.Name.Sections[len(te.Name.Sections)-1]
		if len(last.Args) == 0 {
			return sym.Type
		}
		args := make([]types.TypeID, len(last.Args))
		for i, a := range last.Args {
			args[i] = b.BindTypeExpr(a, sc)
		}
		instID := b.Table.CollectGenericInstance(symID, args)
		if inst := b.Table.Symbols.Get(instID); inst != nil {
			return inst.Type
		}
		return b.Table.Types.Builtins().Error
	default:
		return b.Table.Types.Builtins().Error
	}
}

// instantiateIfGeneric reads name's final section's template arguments
// (if any) and, when present, feeds them through CollectGenericInstance
// to replace the raw generic symbol with its monomorphized instance —
// the same step BindTypeExpr performs for type references, applied here
// to call targets (`identity<int>(5)`) and struct constructions
// (`Vec<int>{...}`).
func (b *Binder) instantiateIfGeneric(symID scope.SymbolID, name ast.QualifiedName, sc scope.ScopeID) scope.SymbolID {
	if len(name.Sections) == 0 {
		return symID
	}
	last := name.Sections[len(name.Sections)-1]
	if len(last.Args) == 0 {
		return symID
	}
	args := make([]types.TypeID, len(last.Args))
	for i, a := range last.Args {
		args[i] = b.BindTypeExpr(a, sc)
	}
	return b.Table.CollectGenericInstance(symID, args)
}

func litType(in *types.Interner, kind ast.LitKind) types.TypeID {
	bi := in.Builtins()
	switch kind {
	case ast.LitInt:
		return bi.Int
	case ast.LitFloat:
		return bi.Float
	case ast.LitBool:
		return bi.Bool
	case ast.LitString:
		return bi.String
	default:
		return bi.Unit
	}
}

// CreateExprSema dispatches on the surface expression's kind, the entry
// point invoked top-down while walking the syntax tree.
func (b *Binder) CreateExprSema(id ast.ExprID, sc scope.ScopeID) *Expr {
	e := b.AST.Exprs.Get(id)
	if e == nil {
		return b.symError(source.Span{}, ExprInvalid, b.Table.ErrorVariable)
	}
	switch e.Kind {
	case ast.ExprLit:
		ty := litType(b.Table.Types, e.Lit)
		return &Expr{
			Kind: ExprLiteral, Span: e.Span, Scope: sc,
			Lit: e.Lit, IntVal: e.IntVal, FltVal: e.FltVal, BoolVal: e.BoolVal, StrVal: e.StrVal,
			Info: types.TypeInfo{Type: ty, Value: types.ValueR},
		}

	case ast.ExprIdent:
		symID := b.collect(b.Table.ResolveStaticSymbol(e.Name, sc, sc, varMask))
		sym := b.Table.Symbols.Get(symID)
		if sym == nil {
			return b.symError(e.Span, ExprSymbolLiteral, b.Table.ErrorVariable)
		}
		return &Expr{
			Kind: ExprSymbolLiteral, Span: e.Span, Scope: sc, Symbol: symID,
			Info: types.TypeInfo{Type: sym.Type, Value: types.ValueL},
		}

	case ast.ExprMember:
		base := b.CreateExprSema(e.Base, sc)
		recvType := b.Table.Types.StripAllModifiers(base.Info.Type)
		symID := b.collect(b.Table.ResolveInstanceSymbol(recvType, e.Field, e.Span, fieldOrMethodMask, sc))
		sym := b.Table.Symbols.Get(symID)
		if sym == nil {
			return b.symError(e.Span, ExprFieldRef, b.Table.ErrorVariable)
		}
		return &Expr{
			Kind: ExprFieldRef, Span: e.Span, Scope: sc, Symbol: symID, Receiver: base,
			Info: types.TypeInfo{Type: sym.Type, Value: types.ValueL},
		}

	case ast.ExprCall:
		args := make([]*Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = b.CreateExprSema(a, sc)
		}
		if e.Receiver.IsValid() {
			recv := b.CreateExprSema(e.Receiver, sc)
			recvType := b.Table.Types.StripAllModifiers(recv.Info.Type)
			symID := b.collect(b.Table.ResolveInstanceSymbol(recvType, e.MethodName, e.Span, fieldOrMethodMask, sc))
			sym := b.Table.Symbols.Get(symID)
			retType := b.Table.Types.Builtins().Error
			if sym != nil {
				if fn, ok := b.Table.Types.FnInfo(sym.Type); ok {
					retType = fn.Return
				}
			}
			return &Expr{
				Kind: ExprInstanceCall, Span: e.Span, Scope: sc, Callee: symID, Receiver: recv, Args: args,
				Info: types.TypeInfo{Type: retType, Value: types.ValueR},
			}
		}
		symID := b.collect(b.Table.ResolveStaticSymbol(e.Name, sc, sc, callMask))
		symID = b.instantiateIfGeneric(symID, e.Name, sc)
		sym := b.Table.Symbols.Get(symID)
		retType := b.Table.Types.Builtins().Error
		if sym != nil {
			if fn, ok := b.Table.Types.FnInfo(sym.Type); ok {
				retType = fn.Return
			}
		}
		return &Expr{
			Kind: ExprStaticCall, Span: e.Span, Scope: sc, Callee: symID, Args: args,
			Info: types.TypeInfo{Type: retType, Value: types.ValueR},
		}

	case ast.ExprBinary:
		lhs := b.CreateExprSema(e.LHS, sc)
		rhs := b.CreateExprSema(e.RHS, sc)
		name := operatorSectionName(b, e.BinOp)
		symID := b.collect(b.Table.ResolveStaticSymbol(ast.Simple(name, e.Span), sc, sc, scope.SymOperator.Mask()))
		sym := b.Table.Symbols.Get(symID)
		retType := b.Table.Types.Builtins().Error
		if sym != nil {
			if fn, ok := b.Table.Types.FnInfo(sym.Type); ok {
				retType = fn.Return
			}
		}
		return &Expr{
			Kind: ExprUserBinary, Span: e.Span, Scope: sc, Callee: symID, Args: []*Expr{lhs, rhs},
			Info: types.TypeInfo{Type: retType, Value: types.ValueR},
		}

	case ast.ExprUnary:
		operand := b.CreateExprSema(e.Operand, sc)
		name := unaryOpSectionName(b, e.UnOp)
		symID := b.collect(b.Table.ResolveStaticSymbol(ast.Simple(name, e.Span), sc, sc, scope.SymOperator.Mask()))
		sym := b.Table.Symbols.Get(symID)
		retType := b.Table.Types.Builtins().Error
		if sym != nil {
			if fn, ok := b.Table.Types.FnInfo(sym.Type); ok {
				retType = fn.Return
			}
		}
		return &Expr{
			Kind: ExprUserUnary, Span: e.Span, Scope: sc, Callee: symID, Args: []*Expr{operand},
			Info: types.TypeInfo{Type: retType, Value: types.ValueR},
		}

	case ast.ExprLogicalNot:
		operand := b.CreateExprSema(e.Operand, sc)
		return &Expr{
			Kind: ExprLogicalNegation, Span: e.Span, Scope: sc, Operand: operand,
			Info: types.TypeInfo{Type: b.Table.Types.Builtins().Bool, Value: types.ValueR},
		}

	case ast.ExprAnd, ast.ExprOr:
		lhs := b.CreateExprSema(e.LHS, sc)
		rhs := b.CreateExprSema(e.RHS, sc)
		kind := ExprAnd
		if e.Kind == ast.ExprOr {
			kind = ExprOr
		}
		return &Expr{
			Kind: kind, Span: e.Span, Scope: sc, Args: []*Expr{lhs, rhs},
			Info: types.TypeInfo{Type: b.Table.Types.Builtins().Bool, Value: types.ValueR},
		}

	case ast.ExprAddressOf:
		operand := b.CreateExprSema(e.Operand, sc)
		refType := b.Table.Types.GetWithRef(operand.Info.Type)
		return &Expr{
			Kind: ExprAddressOf, Span: e.Span, Scope: sc, Operand: operand, Target: refType,
			Info: types.TypeInfo{Type: refType, Value: types.ValueR},
		}

	case ast.ExprDeref:
		operand := b.CreateExprSema(e.Operand, sc)
		pointee := derefTarget(b.Table.Types, operand.Info.Type)
		return &Expr{
			Kind: ExprDerefAs, Span: e.Span, Scope: sc, Operand: operand, Target: pointee,
			Info: types.TypeInfo{Type: pointee, Value: types.ValueL},
		}

	case ast.ExprCast:
		operand := b.CreateExprSema(e.Operand, sc)
		target := b.BindTypeExpr(e.Target, sc)
		return &Expr{
			Kind: ExprCast, Span: e.Span, Scope: sc, Operand: operand, Target: target,
			Info: types.TypeInfo{Type: target, Value: types.ValueR},
		}

	case ast.ExprSizeof:
		target := b.BindTypeExpr(e.Target, sc)
		return &Expr{
			Kind: ExprSizeof, Span: e.Span, Scope: sc, Target: target,
			Info: types.TypeInfo{Type: b.Table.Types.Builtins().Int, Value: types.ValueR},
		}

	case ast.ExprStructLit:
		return b.bindStructLit(e, sc)

	case ast.ExprBox:
		operand := b.CreateExprSema(e.Operand, sc)
		strongPtr := b.Table.Types.GetWithStrongPtr(operand.Info.Type)
		return &Expr{
			Kind: ExprBox, Span: e.Span, Scope: sc, Operand: operand, Target: operand.Info.Type,
			Info: types.TypeInfo{Type: strongPtr, Value: types.ValueR},
		}

	case ast.ExprUnbox:
		operand := b.CreateExprSema(e.Operand, sc)
		inner := b.Table.Types.GetWithoutStrongPtr(operand.Info.Type)
		return &Expr{
			Kind: ExprUnbox, Span: e.Span, Scope: sc, Operand: operand, Target: inner,
			Info: types.TypeInfo{Type: inner, Value: types.ValueL},
		}

	case ast.ExprLock:
		operand := b.CreateExprSema(e.Operand, sc)
		inner := b.Table.Types.GetWithoutWeakPtr(operand.Info.Type)
		strongPtr := b.Table.Types.GetWithStrongPtr(inner)
		return &Expr{
			Kind: ExprLock, Span: e.Span, Scope: sc, Operand: operand, Target: inner,
			Info: types.TypeInfo{Type: strongPtr, Value: types.ValueR},
		}

	default:
		return b.symError(e.Span, ExprInvalid, b.Table.ErrorVariable)
	}
}

// derefTarget finds the pointee type for `*e`: one reference or
// strong/weak-pointer layer removed, whichever is present.
func derefTarget(in *types.Interner, t types.TypeID) types.TypeID {
	if in.IsReference(t) {
		return in.GetWithoutRef(t)
	}
	if in.IsAnyStrongPtr(t) {
		return in.GetWithoutStrongPtr(t)
	}
	if in.IsWeakPtr(t) {
		return in.GetWithoutWeakPtr(t)
	}
	return t
}

// bindStructLit resolves a struct-construction expression, diagnosing
// unknown fields, fields initialized more than once, and fields left
// unset.
func (b *Binder) bindStructLit(e *ast.Expr, sc scope.ScopeID) *Expr {
	structSym := b.collect(b.Table.ResolveStaticSymbol(e.Name, sc, sc, scope.SymStruct.Mask()))
	structSym = b.instantiateIfGeneric(structSym, e.Name, sc)
	sym := b.Table.Symbols.Get(structSym)
	if sym == nil {
		return b.symError(e.Span, ExprStructConstruction, b.Table.ErrorVariable)
	}
	info, ok := b.Table.Types.StructInfo(sym.Type)
	if !ok {
		return b.symError(e.Span, ExprStructConstruction, b.Table.ErrorVariable)
	}

	seen := make(map[source.StringID]source.Span, len(e.Fields))
	fieldIndex := make(map[source.StringID]types.StructField, len(info.Fields))
	for _, f := range info.Fields {
		fieldIndex[f.Name] = f
	}

	var inits []FieldInit
	for _, fl := range e.Fields {
		if _, known := fieldIndex[fl.Name]; !known {
			b.bag.Add(diag.NewError(diag.ResNoSuchField, fl.Span,
				"'"+b.Table.Strings.MustLookup(sym.Name)+"' has no field named '"+b.Table.Strings.MustLookup(fl.Name)+"'",
			).WithNote(sym.Span, "struct declared here"))
			continue
		}
		if prev, dup := seen[fl.Name]; dup {
			b.bag.Add(diag.NewError(diag.ResDuplicateFieldInit, fl.Span,
				"field '"+b.Table.Strings.MustLookup(fl.Name)+"' initialized more than once",
			).WithNote(prev, "first initialized here"))
			continue
		}
		seen[fl.Name] = fl.Span

		fieldSymID := b.collect(b.Table.ResolveInstanceSymbol(sym.Type, fl.Name, fl.Span, scope.SymField.Mask(), sc))
		var value *Expr
		if fl.Value.IsValid() {
			value = b.CreateExprSema(fl.Value, sc)
		} else {
			// Shorthand `{ f }`: binds as a symbol-literal reference to a
			// local/param named after the field.
			value = b.CreateExprSema(b.AST.Exprs.New(ast.Expr{
				Kind: ast.ExprIdent, Span: fl.Span, Name: ast.Simple(fl.Name, fl.Span),
			}), sc)
		}
		inits = append(inits, FieldInit{Field: fieldSymID, Value: value})
	}

	if missing := missingFields(info.Fields, seen); len(missing) > 0 {
		b.bag.Add(diag.NewError(diag.ResMissingField, e.Span, missingFieldsMessage(b.Table.Strings, sym.Name, missing)))
	}

	return &Expr{
		Kind: ExprStructConstruction, Span: e.Span, Scope: sc, StructSymbol: structSym, Fields: inits,
		Info: types.TypeInfo{Type: sym.Type, Value: types.ValueR},
	}
}

// missingFields returns the fields of a struct declaration that weren't
// initialized, in declaration order.
func missingFields(fields []types.StructField, seen map[source.StringID]source.Span) []types.StructField {
	var out []types.StructField
	for _, f := range fields {
		if _, ok := seen[f.Name]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// missingFieldsMessage renders "missing fields `x`, `y` and `z`",
// matching the struct-construction-completeness diagnostic wording.
func missingFieldsMessage(strings *source.Interner, structName source.StringID, missing []types.StructField) string {
	msg := "'" + strings.MustLookup(structName) + "' is missing field"
	if len(missing) > 1 {
		msg += "s"
	}
	msg += " "
	for i, f := range missing {
		switch {
		case i == 0:
		case i == len(missing)-1:
			msg += " and "
		default:
			msg += ", "
		}
		msg += "`" + strings.MustLookup(f.Name) + "`"
	}
	return msg
}
