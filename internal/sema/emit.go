package sema

import (
	"vela/internal/scope"
	"vela/internal/types"
)

// NativeType is an opaque handle the back-end hands back from
// GetType; the middle-end never inspects it, only threads it through
// Emit calls.
type NativeType interface{}

// NativeValue is an opaque handle to a back-end SSA/IR value.
type NativeValue interface{}

// NativeBlock is an opaque handle to a back-end basic block.
type NativeBlock interface{}

// ExprEmitResult is what emitting an expression hands back: the
// value it produced, plus any temporaries the caller is responsible
// for dropping once it's done with the result.
type ExprEmitResult struct {
	Value NativeValue
	Tmps  []scope.SymbolID
}

// BlockBuilder is the subset of a back-end's instruction builder the
// middle-end drives directly while emitting a lowered statement or
// expression.
type BlockBuilder interface {
	CreateAlloca(t NativeType, name string) NativeValue
	CreateStore(value, ptr NativeValue)
	CreateLoad(t NativeType, ptr NativeValue, name string) NativeValue
	CreateCall(fn NativeValue, args []NativeValue, name string) NativeValue
	CreateBr(target NativeBlock)
	CreateCondBr(cond NativeValue, then, els NativeBlock)
	CreateStructGEP(t NativeType, ptr NativeValue, field int, name string) NativeValue
	CreateRet(value NativeValue)
	CreateRetVoid()
	CreateUnreachable()
}

// Block pairs a back-end basic block with its instruction builder.
type Block struct {
	Block   NativeBlock
	Builder BlockBuilder
}

// LabelBlockMap lazily materializes one back-end block per label
// symbol, so a forward jump can reference a block before the label's
// own position has been emitted.
type LabelBlockMap interface {
	GetOrCreateAt(label scope.SymbolID) NativeBlock
}

// Emitter is the collaborator a lowered tree's Emit methods drive to
// produce native code. The middle-end never touches the back-end's
// native IR types directly; it only calls through this interface, so
// swapping back-ends means swapping the Emitter implementation, not
// anything under internal/sema.
type Emitter interface {
	GetType(typeSymbol scope.SymbolID) NativeType
	GetBlock() Block

	// EmitCopy and EmitDropTmps translate copy/drop glue calls. The
	// lowering pass in this package does not itself insert StmtCopy or
	// StmtDrop statements into a lowered tree.
	EmitCopy(dst, src NativeValue, typeSymbol scope.SymbolID)
	EmitDropTmps(tmps []scope.SymbolID)

	// EmitDropLocalVarsBeforeStmt walks the local-variable bookkeeping
	// captured at a StmtBlockEnd marker and emits drop glue for every
	// local going out of scope at that point.
	EmitDropLocalVarsBeforeStmt(stmt *Stmt)

	GetLabelBlockMap() LabelBlockMap

	// CreateInstantiatedFn (and the analogous hooks for other
	// instantiable kinds) substitutes the back-end's current
	// monomorphization environment when emitting a call to a generic
	// symbol still carrying a MonoObligation.
	CreateInstantiatedFn(symbol scope.SymbolID, args []types.TypeID) NativeValue
}

// EmitExpr produces e's value, recursing into its lowered children and
// returning the temporaries the caller must eventually drop. Box/
// Unbox/Lock/user-operator nodes never appear here: CreateLowered
// already rewrote them into ExprStaticCall/ExprInstanceCall before the
// tree reaches the back-end.
func EmitExpr(em Emitter, e *Expr) ExprEmitResult {
	switch e.Kind {
	case ExprLiteral:
		return ExprEmitResult{}

	case ExprSymbolLiteral, ExprFieldRef:
		if e.Receiver != nil {
			EmitExpr(em, e.Receiver)
		}
		return ExprEmitResult{}

	case ExprStaticCall, ExprInstanceCall:
		var tmps []scope.SymbolID
		if e.Receiver != nil {
			r := EmitExpr(em, e.Receiver)
			tmps = append(tmps, r.Tmps...)
		}
		for _, a := range e.Args {
			r := EmitExpr(em, a)
			tmps = append(tmps, r.Tmps...)
		}
		return ExprEmitResult{Tmps: tmps}

	case ExprAnd, ExprOr:
		for _, a := range e.Args {
			EmitExpr(em, a)
		}
		return ExprEmitResult{}

	case ExprLogicalNegation, ExprAddressOf, ExprDerefAs, ExprReferenceOf:
		if e.Operand != nil {
			return EmitExpr(em, e.Operand)
		}
		return ExprEmitResult{}

	case ExprStructConstruction:
		var tmps []scope.SymbolID
		for _, f := range e.Fields {
			r := EmitExpr(em, f.Value)
			tmps = append(tmps, r.Tmps...)
		}
		return ExprEmitResult{Tmps: tmps}

	default:
		return ExprEmitResult{}
	}
}
