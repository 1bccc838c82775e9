// Package sema implements the three rebuild stages that turn a syntax
// tree into a monomorphized, control-flow-validated program: binding
// (name/type resolution), type-checking (implicit conversion insertion),
// and lowering (desugaring into a jump-based core). Nodes are immutable
// after construction; each stage either returns its receiver unchanged
// (structural sharing) or builds a new node.
package sema

import (
	"vela/internal/ast"
	"vela/internal/scope"
	"vela/internal/source"
	"vela/internal/types"
)

// ExprKind is the closed set of semantic expression variants.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLiteral
	ExprSymbolLiteral // resolved reference to a static/local/param/field variable
	ExprFieldRef
	ExprStaticCall
	ExprInstanceCall
	ExprUserUnary
	ExprUserBinary
	ExprAnd
	ExprOr
	ExprLogicalNegation
	ExprAddressOf
	ExprDerefAs // checked reinterpret; also backs plain `*e` dereference
	ExprCast
	ExprSizeof
	ExprTypeInfoPtr
	ExprVtablePtr
	ExprStructConstruction
	ExprReferenceOf
	ExprConversionPlaceholder // marks where an implicit/explicit conversion call was inserted
	ExprBox
	ExprLock
	ExprUnbox
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "literal"
	case ExprSymbolLiteral:
		return "symbol-literal"
	case ExprFieldRef:
		return "field-ref"
	case ExprStaticCall:
		return "static-call"
	case ExprInstanceCall:
		return "instance-call"
	case ExprUserUnary:
		return "user-unary"
	case ExprUserBinary:
		return "user-binary"
	case ExprAnd:
		return "and"
	case ExprOr:
		return "or"
	case ExprLogicalNegation:
		return "logical-negation"
	case ExprAddressOf:
		return "address-of"
	case ExprDerefAs:
		return "deref-as"
	case ExprCast:
		return "cast"
	case ExprSizeof:
		return "sizeof"
	case ExprTypeInfoPtr:
		return "typeinfo-ptr"
	case ExprVtablePtr:
		return "vtable-ptr"
	case ExprStructConstruction:
		return "struct-construction"
	case ExprReferenceOf:
		return "reference-of"
	case ExprConversionPlaceholder:
		return "conversion-placeholder"
	case ExprBox:
		return "box"
	case ExprLock:
		return "lock"
	case ExprUnbox:
		return "unbox"
	default:
		return "invalid"
	}
}

// FieldInit is one resolved `f: v` (or shorthand `f`) in a struct
// construction.
type FieldInit struct {
	Field scope.SymbolID
	Value *Expr
}

// Expr is a semantic expression node. Nodes are immutable after
// construction: CreateTypeChecked/CreateLowered either return the
// receiver (nothing changed) or build a new *Expr.
type Expr struct {
	Kind  ExprKind
	Span  source.Span
	Scope scope.ScopeID
	Info  types.TypeInfo

	// ExprLiteral
	Lit ast.LitKind

	IntVal  int64
	FltVal  float64
	BoolVal bool
	StrVal  source.StringID

	// ExprSymbolLiteral, ExprFieldRef: the resolved variable/field symbol.
	Symbol scope.SymbolID

	// ExprFieldRef: the receiver expression `a` in `a.name`.
	Receiver *Expr

	// ExprStaticCall / ExprInstanceCall / ExprUserUnary / ExprUserBinary:
	// the resolved callable and its bound, already-converted arguments.
	// For instance calls, Receiver holds the bound receiver expression.
	Callee scope.SymbolID
	Args   []*Expr

	// ExprAnd / ExprOr / ExprLogicalNegation / ExprAddressOf /
	// ExprDerefAs / ExprCast / ExprSizeof / ExprReferenceOf / ExprBox /
	// ExprLock / ExprUnbox / ExprConversionPlaceholder: Operand is the
	// single child; Target carries the type these nodes reinterpret,
	// cast, or convert toward. ExprConversionPlaceholder additionally
	// uses Callee for the user-defined conversion operator chosen to
	// bridge Operand's type to Target, if one was found.
	Operand *Expr
	Target  types.TypeID

	// ExprStructConstruction: the struct symbol and its resolved,
	// already-bound field initializers.
	StructSymbol scope.SymbolID
	Fields       []FieldInit
}

// GetTypeInfo returns the node's concrete (type, value-kind) pair,
// required to be non-null for every expression after binding.
func (e *Expr) GetTypeInfo() types.TypeInfo { return e.Info }
