package ast

import "vela/internal/source"

// ExprKind enumerates surface expression variants; the binder dispatches
// on this to decide how to build each expression's sema node.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLit
	ExprIdent   // a bare name, resolved as a variable symbol literal
	ExprCall    // f(args) or recv.m(args), disambiguated by Receiver
	ExprMember  // a.name
	ExprBinary  // arithmetic/comparison/bitwise infix operators
	ExprUnary   // unary +/-/! (logical negation is ExprLogicalNot)
	ExprLogicalNot
	ExprAnd // a && b
	ExprOr  // a || b
	ExprAddressOf
	ExprDeref // *e, binds to a DerefAs sema node
	ExprCast  // e as T
	ExprSizeof
	ExprStructLit // T { f1: v1, f2 }
	ExprBox       // box e
	ExprUnbox     // *e applied to a strong pointer; binds to an Unbox sema node
	ExprLock      // lock(e)
)

// BinaryOp enumerates infix operator spellings.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
)

// UnaryOp enumerates prefix operator spellings (excluding & and *, which
// get their own ExprKind because they're not overloadable the same way).
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpPos
)

// LitKind enumerates literal token shapes.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitString
	LitUnit
)

// StructLitField is one `name: value` entry (or shorthand `name`) in a
// struct construction expression.
type StructLitField struct {
	Name  source.StringID
	Value ExprID // NoExprID for shorthand; binder fills it from scope
	Span  source.Span
}

// Expr is a syntax-level expression node. Exactly one group of fields is
// meaningful per Kind; unused fields are zero.
type Expr struct {
	Kind ExprKind
	Span source.Span

	// ExprLit
	Lit     LitKind
	IntVal  int64
	FltVal  float64
	BoolVal bool
	StrVal  source.StringID

	// ExprIdent / ExprCall callee-by-name / ExprStructLit type name
	Name QualifiedName

	// ExprCall
	Receiver   ExprID // NoExprID for a static call
	MethodName source.StringID
	Args       []ExprID

	// ExprMember
	Base  ExprID
	Field source.StringID

	// ExprBinary / ExprAnd / ExprOr
	BinOp BinaryOp
	LHS   ExprID
	RHS   ExprID

	// ExprUnary / ExprLogicalNot / ExprAddressOf / ExprDeref / ExprBox / ExprLock
	UnOp    UnaryOp
	Operand ExprID

	// ExprCast / ExprSizeof
	Target TypeExprID

	// ExprStructLit
	Fields []StructLitField
}

type Exprs struct{ arena Arena[Expr] }

func NewExprs(hint uint) *Exprs { return &Exprs{arena: *NewArena[Expr](hint)} }

func (e *Exprs) New(expr Expr) ExprID { return ExprID(e.arena.Allocate(expr)) }

func (e *Exprs) Get(id ExprID) *Expr { return e.arena.Get(uint32(id)) }
