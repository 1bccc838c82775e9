package ast

import "vela/internal/source"

// TypeExprKind enumerates surface type syntax.
type TypeExprKind uint8

const (
	TypeExprInvalid TypeExprKind = iota
	// TypeExprNamed is a (possibly generic, possibly qualified) named
	// type: `int`, `Vector2`, `Box<T>`, `foo::Bar<T>`.
	TypeExprNamed
	// TypeExprRef is `&T`.
	TypeExprRef
)

// TypeExpr is a syntax-level type reference.
type TypeExpr struct {
	Kind TypeExprKind
	Span source.Span
	Name QualifiedName // TypeExprNamed
	Elem TypeExprID    // TypeExprRef
}

type TypeExprs struct{ arena Arena[TypeExpr] }

func NewTypeExprs(hint uint) *TypeExprs { return &TypeExprs{arena: *NewArena[TypeExpr](hint)} }

func (t *TypeExprs) New(te TypeExpr) TypeExprID { return TypeExprID(t.arena.Allocate(te)) }

func (t *TypeExprs) Get(id TypeExprID) *TypeExpr { return t.arena.Get(uint32(id)) }
