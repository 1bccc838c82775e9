// Package types implements the type layer: a TypeID is a base
// type symbol plus zero or more modifiers (reference, strong-pointer,
// weak-pointer, dyn-strong-pointer) applied in that fixed order.
// Structural (primitive, modifier) types are interned and deduplicated;
// nominal types (struct, trait, function, type-parameter placeholder)
// are allocated one slot per declaration, the way struct/trait/fn
// declarations each get a distinct identity even when structurally
// indistinguishable from another declaration (two empty structs `A{}`
// and `B{}` are different types).
package types

import "fmt"

// TypeID uniquely identifies a type.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the TypeID refers to a registered type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates every supported type shape.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the sentinel "error type": absorbs further operations
	// silently so a single unresolved name doesn't cascade.
	KindError
	KindUnit
	KindBool
	KindInt
	KindFloat
	KindString

	// Nominal, one slot per declaration.
	KindStruct
	KindTrait
	KindFn
	KindTypeParam // a generic parameter placeholder, not yet substituted
	KindAlias

	// Modifiers, applied in this fixed order over a base type.
	KindReference
	KindStrongPtr
	KindWeakPtr
	KindDynStrongPtr
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindTrait:
		return "trait"
	case KindFn:
		return "fn"
	case KindTypeParam:
		return "type-param"
	case KindAlias:
		return "alias"
	case KindReference:
		return "reference"
	case KindStrongPtr:
		return "strong-ptr"
	case KindWeakPtr:
		return "weak-ptr"
	case KindDynStrongPtr:
		return "dyn-strong-ptr"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsModifier reports whether k is one of the four fixed-order modifiers.
func (k Kind) IsModifier() bool {
	switch k {
	case KindReference, KindStrongPtr, KindWeakPtr, KindDynStrongPtr:
		return true
	default:
		return false
	}
}

// Type is a compact structural descriptor. Modifier kinds and KindAlias
// carry Elem; nominal kinds carry Payload, an index into the interner's
// side tables (structs/traits/fns/params).
type Type struct {
	Kind    Kind
	Elem    TypeID
	Payload uint32
}

// ValueKind distinguishes assignable (L) from rvalue (R) expressions.
// TypeInfo pairs a Type with a ValueKind.
type ValueKind uint8

const (
	ValueR ValueKind = iota // rvalue: no address
	ValueL                  // lvalue: assignable, has an address
)

func (v ValueKind) String() string {
	if v == ValueL {
		return "L"
	}
	return "R"
}

// TypeInfo is the concrete (type, value-kind) pair every sema expression
// node exposes via GetTypeInfo.
type TypeInfo struct {
	Type  TypeID
	Value ValueKind
}

func (ti TypeInfo) IsError(in *Interner) bool {
	return in.KindOf(ti.Type) == KindError
}
