package types

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/source"
)

// typeKey is the structural dedup key for primitive and modifier types.
// Nominal kinds (struct/trait/fn/type-param) are never deduplicated by
// this key — each declaration gets its own slot, see Register*.
type typeKey struct {
	kind Kind
	elem TypeID
}

// Builtins holds the TypeIDs of primitive types, interned once at
// construction so every caller shares the same IDs.
type Builtins struct {
	Error  TypeID
	Unit   TypeID
	Bool   TypeID
	Int    TypeID
	Float  TypeID
	String TypeID
}

// StructInfo is the side-table entry for a struct declaration.
type StructInfo struct {
	Name       source.StringID
	Decl       source.Span
	Fields     []StructField
	TypeParams []TypeID // this struct's own generic parameters, if any
	TypeArgs   []TypeID // non-nil for a generic instantiation
	Public     map[source.StringID]bool
}

// StructField describes one field of a struct.
type StructField struct {
	Name   source.StringID
	Type   TypeID
	Public bool
}

// TraitInfo is the side-table entry for a trait declaration.
type TraitInfo struct {
	Name        source.StringID
	Decl        source.Span
	Supertraits []TypeID
	Methods     []TraitMethod
}

// TraitMethod is one prototype declared by a trait.
type TraitMethod struct {
	Name source.StringID
	Fn   TypeID // KindFn descriptor of the prototype's signature
}

// FnInfo is the side-table entry for a function signature.
type FnInfo struct {
	Params     []TypeID
	Return     TypeID
	Variadic   bool
	TypeParams []TypeID
}

// TypeParamInfo is the side-table entry for a generic parameter
// placeholder.
type TypeParamInfo struct {
	Name source.StringID
	Decl source.Span
}

// AliasInfo is the side-table entry for a type alias.
type AliasInfo struct {
	Name   source.StringID
	Decl   source.Span
	Target TypeID
}

// Interner owns every Type ever produced during a compilation.
type Interner struct {
	data     []Type
	dedup    map[typeKey]TypeID
	builtins Builtins

	structs []StructInfo
	traits  []TraitInfo
	fns     []FnInfo
	params  []TypeParamInfo
	aliases []AliasInfo
}

// NewInterner creates an interner pre-seeded with primitive builtins.
func NewInterner() *Interner {
	in := &Interner{
		data:  make([]Type, 1, 64), // index 0 reserved for NoTypeID
		dedup: make(map[typeKey]TypeID, 64),

		structs: make([]StructInfo, 1), // index 0 unused, mirrors NoTypeID
		traits:  make([]TraitInfo, 1),
		fns:     make([]FnInfo, 1),
		params:  make([]TypeParamInfo, 1),
		aliases: make([]AliasInfo, 1),
	}
	in.builtins = Builtins{
		Error:  in.internStructural(Type{Kind: KindError}),
		Unit:   in.internStructural(Type{Kind: KindUnit}),
		Bool:   in.internStructural(Type{Kind: KindBool}),
		Int:    in.internStructural(Type{Kind: KindInt}),
		Float:  in.internStructural(Type{Kind: KindFloat}),
		String: in.internStructural(Type{Kind: KindString}),
	}
	return in
}

// Builtins returns the interned primitive TypeIDs.
func (in *Interner) Builtins() Builtins { return in.builtins }

func (in *Interner) internStructural(t Type) TypeID {
	key := typeKey{kind: t.Kind, elem: t.Elem}
	if id, ok := in.dedup[key]; ok {
		return id
	}
	idx, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(idx)
	in.data = append(in.data, t)
	in.dedup[key] = id
	return id
}

// Get returns the Type for id, or the zero Type if id is invalid.
func (in *Interner) Get(id TypeID) Type {
	if !id.IsValid() || int(id) >= len(in.data) {
		return Type{}
	}
	return in.data[id]
}

// KindOf is shorthand for Get(id).Kind.
func (in *Interner) KindOf(id TypeID) Kind { return in.Get(id).Kind }

// Len reports how many types have been interned, excluding the sentinel.
func (in *Interner) Len() int { return len(in.data) - 1 }
