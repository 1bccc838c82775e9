package types

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/source"
)

// RegisterStruct allocates a fresh struct type. Each call produces a
// distinct TypeID even for structurally identical declarations, because
// a struct's identity is its declaration, not its shape.
func (in *Interner) RegisterStruct(name source.StringID, decl source.Span) TypeID {
	slot, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("types: struct table overflow: %w", err))
	}
	in.structs = append(in.structs, StructInfo{Name: name, Decl: decl})
	idx, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(idx)
	in.data = append(in.data, Type{Kind: KindStruct, Payload: slot})
	return id
}

// SetStructFields attaches resolved field descriptors to a struct type.
func (in *Interner) SetStructFields(t TypeID, fields []StructField) {
	info := in.structInfo(t)
	if info == nil {
		return
	}
	info.Fields = append([]StructField(nil), fields...)
}

// SetStructTypeParams records the generic parameters a struct declares.
func (in *Interner) SetStructTypeParams(t TypeID, params []TypeID) {
	info := in.structInfo(t)
	if info == nil {
		return
	}
	info.TypeParams = append([]TypeID(nil), params...)
}

// StructInfo returns the struct side-table entry for t, if any.
func (in *Interner) StructInfo(t TypeID) (*StructInfo, bool) {
	info := in.structInfo(t)
	return info, info != nil
}

func (in *Interner) structInfo(t TypeID) *StructInfo {
	ty := in.Get(t)
	if ty.Kind != KindStruct || int(ty.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[ty.Payload]
}

// RegisterTrait allocates a fresh trait type, one slot per declaration.
func (in *Interner) RegisterTrait(name source.StringID, decl source.Span) TypeID {
	slot, err := safecast.Conv[uint32](len(in.traits))
	if err != nil {
		panic(fmt.Errorf("types: trait table overflow: %w", err))
	}
	in.traits = append(in.traits, TraitInfo{Name: name, Decl: decl})
	idx, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(idx)
	in.data = append(in.data, Type{Kind: KindTrait, Payload: slot})
	return id
}

func (in *Interner) TraitInfo(t TypeID) (*TraitInfo, bool) {
	info := in.traitInfo(t)
	return info, info != nil
}

func (in *Interner) traitInfo(t TypeID) *TraitInfo {
	ty := in.Get(t)
	if ty.Kind != KindTrait || int(ty.Payload) >= len(in.traits) {
		return nil
	}
	return &in.traits[ty.Payload]
}

// SetTraitSupertraits records the supertraits a trait requires.
func (in *Interner) SetTraitSupertraits(t TypeID, supers []TypeID) {
	info := in.traitInfo(t)
	if info == nil {
		return
	}
	info.Supertraits = append([]TypeID(nil), supers...)
}

// SetTraitMethods records a trait's method prototypes.
func (in *Interner) SetTraitMethods(t TypeID, methods []TraitMethod) {
	info := in.traitInfo(t)
	if info == nil {
		return
	}
	info.Methods = append([]TraitMethod(nil), methods...)
}

// RegisterFn allocates a function-signature type. Every call gets a
// fresh slot and TypeID; two identical signatures are not deduplicated.
func (in *Interner) RegisterFn(info FnInfo) TypeID {
	slot, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("types: fn table overflow: %w", err))
	}
	in.fns = append(in.fns, info)
	idx, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(idx)
	in.data = append(in.data, Type{Kind: KindFn, Payload: slot})
	return id
}

func (in *Interner) FnInfo(t TypeID) (*FnInfo, bool) {
	ty := in.Get(t)
	if ty.Kind != KindFn || int(ty.Payload) >= len(in.fns) {
		return nil, false
	}
	return &in.fns[ty.Payload], true
}

// RegisterTypeParam allocates a placeholder for a not-yet-substituted
// generic parameter; the instantiation walker looks for these when
// building a monomorphized symbol's concrete type arguments.
func (in *Interner) RegisterTypeParam(name source.StringID, decl source.Span) TypeID {
	slot, err := safecast.Conv[uint32](len(in.params))
	if err != nil {
		panic(fmt.Errorf("types: type-param table overflow: %w", err))
	}
	in.params = append(in.params, TypeParamInfo{Name: name, Decl: decl})
	idx, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(idx)
	in.data = append(in.data, Type{Kind: KindTypeParam, Payload: slot})
	return id
}

func (in *Interner) TypeParamInfo(t TypeID) (*TypeParamInfo, bool) {
	ty := in.Get(t)
	if ty.Kind != KindTypeParam || int(ty.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[ty.Payload], true
}

// RegisterAlias registers `type Name = Target;`. Every call allocates a
// fresh slot and TypeID, even for a target already aliased; distinct
// alias *names* over the same target remain distinct elsewhere
// (scope.Symbol carries the name), but for the purposes of Unalias/Equal
// both collapse to the same Target.
func (in *Interner) RegisterAlias(name source.StringID, decl source.Span, target TypeID) TypeID {
	slot, err := safecast.Conv[uint32](len(in.aliases))
	if err != nil {
		panic(fmt.Errorf("types: alias table overflow: %w", err))
	}
	in.aliases = append(in.aliases, AliasInfo{Name: name, Decl: decl, Target: target})
	idx, err := safecast.Conv[uint32](len(in.data))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(idx)
	in.data = append(in.data, Type{Kind: KindAlias, Elem: target, Payload: slot})
	return id
}

func (in *Interner) aliasInfo(t TypeID) *AliasInfo {
	ty := in.Get(t)
	if ty.Kind != KindAlias || int(ty.Payload) >= len(in.aliases) {
		return nil
	}
	return &in.aliases[ty.Payload]
}

func (in *Interner) AliasInfo(t TypeID) (*AliasInfo, bool) {
	info := in.aliasInfo(t)
	return info, info != nil
}
