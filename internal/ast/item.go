package ast

import "vela/internal/source"

// ItemKind enumerates top-level (and impl-block-level) declarations.
type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemImport
	ItemStruct
	ItemTrait
	ItemImpl
	ItemFunction
	ItemStatic
	ItemConst
	ItemAlias
)

// Visibility is a declaration's access modifier: `pub` is always
// visible, default private is scoped to the owning module subtree.
type Visibility uint8

const (
	VisPrivate Visibility = iota
	VisPublic
)

// StructField is a struct declaration's field syntax.
type StructField struct {
	Name source.StringID
	Vis  Visibility
	Type TypeExprID
	Span source.Span
}

// Param is a function parameter.
type Param struct {
	Name     source.StringID
	Type     TypeExprID
	Span     source.Span
	IsSelf   bool // true for the receiver parameter of a method
	SelfRef  bool // &self vs self
}

// TypeParamBound is one `T: Trait` constraint on a generic parameter.
type TypeParamBound struct {
	Trait QualifiedName
}

// TypeParam is a generic parameter declaration.
type TypeParam struct {
	Name   source.StringID
	Span   source.Span
	Bounds []TypeParamBound
}

// MethodFlags records modifiers relevant to dynamic dispatch checks
//.
type MethodFlags uint8

const (
	MethodFlagNone MethodFlags = 0
	MethodFlagDyn  MethodFlags = 1 << iota
)

// FunctionDecl is shared by ItemFunction and trait-prototype declarations
// inside ItemTrait.
type FunctionDecl struct {
	Name       source.StringID
	Vis        Visibility
	Span       source.Span
	TypeParams []TypeParamID
	Params     []ParamID
	Return     TypeExprID // NoTypeExprID means unit/void
	Body       *Block     // nil for a trait prototype (no body)
	Flags      MethodFlags
}

// StructDecl is a struct declaration's payload.
type StructDecl struct {
	Name       source.StringID
	Vis        Visibility
	Span       source.Span
	TypeParams []TypeParamID
	Fields     []StructField
}

// TraitDecl is a trait declaration's payload.
type TraitDecl struct {
	Name        source.StringID
	Vis         Visibility
	Span        source.Span
	Supertraits []QualifiedName
	Methods     []FunctionDecl
}

// ImplDecl declares `impl Trait for Type { ... }` or an inherent
// `impl Type { ... }`; Trait is NoTypeExprID for an inherent impl.
type ImplDecl struct {
	Trait      TypeExprID
	Target     TypeExprID
	Span       source.Span
	TypeParams []TypeParamID
	Methods    []ItemID // ItemFunction entries
}

// StaticDecl / ConstDecl declare module-level variables.
type StaticDecl struct {
	Name    source.StringID
	Vis     Visibility
	Span    source.Span
	Declared TypeExprID
	Init    ExprID
	IsConst bool
}

// AliasDecl declares `type Name = Target;`.
type AliasDecl struct {
	Name   source.StringID
	Vis    Visibility
	Span   source.Span
	Target TypeExprID
}

// ImportDecl declares `import path::To::Item;`.
type ImportDecl struct {
	Path QualifiedName
	Span source.Span
}

// Item is a top-level (or impl-block) declaration.
type Item struct {
	Kind ItemKind
	Span source.Span

	Struct   StructDecl
	Trait    TraitDecl
	Impl     ImplDecl
	Function FunctionDecl
	Static   StaticDecl
	Alias    AliasDecl
	Import   ImportDecl
}

type Items struct{ arena Arena[Item] }

func NewItems(hint uint) *Items { return &Items{arena: *NewArena[Item](hint)} }

func (it *Items) New(item Item) ItemID { return ItemID(it.arena.Allocate(item)) }

func (it *Items) Get(id ItemID) *Item { return it.arena.Get(uint32(id)) }

// TypeParams/Params arenas let items and functions reference shared
// generic-parameter / parameter declarations by ID.
type TypeParams struct{ arena Arena[TypeParam] }

func NewTypeParams(hint uint) *TypeParams { return &TypeParams{arena: *NewArena[TypeParam](hint)} }

func (t *TypeParams) New(tp TypeParam) TypeParamID { return TypeParamID(t.arena.Allocate(tp)) }

func (t *TypeParams) Get(id TypeParamID) *TypeParam { return t.arena.Get(uint32(id)) }

type Params struct{ arena Arena[Param] }

func NewParams(hint uint) *Params { return &Params{arena: *NewArena[Param](hint)} }

func (p *Params) New(param Param) ParamID { return ParamID(p.arena.Allocate(param)) }

func (p *Params) Get(id ParamID) *Param { return p.arena.Get(uint32(id)) }
