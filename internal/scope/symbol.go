package scope

import (
	"vela/internal/ast"
	"vela/internal/source"
	"vela/internal/types"
)

// Kind classifies what a Symbol names.
type SymbolKind uint8

const (
	SymInvalid SymbolKind = iota

	// Type symbols.
	SymStruct
	SymTrait
	SymLabel
	SymTypeParam
	SymAlias
	SymErrorType

	// Callable symbols.
	SymFunction
	SymPrototype // a trait method signature with no body
	SymOperator

	// Variable symbols.
	SymLocal
	SymParam
	SymSelfParam
	SymStatic
	SymField
	SymErrorVar

	// Module / namespace.
	SymModule

	// Supertrait edges: "trait T declares supertrait U".
	SymSupertraitEdge
)

func (k SymbolKind) String() string {
	switch k {
	case SymStruct:
		return "struct"
	case SymTrait:
		return "trait"
	case SymLabel:
		return "label"
	case SymTypeParam:
		return "type-param"
	case SymAlias:
		return "alias"
	case SymErrorType:
		return "error-type"
	case SymFunction:
		return "function"
	case SymPrototype:
		return "prototype"
	case SymOperator:
		return "operator"
	case SymLocal:
		return "local"
	case SymParam:
		return "param"
	case SymSelfParam:
		return "self"
	case SymStatic:
		return "static"
	case SymField:
		return "field"
	case SymErrorVar:
		return "error-var"
	case SymModule:
		return "module"
	case SymSupertraitEdge:
		return "supertrait-edge"
	default:
		return "invalid"
	}
}

// IsType reports whether k is one of the type-symbol variants.
func (k SymbolKind) IsType() bool {
	switch k {
	case SymStruct, SymTrait, SymLabel, SymTypeParam, SymAlias, SymErrorType:
		return true
	default:
		return false
	}
}

// IsError reports whether k is one of the kind-appropriate error
// sentinels.
func (k SymbolKind) IsError() bool { return k == SymErrorType || k == SymErrorVar }

// Category distinguishes a static (free-standing) symbol from one that
// requires an instance receiver.
type Category uint8

const (
	CatStatic Category = iota
	CatInstance
)

// Flags records misc boolean attributes for quick checks.
type Flags uint16

const (
	FlagNone    Flags = 0
	FlagDefined Flags = 1 << iota // body/value filled in (vs. forward-declared)
	FlagGeneric
	FlagDynDispatchable
	FlagMutable
	FlagBuiltin
)

// Symbol is the identity of a named program entity. Symbols are
// the only mutable, identity-bearing entity in the data model — every
// other node is value-typed and immutable after construction.
type Symbol struct {
	Name     source.StringID
	Kind     SymbolKind
	Category Category
	Scope    ScopeID // owning scope, fixed for the symbol's lifetime
	Span     source.Span
	Vis      ast.Visibility
	Flags    Flags

	Type types.TypeID // concrete type, for typed symbol kinds

	// Generic parameters this symbol itself introduces.
	TypeParams []SymbolID

	// Ordered parameter symbols, for SymFunction/SymPrototype/SymOperator.
	Params []SymbolID

	// Non-nil when this symbol is a monomorphized instance: the generic
	// symbol it was instantiated from and the arguments used.
	InstantiatedFrom SymbolID
	TypeArgs         []types.TypeID

	// SymSupertraitEdge payload: the trait symbol this edge is attached
	// to (Scope's owner) plus the required supertrait type.
	Supertrait types.TypeID

	// AST origin, for diagnostics.
	DeclItem ast.ItemID
	DeclStmt ast.StmtID

	// InnerScope is the scope this symbol introduces for further
	// qualified-name resolution (modules, structs, traits); NoScopeID
	// for symbols that don't introduce one (locals, fields, ...).
	InnerScope ScopeID
}

// IsGeneric reports whether the symbol has its own type parameters.
func (s *Symbol) IsGeneric() bool { return len(s.TypeParams) > 0 }
