package scope

import (
	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/trace"
	"vela/internal/types"
)

// Table owns the program's symbol graph for one compilation session.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Types   *types.Interner
	Strings *source.Interner

	// Tracer receives a point event for every symbol declared and every
	// generic-instantiation cache hit. Defaults to trace.Nop, so tracing
	// costs nothing until a caller installs a real Tracer.
	Tracer trace.Tracer

	Root ScopeID

	// Kind-appropriate error sentinels: interchangeable black
	// holes every resolution failure can fall back to, so a single
	// unresolved name never cascades into further diagnostics.
	ErrorType     SymbolID
	ErrorVariable SymbolID
	ErrorFunction SymbolID
	ErrorModule   SymbolID

	instances *InstanceCache

	// typeSymbolOf maps a struct/trait TypeID back to the symbol that
	// declared it, so instance-member resolution can reach the type's
	// scope. Populated by BindTypeSymbol.
	typeSymbolOf map[types.TypeID]SymbolID
}

// BindTypeSymbol records that sym is the declaring symbol for ty, so
// ResolveInstanceSymbol can find ty's member scope.
func (t *Table) BindTypeSymbol(ty types.TypeID, sym SymbolID) {
	t.typeSymbolOf[ty] = sym
}

// NewTable constructs a fresh Table with its root scope and error
// sentinels already in place.
func NewTable(strings *source.Interner, typeInterner *types.Interner) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	if typeInterner == nil {
		typeInterner = types.NewInterner()
	}
	t := &Table{
		Scopes:       NewScopes(0),
		Symbols:      NewSymbols(0),
		Types:        typeInterner,
		Strings:      strings,
		Tracer:       trace.Nop,
		instances:    newInstanceCache(),
		typeSymbolOf: make(map[types.TypeID]SymbolID),
	}
	t.Root = t.Scopes.New(KindModule, NoScopeID, Owner{}, "")

	t.ErrorType = t.Symbols.New(Symbol{
		Kind: SymErrorType, Category: CatStatic, Scope: t.Root,
		Type: typeInterner.Builtins().Error, Flags: FlagDefined,
	})
	t.ErrorVariable = t.Symbols.New(Symbol{
		Kind: SymErrorVar, Category: CatStatic, Scope: t.Root,
		Type: typeInterner.Builtins().Error, Flags: FlagDefined,
	})
	t.ErrorFunction = t.Symbols.New(Symbol{
		Kind: SymFunction, Category: CatStatic, Scope: t.Root,
		Type: typeInterner.Builtins().Error, Flags: FlagDefined,
	})
	t.ErrorModule = t.Symbols.New(Symbol{
		Kind: SymModule, Category: CatStatic, Scope: t.Root, Flags: FlagDefined,
	})
	return t
}

// NewScope allocates a child scope under parent.
func (t *Table) NewScope(kind Kind, parent ScopeID, owner Owner, name string) ScopeID {
	return t.Scopes.New(kind, parent, owner, name)
}

// DeclareAssociation adds an overlay scope searched during static
// resolution of `into` — used to expose an impl block's contents on the
// scope of the type it implements.
func (t *Table) DeclareAssociation(into, associated ScopeID) {
	sc := t.Scopes.Get(into)
	if sc == nil {
		return
	}
	sc.Associations = append(sc.Associations, associated)
}

// allowsOverload reports whether multiple symbols of this kind may
// legitimately share a name in the same scope: functions and operators
// may be declared more than once under one name. A later lookup that
// finds several of them reports an ambiguous reference (see
// resolveCandidates); no pass picks one by argument shape.
func allowsOverload(kind SymbolKind) bool {
	return kind == SymFunction || kind == SymOperator
}

// declKey identifies "the same declaration" for the redefinition check:
// name, kind, and template/impl-template argument identities.
type declKey struct {
	name    source.StringID
	kind    SymbolKind
	argsKey string
}

func typeArgsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(args)*5)
	for i, a := range args {
		if i > 0 {
			buf = append(buf, ',')
		}
		for a >= 10 {
			buf = append(buf, byte('0'+a%10))
			a /= 10
		}
		buf = append(buf, byte('0'+a%10))
	}
	return string(buf)
}

// DeclareSymbol attaches owned to its scope. Non-overloadable
// kinds are deduplicated by (name, kind, type-args): a second identical
// declaration is treated as a partial re-declaration (forward-decl then
// define) and the pre-existing symbol is returned instead of a new one,
// UNLESS both the existing one and the new one are FlagDefined, in which
// case this is a genuine redefinition and a diagnostic is produced.
func (t *Table) DeclareSymbol(owned Symbol) diag.Diagnosed[SymbolID] {
	sc := t.Scopes.Get(owned.Scope)
	if sc == nil {
		id := t.Symbols.New(owned)
		return diag.Of(id)
	}

	if !allowsOverload(owned.Kind) {
		key := declKey{name: owned.Name, kind: owned.Kind, argsKey: typeArgsKey(owned.TypeArgs)}
		for _, existingID := range sc.NameIndex[owned.Name] {
			existing := t.Symbols.Get(existingID)
			if existing == nil || existing.Kind != owned.Kind {
				continue
			}
			if (declKey{name: existing.Name, kind: existing.Kind, argsKey: typeArgsKey(existing.TypeArgs)}) != key {
				continue
			}
			if existing.Flags&FlagDefined != 0 && owned.Flags&FlagDefined != 0 {
				return diag.WithDiag(existingID, diag.NewError(
					diag.ResRedefinition, owned.Span,
					"redefinition of '"+t.Strings.MustLookup(owned.Name)+"'",
				).WithNote(existing.Span, "previously declared here"))
			}
			if existing.Flags&FlagDefined == 0 && owned.Flags&FlagDefined != 0 {
				*existing = owned
				existing.Name = owned.Name
			}
			return diag.Of(existingID)
		}
	}

	id := t.Symbols.New(owned)
	sc.Symbols = append(sc.Symbols, id)
	sc.NameIndex[owned.Name] = append(sc.NameIndex[owned.Name], id)
	t.Tracer.Emit(trace.Event{
		Kind: "point", Scope: trace.ScopeDetail, Name: "scope.declare",
		Detail: t.Strings.MustLookup(owned.Name),
	})
	return diag.Of(id)
}

// ErrorSymbolFor returns the kind-appropriate error sentinel.
func (t *Table) ErrorSymbolFor(kind SymbolKind) SymbolID {
	if kind.IsType() {
		return t.ErrorType
	}
	if kind == SymModule {
		return t.ErrorModule
	}
	if kind == SymFunction || kind == SymPrototype || kind == SymOperator {
		return t.ErrorFunction
	}
	return t.ErrorVariable
}
