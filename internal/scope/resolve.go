package scope

import (
	"vela/internal/ast"
	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/types"
)

// KindMask restricts a lookup to a subset of symbol kinds.
type KindMask uint32

const KindMaskAny KindMask = ^KindMask(0)

func (k SymbolKind) Mask() KindMask { return KindMask(1) << uint(k) }

func matchesMask(mask KindMask, kind SymbolKind) bool {
	return mask == KindMaskAny || mask&kind.Mask() != 0
}

// lookupLocal searches sc's own NameIndex and its associations (in
// declaration order, own scope preferred) for symbols whose name and
// kind match.
func (t *Table) lookupLocal(sc *Scope, name source.StringID, mask KindMask) []SymbolID {
	var out []SymbolID
	for _, id := range sc.NameIndex[name] {
		if sym := t.Symbols.Get(id); sym != nil && matchesMask(mask, sym.Kind) {
			out = append(out, id)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, assoc := range sc.Associations {
		asc := t.Scopes.Get(assoc)
		if asc == nil {
			continue
		}
		for _, id := range asc.NameIndex[name] {
			if sym := t.Symbols.Get(id); sym != nil && matchesMask(mask, sym.Kind) {
				out = append(out, id)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// visible reports whether sym is visible from requester: a public symbol
// is always visible; a private one is visible only within its owning
// scope's subtree (requester is the declaring scope or a descendant of
// it, walking the Parent chain).
func (t *Table) visible(sym *Symbol, requester ScopeID) bool {
	if sym.Vis == ast.VisPublic {
		return true
	}
	for sc := requester; sc.IsValid(); {
		if sc == sym.Scope {
			return true
		}
		s := t.Scopes.Get(sc)
		if s == nil {
			break
		}
		sc = s.Parent
	}
	return false
}

// ResolveStaticSymbol performs qualified-name resolution. current is the
// scope resolution starts walking parent-ward from (ignored for
// globally-qualified names, which start at the root); requester is the
// scope the visibility check is evaluated against (normally == current).
func (t *Table) ResolveStaticSymbol(name ast.QualifiedName, current, requester ScopeID, mask KindMask) diag.Diagnosed[SymbolID] {
	if len(name.Sections) == 0 {
		return diag.Of(t.ErrorSymbolFor(SymInvalid))
	}
	first := name.Sections[0]

	var candidates []SymbolID
	if name.Global {
		if sc := t.Scopes.Get(t.Root); sc != nil {
			candidates = t.lookupLocal(sc, first.Ident, mask)
		}
	} else {
		for sc := current; sc.IsValid(); {
			scope := t.Scopes.Get(sc)
			if scope == nil {
				break
			}
			if found := t.lookupLocal(scope, first.Ident, mask); len(found) > 0 {
				candidates = found
				break
			}
			sc = scope.Parent
		}
	}

	if len(candidates) == 0 {
		diagErr := diag.NewError(diag.ResUndefinedSymbol, first.Span,
			"undefined symbol '"+t.Strings.MustLookup(first.Ident)+"'")
		return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diagErr)
	}

	resolved, d := t.resolveCandidates(candidates, first, requester)
	if resolved == NoSymbolID {
		return d
	}

	for _, section := range name.Sections[1:] {
		sym := t.Symbols.Get(resolved)
		if sym == nil || !sym.InnerScope.IsValid() {
			return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diag.NewError(
				diag.ResUndefinedSymbol, section.Span,
				"'"+t.Strings.MustLookup(section.Ident)+"' is not a member of a namespace",
			))
		}
		inner := t.Scopes.Get(sym.InnerScope)
		if inner == nil {
			return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diag.NewError(diag.ResUndefinedSymbol, section.Span, "undefined symbol"))
		}
		found := t.lookupLocal(inner, section.Ident, mask)
		if len(found) == 0 {
			return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diag.NewError(
				diag.ResUndefinedSymbol, section.Span,
				"undefined symbol '"+t.Strings.MustLookup(section.Ident)+"'",
			))
		}
		resolved, d = t.resolveCandidates(found, section, requester)
		if resolved == NoSymbolID {
			return d
		}
	}

	sym := t.Symbols.Get(resolved)
	if sym == nil {
		return diag.Of(t.ErrorSymbolFor(SymInvalid))
	}
	if sym.Category == CatInstance {
		return diag.WithDiag(t.ErrorSymbolFor(sym.Kind), diag.NewError(
			diag.ResStaticVsInstanceMisuse, name.Span, "instance symbol used statically"))
	}
	if !t.visible(sym, requester) {
		return diag.WithDiag(t.ErrorSymbolFor(sym.Kind), diag.NewError(
			diag.ResInaccessibleSymbol, name.Span,
			"'"+t.Strings.MustLookup(sym.Name)+"' is private").WithNote(sym.Span, "declared here"))
	}

	// Generic instantiation from the final section's template arguments is
	// the binder's job: it has to first resolve each ast.TypeExprID into a
	// types.TypeID via the sema layer, then call Table.CollectGenericInstance
	// with the result. Resolution here only ever returns the generic
	// symbol itself.
	return diag.Of(resolved)
}

// resolveCandidates applies ambiguity handling: a single match is returned
// directly, and every multi-candidate match is ambiguous at the reference
// site — including multiple same-named function/operator declarations,
// since nothing here (or in the call-checking pass) disambiguates by
// argument shape. allowsOverload only governs whether DeclareSymbol lets
// such declarations coexist in the first place.
func (t *Table) resolveCandidates(candidates []SymbolID, section ast.NameSection, requester ScopeID) (SymbolID, diag.Diagnosed[SymbolID]) {
	if len(candidates) == 1 {
		return candidates[0], diag.Diagnosed[SymbolID]{}
	}
	group := diag.Group{diag.NewError(diag.ResAmbiguousReference, section.Span,
		"ambiguous symbol reference '"+t.Strings.MustLookup(section.Ident)+"'")}
	for _, c := range candidates {
		if sym := t.Symbols.Get(c); sym != nil {
			group = append(group, diag.NewNote(sym.Span, "candidate declared here"))
		}
	}
	bag := diag.NewBag(len(group))
	bag.AddGroup(group)
	return NoSymbolID, diag.Diagnosed[SymbolID]{Value: t.ErrorSymbolFor(SymInvalid), Bag: bag}
}

// ResolveInstanceSymbol looks up a single name section on receiverType
// (and its impls, trait impls, and reachable supertrait chain), used for
// `a.name` member access and method calls.
func (t *Table) ResolveInstanceSymbol(receiverType types.TypeID, fieldOrMethod source.StringID, span source.Span, mask KindMask, requester ScopeID) diag.Diagnosed[SymbolID] {
	base := t.Types.StripAllModifiers(receiverType)
	base = t.Types.Unalias(base)

	scopeOf, ok := t.typeScope(base)
	if !ok {
		return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diag.NewError(
			diag.ResNoSuchField, span, "type has no members"))
	}
	sc := t.Scopes.Get(scopeOf)
	if sc == nil {
		return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diag.NewError(diag.ResNoSuchField, span, "type has no members"))
	}
	found := t.lookupLocal(sc, fieldOrMethod, mask)
	if len(found) == 0 {
		seen := map[types.TypeID]bool{base: true}
		for queue := []types.TypeID{base}; len(queue) > 0 && len(found) == 0; queue = queue[1:] {
			info, ok := t.Types.TraitInfo(queue[0])
			if !ok {
				continue
			}
			for _, super := range info.Supertraits {
				super = t.Types.Unalias(super)
				if seen[super] {
					continue
				}
				seen[super] = true
				queue = append(queue, super)
				if superScope, ok := t.typeScope(super); ok {
					if superSc := t.Scopes.Get(superScope); superSc != nil {
						if inherited := t.lookupLocal(superSc, fieldOrMethod, mask); len(inherited) > 0 {
							found = inherited
							break
						}
					}
				}
			}
		}
	}
	if len(found) == 0 {
		return diag.WithDiag(t.ErrorSymbolFor(SymInvalid), diag.NewError(
			diag.ResNoSuchField, span, "no field or method named '"+t.Strings.MustLookup(fieldOrMethod)+"'"))
	}
	resolved, d := t.resolveCandidates(found, ast.NameSection{Ident: fieldOrMethod, Span: span}, requester)
	if resolved == NoSymbolID {
		return d
	}
	sym := t.Symbols.Get(resolved)
	if sym == nil {
		return diag.Of(t.ErrorSymbolFor(SymInvalid))
	}
	if sym.Category == CatStatic && sym.Kind != SymFunction {
		return diag.WithDiag(t.ErrorSymbolFor(sym.Kind), diag.NewError(
			diag.ResStaticVsInstanceMisuse, span, "static symbol used as an instance member"))
	}
	if !t.visible(sym, requester) {
		return diag.WithDiag(t.ErrorSymbolFor(sym.Kind), diag.NewError(
			diag.ResInaccessibleSymbol, span,
			"'"+t.Strings.MustLookup(sym.Name)+"' is inaccessible here").WithNote(sym.Span, "declared here"))
	}
	return diag.Of(resolved)
}

// typeScope maps a nominal TypeID to the scope holding its declared
// members plus any associated impl-block overlays. The mapping is
// populated by BindTypeSymbol when the struct/trait declaration is
// first processed.
func (t *Table) typeScope(ty types.TypeID) (ScopeID, bool) {
	sym, ok := t.typeSymbolOf[ty]
	if !ok {
		return NoScopeID, false
	}
	s := t.Symbols.Get(sym)
	if s == nil || !s.InnerScope.IsValid() {
		return NoScopeID, false
	}
	return s.InnerScope, true
}
