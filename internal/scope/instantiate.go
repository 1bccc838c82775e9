package scope

import (
	"vela/internal/trace"
	"vela/internal/types"
)

// instanceKey identifies a monomorphized symbol: the generic it came
// from plus a normalized argument string (Go maps can't key on slices).
type instanceKey struct {
	generic SymbolID
	argsKey string
}

// InstanceCache memoizes CollectGenericInstance so repeated requests for
// the same (generic, args) pair return the same monomorphized symbol
// instead of allocating a fresh one each time.
type InstanceCache struct {
	entries map[instanceKey]SymbolID
}

func newInstanceCache() *InstanceCache {
	return &InstanceCache{entries: make(map[instanceKey]SymbolID)}
}

// CollectGenericInstance returns the symbol representing generic applied
// to args, creating and memoizing it on first request. generic must
// itself be a symbol with TypeParams; callers are responsible for
// checking arity and reporting any mismatch diagnostic before calling
// this — a mismatch here just falls back to the generic's own error
// sentinel.
func (t *Table) CollectGenericInstance(generic SymbolID, args []types.TypeID) SymbolID {
	g := t.Symbols.Get(generic)
	if g == nil {
		return t.ErrorSymbolFor(SymInvalid)
	}
	if len(g.TypeParams) != len(args) {
		return t.ErrorSymbolFor(g.Kind)
	}

	normalized := append([]types.TypeID(nil), args...)
	key := instanceKey{generic: generic, argsKey: typeArgsKey(normalized)}
	if existing, ok := t.instances.entries[key]; ok {
		t.Tracer.Emit(trace.Event{
			Kind: "point", Scope: trace.ScopeDetail, Name: "scope.instance_cache_hit",
			Detail: t.Strings.MustLookup(g.Name) + "<" + key.argsKey + ">",
		})
		return existing
	}

	inst := *g
	inst.InstantiatedFrom = generic
	inst.TypeArgs = normalized
	inst.TypeParams = nil
	id := t.Symbols.New(inst)
	t.instances.entries[key] = id
	return id
}

// LookupGenericInstance reports a previously collected instance without
// creating one, for callers that must not allocate (e.g. a dry-run
// diagnostic pass).
func (t *Table) LookupGenericInstance(generic SymbolID, args []types.TypeID) (SymbolID, bool) {
	key := instanceKey{generic: generic, argsKey: typeArgsKey(args)}
	id, ok := t.instances.entries[key]
	return id, ok
}
