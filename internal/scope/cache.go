package scope

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/types"
)

// cacheSchemaVersion guards CachePayload's wire shape; bump it whenever
// a field is added, removed, or reinterpreted so a stale on-disk cache
// is rejected outright instead of decoding into the wrong shape.
const cacheSchemaVersion uint16 = 1

// CachePayload snapshots everything a driver needs to skip re-resolving
// and re-instantiating an unchanged module: the resolved symbol and
// scope arenas, the generic-instantiation memoization table, and the
// struct/trait-to-declaring-symbol index ResolveInstanceSymbol needs.
// It never carries the string or type interners — a cache hit is only
// valid when the caller rebuilds the table against the same interners
// it was encoded with.
type CachePayload struct {
	Schema uint16

	Scopes  []Scope
	Symbols []Symbol

	Instances    []instanceEntry
	TypeSymbolOf []typeSymbolEntry
}

type instanceEntry struct {
	Generic  SymbolID
	ArgsKey  string
	Instance SymbolID
}

type typeSymbolEntry struct {
	Type   types.TypeID
	Symbol SymbolID
}

// EncodeCache writes a CachePayload for t to w.
func (t *Table) EncodeCache(w io.Writer) error {
	payload := CachePayload{
		Schema:  cacheSchemaVersion,
		Scopes:  t.Scopes.data,
		Symbols: t.Symbols.data,
	}
	for k, v := range t.instances.entries {
		payload.Instances = append(payload.Instances, instanceEntry{Generic: k.generic, ArgsKey: k.argsKey, Instance: v})
	}
	for ty, sym := range t.typeSymbolOf {
		payload.TypeSymbolOf = append(payload.TypeSymbolOf, typeSymbolEntry{Type: ty, Symbol: sym})
	}
	return msgpack.NewEncoder(w).Encode(&payload)
}

// DecodeCache replaces t's scope forest, symbol arena, instantiation
// cache, and type-symbol index with the contents read from r. It
// returns false without modifying t if the payload's schema doesn't
// match this build's cacheSchemaVersion.
func (t *Table) DecodeCache(r io.Reader) (bool, error) {
	var payload CachePayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return false, nil
	}

	t.Scopes = &Scopes{data: payload.Scopes}
	t.Symbols = &Symbols{data: payload.Symbols}

	t.instances = newInstanceCache()
	for _, e := range payload.Instances {
		t.instances.entries[instanceKey{generic: e.Generic, argsKey: e.ArgsKey}] = e.Instance
	}

	t.typeSymbolOf = make(map[types.TypeID]SymbolID, len(payload.TypeSymbolOf))
	for _, e := range payload.TypeSymbolOf {
		t.typeSymbolOf[e.Type] = e.Symbol
	}
	return true, nil
}
