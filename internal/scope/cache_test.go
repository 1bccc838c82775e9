package scope

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/diag"
	"vela/internal/source"
	"vela/internal/types"
)

func TestCacheRoundTripPreservesSymbolsAndInstances(t *testing.T) {
	table := NewTable(nil, nil)
	name := table.Strings.Intern("identity")
	generic := diag.Collect(diag.NewBag(0), table.DeclareSymbol(Symbol{
		Name: name, Kind: SymFunction, Category: CatStatic,
		Scope: table.Root, Span: source.Span{Start: 1, End: 1},
		TypeParams: []SymbolID{1}, Flags: FlagDefined,
	}))
	inst := table.CollectGenericInstance(generic, []types.TypeID{table.Types.Builtins().Int})

	structName := table.Strings.Intern("Box")
	ty := table.Types.RegisterStruct(structName, source.Span{Start: 2, End: 2})
	structSym := diag.Collect(diag.NewBag(0), table.DeclareSymbol(Symbol{
		Name: structName, Kind: SymStruct, Category: CatStatic,
		Scope: table.Root, Span: source.Span{Start: 2, End: 2}, Type: ty, Flags: FlagDefined,
	}))
	table.BindTypeSymbol(ty, structSym)

	var buf bytes.Buffer
	if err := table.EncodeCache(&buf); err != nil {
		t.Fatalf("EncodeCache: %v", err)
	}

	restored := NewTable(table.Strings, table.Types)
	ok, err := restored.DecodeCache(&buf)
	if err != nil {
		t.Fatalf("DecodeCache: %v", err)
	}
	if !ok {
		t.Fatalf("expected DecodeCache to accept a payload it just wrote")
	}

	if restored.Symbols.Len() != table.Symbols.Len() {
		t.Fatalf("expected the symbol arena to round-trip, got %d want %d", restored.Symbols.Len(), table.Symbols.Len())
	}
	got, ok := restored.LookupGenericInstance(generic, []types.TypeID{table.Types.Builtins().Int})
	if !ok || got != inst {
		t.Fatalf("expected the generic instance to survive the round trip, got %v ok=%v want %v", got, ok, inst)
	}
	if restoredStruct, ok := restored.typeSymbolOf[ty]; !ok || restoredStruct != structSym {
		t.Fatalf("expected the type-symbol index to survive the round trip, got %v ok=%v want %v", restoredStruct, ok, structSym)
	}
}

func TestDecodeCacheRejectsMismatchedSchema(t *testing.T) {
	table := NewTable(nil, nil)
	var buf bytes.Buffer
	if err := table.EncodeCache(&buf); err != nil {
		t.Fatalf("EncodeCache: %v", err)
	}

	var tampered CachePayload
	if err := msgpack.NewDecoder(&buf).Decode(&tampered); err != nil {
		t.Fatalf("decode for tampering: %v", err)
	}
	tampered.Schema = cacheSchemaVersion + 1
	var tamperedBuf bytes.Buffer
	if err := msgpack.NewEncoder(&tamperedBuf).Encode(&tampered); err != nil {
		t.Fatalf("re-encode tampered payload: %v", err)
	}

	restored := NewTable(table.Strings, table.Types)

	ok, err := restored.DecodeCache(&tamperedBuf)
	if err != nil {
		t.Fatalf("DecodeCache: %v", err)
	}
	if ok {
		t.Fatalf("expected a schema mismatch to be rejected")
	}
}
