package scope

import (
	"fmt"

	"fortio.org/safecast"

	"vela/internal/source"
)

// Scopes is a compact slice-backed arena of every Scope in a compilation.
type Scopes struct{ data []Scope }

// NewScopes allocates a scope arena with a capacity hint.
func NewScopes(capHint uint32) *Scopes {
	if capHint == 0 {
		capHint = 32
	}
	return &Scopes{data: make([]Scope, 1, capHint+1)} // index 0 reserved
}

// New allocates a scope and links it into its parent's Children.
func (s *Scopes) New(kind Kind, parent ScopeID, owner Owner, name string) ScopeID {
	level := 0
	if parent.IsValid() {
		if p := s.Get(parent); p != nil {
			level = p.Level + 1
		}
	}
	idx, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scope: arena overflow: %w", err))
	}
	id := ScopeID(idx)
	s.data = append(s.data, Scope{
		Kind:      kind,
		Parent:    parent,
		Owner:     owner,
		Name:      name,
		Level:     level,
		NameIndex: make(map[source.StringID][]SymbolID),
	})
	if parent.IsValid() {
		if p := s.Get(parent); p != nil {
			p.Children = append(p.Children, id)
		}
	}
	return id
}

func (s *Scopes) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Scopes) Len() int { return len(s.data) - 1 }

// Symbols is a compact slice-backed arena of every Symbol in a
// compilation. Symbols are never removed; they are the only mutable,
// identity-bearing entity, so Get returns a live pointer.
type Symbols struct{ data []Symbol }

func NewSymbols(capHint uint32) *Symbols {
	if capHint == 0 {
		capHint = 64
	}
	return &Symbols{data: make([]Symbol, 1, capHint+1)}
}

func (s *Symbols) New(sym Symbol) SymbolID {
	idx, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("scope: symbol arena overflow: %w", err))
	}
	id := SymbolID(idx)
	s.data = append(s.data, sym)
	return id
}

func (s *Symbols) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

func (s *Symbols) Len() int { return len(s.data) - 1 }

func (s *Symbols) Data() []Symbol {
	if len(s.data) <= 1 {
		return nil
	}
	return s.data[1:]
}
