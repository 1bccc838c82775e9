// Package ast is the syntax-tree layer the binder consumes. Producing
// it — lexing and parsing source text — is an external collaborator;
// this package only fixes the node shapes a parser would hand to
// CreateSema.
package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is a generic typed arena allocating 1-based indices so that 0
// remains a usable "no ID" sentinel for every *ID type built on top.
type Arena[T any] struct {
	data []T
}

// NewArena creates an Arena with a capacity hint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate appends value and returns its 1-based index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	return n
}

// Get returns a pointer to the element at the 1-based index, or nil for 0
// or an out-of-range index.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// Len returns the number of allocated elements.
func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	return n
}
