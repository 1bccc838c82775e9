// Package source models source locations: interned file identities, byte
// spans within a file, and an identifier/string interner shared by every
// later stage (scopes, symbols, sema nodes all carry a source.Span).
package source

import "fmt"

// FileID identifies a source file; the front-end assigns the numbers.
type FileID uint32

// NoFileID marks the absence of a file.
const NoFileID FileID = 0

// IsValid reports whether the FileID refers to a registered file.
func (id FileID) IsValid() bool { return id != NoFileID }

// Span represents a contiguous half-open byte range within a file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

// Empty reports whether the span has zero length.
func (s Span) Empty() bool { return s.Start == s.End }

// Len returns the span's length in bytes.
func (s Span) Len() uint32 { return s.End - s.Start }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other. Spans from
// different files cannot be covered; s is returned unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
