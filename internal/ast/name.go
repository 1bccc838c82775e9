package ast

import "vela/internal/source"

// NameSection is one dotted/scoped segment of a qualified name, optionally
// carrying template arguments: an identifier plus an optional type-arg
// list.
type NameSection struct {
	Ident source.StringID
	Args  []TypeExprID
	Span  source.Span
}

// QualifiedName is the sequence of sections resolved left to right.
// Global indicates the name started with a leading `::`, forcing
// resolution to begin at the root scope rather than walking parent-ward.
type QualifiedName struct {
	Global   bool
	Sections []NameSection
	Span     source.Span
}

// Simple builds a single-section, non-global name — the common case for a
// local identifier reference.
func Simple(ident source.StringID, span source.Span) QualifiedName {
	return QualifiedName{Sections: []NameSection{{Ident: ident, Span: span}}, Span: span}
}
