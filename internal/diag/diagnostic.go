package diag

import "vela/internal/source"

// Note is auxiliary context attached to a Diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one reported problem: a severity, a producing code, the
// primary location, a message, and zero or more related notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Primary  source.Span
	Message  string
	Notes    []Note
}

// WithNote appends a note and returns the updated diagnostic by value,
// matching the rest of this package's construct-then-attach style.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// Group is an ordered list of diagnostics presented together: a primary
// error followed by its related notes-as-diagnostics, when a producer
// wants note severities to carry their own Diagnostic identity rather
// than being folded into Diagnostic.Notes (e.g. "ambiguous symbol
// reference" plus one SevNote diagnostic per competing declaration, S1).
type Group []Diagnostic

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: SevError, Code: code, Primary: primary, Message: msg}
}

func NewNote(primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: SevNote, Primary: primary, Message: msg}
}
