package diag

import "github.com/WriteNaN/buzz/internal/source"

// Note is a secondary annotation attached to a Diagnostic, e.g. pointing
// at the original declaration in a "duplicate symbol" error.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one compiler message: a severity, a stable code, a
// primary span and human text, plus optional supporting notes.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// New builds a Diagnostic with no notes.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

// NewError is shorthand for New(SevError, ...), the overwhelming majority
// of diagnostics raised by the pipeline.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with an additional note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
