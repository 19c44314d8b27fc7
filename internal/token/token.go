package token

import "github.com/WriteNaN/buzz/internal/source"

// Token is one lexical unit: a kind, its source span, and the raw text
// that produced it (already unescaped for literals).
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether t has kind k.
func (t Token) Is(k Kind) bool { return t.Kind == k }
