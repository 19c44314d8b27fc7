package types

import "github.com/WriteNaN/buzz/internal/source"

// PlaceholderKind records what syntactic position created the
// placeholder, so "Unknown type" diagnostics can be phrased precisely.
type PlaceholderKind uint8

const (
	PlaceholderTypeName PlaceholderKind = iota
	PlaceholderFieldAccess
	PlaceholderSuper
)

// PlaceholderType is the provisional payload of a KindPlaceholder Type,
// standing in for a name the parser has not yet resolved (§3, §4.2,
// §9 "Recursive TypeDefs & placeholders").
type PlaceholderType struct {
	Name string
	Kind PlaceholderKind
	Span source.Span
}
