package ast

import (
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/types"
)

// ObjectFieldDecl is one field of an `object` declaration.
type ObjectFieldDecl struct {
	Span    source.Span
	Name    string
	Type    types.TypeID
	Default *Expr // nil means the field has no default and must be set in every ObjectInit
	Static  bool
}

// ObjectDecl is an `object` declaration (§4.2 "Object inheritance").
type ObjectDecl struct {
	Span      source.Span
	Name      string
	SuperName string // "" when there is no parent
	Fields    []ObjectFieldDecl
	Methods   []*FunctionNode
	Type      types.TypeID // the KindObject TypeID, set by the type-checker
}

// EnumCaseDecl is one `name` or `name => value` member of an enum.
type EnumCaseDecl struct {
	Span  source.Span
	Name  string
	Value *Expr // nil means "auto" (index-derived) value
}

// EnumDecl is an `enum` declaration.
type EnumDecl struct {
	Span       source.Span
	Name       string
	Underlying types.TypeID // the declared backing type (defaults to int)
	Cases      []EnumCaseDecl
	Type       types.TypeID // the KindEnum TypeID, set by the type-checker
}

// ImportDecl is an `import "path" as ns` declaration (§4.2 "Imports").
type ImportDecl struct {
	Span  source.Span
	Path  string
	Alias string
}

// ExportDecl is an `export` declaration naming top-level symbols to
// surface to importers.
type ExportDecl struct {
	Span  source.Span
	Names []string
}
