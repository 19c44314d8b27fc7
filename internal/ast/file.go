package ast

import "github.com/WriteNaN/buzz/internal/source"

// File is one parsed compilation unit: `program := (import | export |
// declaration)*` (§6).
type File struct {
	Path   string
	FileID source.FileID
	Stmts  []*Stmt
}
