// Package testkit holds small invariant checkers shared by several
// packages' tests, so a parser test and a codegen test agree on what
// "a well-formed span" or "a dense global-slot table" means instead of
// each re-deriving it ad hoc.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/source"
)

// CheckSpanInvariants verifies that file's own span data is internally
// consistent: every top-level statement's span lies within the source
// file's content, and belongs to the same FileID as the file itself.
func CheckSpanInvariants(file *ast.File, sf *source.File) error {
	if file == nil || sf == nil {
		return fmt.Errorf("nil file or source file")
	}
	contentLen, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("content length overflow: %w", err)
	}
	for i, stmt := range file.Stmts {
		if stmt == nil {
			return fmt.Errorf("nil statement at index %d", i)
		}
		sp := stmt.Span
		if sp.End < sp.Start {
			return fmt.Errorf("statement %d has an inverted span: %v", i, sp)
		}
		if sp.File != file.FileID {
			return fmt.Errorf("statement %d span belongs to file %d, expected %d", i, sp.File, file.FileID)
		}
		if sp.End > contentLen {
			return fmt.Errorf("statement %d span end %d exceeds content length %d", i, sp.End, contentLen)
		}
	}
	return nil
}

// CheckGlobalSlotsAreDense verifies that names, a GlobalNames table
// produced by the parser, assigns one slot per distinct name with no
// gaps or duplicates — the invariant internal/codegen and the VM rely
// on to size Globals with make([]value.Value, len(names)).
func CheckGlobalSlotsAreDense(names []string) error {
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if prev, ok := seen[n]; ok {
			return fmt.Errorf("global %q declared at both slot %d and %d", n, prev, i)
		}
		seen[n] = i
	}
	return nil
}
