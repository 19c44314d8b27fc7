package value

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/types"
)

// FunctionObj is a compiled function: its bytecode chunk plus everything
// the VM needs to open a call frame for it (§3 "Function").
type FunctionObj struct {
	Name         string
	Chunk        *Chunk
	Arity        int
	UpvalueCount int
	ParamNames   []string
	// ParamTypes holds each parameter's declared TypeID, parallel to
	// ParamNames — consulted when a catch closure's single parameter
	// decides whether it matches a thrown value (§4.4 "Exceptions",
	// "the topmost matching one (by parameter type)").
	ParamTypes []types.TypeID
	// Defaults holds one AST fragment per parameter (nil when the
	// parameter has none); each call re-evaluates the fragment so two
	// calls never share a mutable default's identity (§4.2 "Default
	// values", §8 invariant).
	Defaults []*ast.Expr
	Type     types.TypeID
	Kind     types.FunctionKind
}
