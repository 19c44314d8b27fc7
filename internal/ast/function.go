package ast

import "github.com/WriteNaN/buzz/internal/types"

// ParamDecl is one declared function parameter. Default, when non-nil,
// is an AST fragment evaluated fresh at every call (§4.2 "Default
// values") — never a precomputed Value.
type ParamDecl struct {
	Name    string
	Type    types.TypeID
	Default *Expr
}

// UpvalueCapture is one `(is_local, slot)` pair a closure captures from
// its enclosing scope, in the order `OpClosure` expects to find them
// (§4.3 "Closures"). IsLocal selects between a slot in the immediately
// enclosing frame and an upvalue index already captured by that frame.
type UpvalueCapture struct {
	IsLocal bool
	Index   int
}

// FunctionNode is the shared body descriptor for a `fun` declaration, an
// object method, an anonymous function literal, and a catch clause
// (§4.2 "Produced AST nodes": Function, FunDeclaration).
type FunctionNode struct {
	Name       string // "" for anonymous functions and catch clauses
	Params     []ParamDecl
	ReturnType types.TypeID
	Kind       types.FunctionKind
	Body       *Stmt // always a StmtBlock
	Type       types.TypeID // the KindFunction TypeID, set by the type-checker
	Hidden     bool         // excludes a `$test`-prefixed function from normal calls
	Upvalues   []UpvalueCapture
}
