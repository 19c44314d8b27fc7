// Package ast defines Buzz's typed AST. Nodes are tagged-variant structs
// (§9 "AST dispatch"): one Expr type and one Stmt type carry a Kind
// discriminator plus every field any variant might need, left zero when
// unused — the emitter and type-checker switch on Kind rather than on a
// Go interface method set.
package ast

import (
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

// ExprKind discriminates the variant an Expr node holds.
type ExprKind uint8

const (
	ExprNull ExprKind = iota
	ExprBool
	ExprInt
	ExprFloat
	ExprStringLit // a string literal with no `{expr}` segments
	ExprString    // an interpolated string (§4.1 "String interpolation")
	ExprList
	ExprMap
	ExprRange
	ExprVariable
	ExprUnary
	ExprBinary
	ExprIs
	ExprUnwrap      // `?.` optional-chaining access
	ExprForceUnwrap // `!`
	ExprSubscript
	ExprDot
	ExprSuper
	ExprObjectInit
	ExprCall
	ExprFunction // an anonymous function literal
)

// SlotKind classifies where a NamedVariable resolves to (§4.2
// "Scoping"), mirroring the Lua 5.x local/upvalue/global closure model.
type SlotKind uint8

const (
	SlotUnresolved SlotKind = iota
	SlotLocal
	SlotUpvalue
	SlotGlobal
)

// Arg is one call argument; Name is empty for a positional argument, or
// the parameter name (or "$", binding to the first parameter) for a
// named one (§4.2 "Types" — call checking).
type Arg struct {
	Span  source.Span
	Name  string
	Value *Expr
}

// CatchClause is a function value attached to a call site (§4.2
// "Catch clause" in the glossary): when Param is empty the clause
// catches any thrown value.
type CatchClause struct {
	Span      source.Span
	Param     string
	ParamType types.TypeID
	Function  *FunctionNode
}

// Expr is one expression-tree node. Only the fields relevant to Kind
// are populated.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type types.TypeID // resolved static type; NoTypeID before type-checking

	// ExprBool
	BoolValue bool
	// ExprInt
	IntValue int32
	// ExprFloat
	FloatValue float64
	// ExprStringLit / first+only piece of ExprString when unintepolated
	StringValue string

	// ExprString: literal text pieces interleaved with sub-expressions;
	// len(Pieces) == len(Parts)+1.
	Pieces []string
	Parts  []*Expr

	// ExprList
	Items    []*Expr
	ItemType types.TypeID

	// ExprMap
	MapKeys       []*Expr
	MapValues     []*Expr
	MapKeyType    types.TypeID
	MapValueType  types.TypeID

	// ExprRange
	Low, High *Expr

	// ExprVariable
	Name      string
	Slot      SlotKind
	SlotIndex int

	// ExprUnary (Operand) / ExprBinary (Left, Right)
	Op      token.Kind
	Operand *Expr
	Left    *Expr
	Right   *Expr

	// ExprIs: Left is the value being tested, IsType is the RHS type
	// constant (§4.2 "`is` produces Bool; RHS is a TypeDef constant").
	IsType types.TypeID

	// ExprUnwrap / ExprForceUnwrap reuse Operand.

	// ExprSubscript
	Container *Expr
	Index     *Expr

	// ExprDot / ExprSuper
	Receiver *Expr // nil for ExprSuper (always `this`)
	Member   string

	// ExprObjectInit
	ObjectName  string
	ObjectType  types.TypeID
	FieldNames  []string
	FieldValues []*Expr

	// ExprCall
	Callee       *Expr
	Args         []Arg
	CatchClauses []CatchClause

	// ExprFunction
	Function *FunctionNode
}
