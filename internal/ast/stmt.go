package ast

import (
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/types"
)

// StmtKind discriminates the variant a Stmt node holds.
type StmtKind uint8

const (
	StmtExpr StmtKind = iota
	StmtVarDecl
	StmtFunDecl
	StmtObjectDecl
	StmtEnumDecl
	StmtImport
	StmtExport
	StmtBlock
	StmtIf
	StmtFor
	StmtForEach
	StmtWhile
	StmtDoUntil
	StmtReturn
	StmtBreak
	StmtContinue
	StmtThrow
	StmtTest
)

// Stmt is one statement-tree node, including declarations (the grammar
// treats `declaration` as a kind of statement, §6 abridged grammar).
type Stmt struct {
	Kind StmtKind
	Span source.Span

	// StmtExpr, StmtReturn (Value), StmtThrow (Value)
	Expr  *Expr
	Value *Expr

	// StmtVarDecl
	Name      string
	DeclType  types.TypeID
	Const     bool
	Init      *Expr
	Slot      SlotKind
	SlotIndex int

	// StmtFunDecl
	Function *FunctionNode

	// StmtObjectDecl
	Object *ObjectDecl

	// StmtEnumDecl
	Enum *EnumDecl

	// StmtImport / StmtExport
	Import *ImportDecl
	Export *ExportDecl

	// StmtBlock
	Stmts []*Stmt

	// StmtIf
	Cond *Expr
	Then *Stmt
	Else *Stmt

	// StmtFor
	ForInit *Stmt
	ForPost *Stmt

	// StmtForEach. IterSlot is a hidden local, invisible to the source
	// program, that holds the iterable's own value for the loop's
	// duration (§4.4 "Foreach" stack layout "[iterable, key_slot,
	// value_slot]").
	KeyName   string
	ValueName string
	KeyType   types.TypeID
	ValueType types.TypeID
	IterSlot  int
	KeySlot   int
	ValueSlot int
	Iterable  *Expr

	// StmtIf/StmtFor/StmtForEach/StmtWhile/StmtDoUntil share Body as the
	// controlled statement; StmtWhile/StmtDoUntil share Cond above.
	Body *Stmt

	// StmtTest
	TestName string
}
