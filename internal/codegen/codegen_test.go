package codegen

import (
	"testing"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/testkit"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/types"
)

func generate(t *testing.T, stmts []*ast.Stmt, globals []string) *Result {
	t.Helper()
	in := types.NewInterner()
	res := Generate(Input{
		File:        &ast.File{Stmts: stmts},
		Interner:    in,
		GlobalNames: globals,
	}, Options{})
	return res
}

func ops(code []bytecode.Instruction) []bytecode.OpCode {
	out := make([]bytecode.OpCode, len(code))
	for i, in := range code {
		out[i] = in.Op
	}
	return out
}

func TestGenerateEmptyScriptFallsThroughToVoidReturn(t *testing.T) {
	res := generate(t, nil, nil)
	code := res.Script.Chunk.Code
	if len(code) != 2 || code[0].Op != bytecode.OpVoid || code[1].Op != bytecode.OpReturn {
		t.Fatalf("expected [VOID RETURN], got %v", ops(code))
	}
}

func TestGenerateGlobalVarDeclDefinesGlobal(t *testing.T) {
	decl := &ast.Stmt{
		Kind: ast.StmtVarDecl, Name: "x", Slot: ast.SlotGlobal, SlotIndex: 0,
		Init: &ast.Expr{Kind: ast.ExprInt, IntValue: 42},
	}
	res := generate(t, []*ast.Stmt{decl}, []string{"x"})
	code := res.Script.Chunk.Code
	if code[0].Op != bytecode.OpConstant || code[1].Op != bytecode.OpDefineGlobal {
		t.Fatalf("expected [CONSTANT DEFINE_GLOBAL ...], got %v", ops(code))
	}
	if code[1].Arg != 0 {
		t.Fatalf("expected DEFINE_GLOBAL slot 0, got %d", code[1].Arg)
	}
}

func TestGenerateIfElsePatchesBothBranches(t *testing.T) {
	stmt := &ast.Stmt{
		Kind: ast.StmtIf,
		Cond: &ast.Expr{Kind: ast.ExprBool, BoolValue: true},
		Then: &ast.Stmt{Kind: ast.StmtExpr, Expr: &ast.Expr{Kind: ast.ExprInt, IntValue: 1}},
		Else: &ast.Stmt{Kind: ast.StmtExpr, Expr: &ast.Expr{Kind: ast.ExprInt, IntValue: 2}},
	}
	res := generate(t, []*ast.Stmt{stmt}, nil)
	code := res.Script.Chunk.Code
	// CONSTANT(true) JUMP_IF_FALSE CONSTANT(1) POP JUMP CONSTANT(2) POP VOID RETURN
	want := []bytecode.OpCode{
		bytecode.OpConstant, bytecode.OpJumpIfFalse,
		bytecode.OpConstant, bytecode.OpPop,
		bytecode.OpJump,
		bytecode.OpConstant, bytecode.OpPop,
		bytecode.OpVoid, bytecode.OpReturn,
	}
	got := ops(code)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d: expected %v, got %v (full: %v)", i, want[i], got[i], got)
		}
	}
	elseJumpTarget := 1 + int(code[1].Arg) + 1
	if elseJumpTarget != 5 {
		t.Fatalf("JUMP_IF_FALSE should land on the else-branch's first instruction (index 5), landed on %d", elseJumpTarget)
	}
	endJumpTarget := 4 + int(code[4].Arg) + 1
	if endJumpTarget != 7 {
		t.Fatalf("JUMP should land after the else-branch (index 7), landed on %d", endJumpTarget)
	}
}

// TestGenerateForceUnwrapNeverEmitsNot pins down the corrected `!`
// sequence: unlike `?.`, force-unwrap must not invert its null test,
// since it wants to skip the throw exactly when the operand IS null-free
// (i.e. when the equality test is false).
func TestGenerateForceUnwrapNeverEmitsNot(t *testing.T) {
	expr := &ast.Expr{
		Kind:    ast.ExprForceUnwrap,
		Operand: &ast.Expr{Kind: ast.ExprVariable, Name: "x", Slot: ast.SlotLocal, SlotIndex: 0},
	}
	stmt := &ast.Stmt{Kind: ast.StmtExpr, Expr: expr}
	res := generate(t, []*ast.Stmt{stmt}, nil)
	code := res.Script.Chunk.Code
	want := []bytecode.OpCode{
		bytecode.OpGetLocal, bytecode.OpCopy, bytecode.OpNull, bytecode.OpEqual,
		bytecode.OpJumpIfFalse, bytecode.OpPop, bytecode.OpConstant, bytecode.OpThrow,
		bytecode.OpPop, bytecode.OpVoid, bytecode.OpReturn,
	}
	got := ops(code)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

// TestGenerateOptionalChainSharesOneCoda asserts a?.b?.c's two `?.`
// short-circuit jumps both land on the same instruction: the end of the
// whole postfix chain, not two separate per-link codas.
func TestGenerateOptionalChainSharesOneCoda(t *testing.T) {
	a := &ast.Expr{Kind: ast.ExprVariable, Name: "a", Slot: ast.SlotLocal, SlotIndex: 0}
	ab := &ast.Expr{Kind: ast.ExprUnwrap, Receiver: a, Member: "b"}
	abc := &ast.Expr{Kind: ast.ExprUnwrap, Receiver: ab, Member: "c"}
	stmt := &ast.Stmt{Kind: ast.StmtExpr, Expr: abc}
	res := generate(t, []*ast.Stmt{stmt}, nil)
	code := res.Script.Chunk.Code

	var jumpIdx []int
	for i, in := range code {
		if in.Op == bytecode.OpJumpIfFalse {
			jumpIdx = append(jumpIdx, i)
		}
	}
	if len(jumpIdx) != 2 {
		t.Fatalf("expected 2 JUMP_IF_FALSE instructions, got %d", len(jumpIdx))
	}
	target0 := jumpIdx[0] + int(code[jumpIdx[0]].Arg) + 1
	target1 := jumpIdx[1] + int(code[jumpIdx[1]].Arg) + 1
	if target0 != target1 {
		t.Fatalf("both optional-chain jumps should share one coda, landed on %d and %d", target0, target1)
	}
	// The shared coda should be the POP that discards the ExprStmt's
	// leftover value, i.e. the very next instruction after the chain.
	if code[target0].Op != bytecode.OpPop {
		t.Fatalf("expected coda to land on the statement's POP, landed on %v", code[target0].Op)
	}
}

func TestGenerateForEachReservesContiguousHiddenSlots(t *testing.T) {
	stmt := &ast.Stmt{
		Kind: ast.StmtForEach, IterSlot: 0, KeySlot: 1, ValueSlot: 2,
		Iterable: &ast.Expr{Kind: ast.ExprVariable, Name: "items", Slot: ast.SlotGlobal},
		Body:     &ast.Stmt{Kind: ast.StmtBlock},
	}
	res := generate(t, []*ast.Stmt{stmt}, []string{"items"})
	code := res.Script.Chunk.Code
	var foreachIdx = -1
	for i, in := range code {
		if in.Op == bytecode.OpForeach {
			foreachIdx = i
			break
		}
	}
	if foreachIdx == -1 {
		t.Fatalf("expected a FOREACH instruction, got %v", ops(code))
	}
	if code[foreachIdx].Arg != 0 || code[foreachIdx].Arg2 != 1 {
		t.Fatalf("expected FOREACH(iterSlot=0, keySlot=1), got FOREACH(%d, %d)", code[foreachIdx].Arg, code[foreachIdx].Arg2)
	}
}

func TestGenerateBreakContinueInsideWhileLoop(t *testing.T) {
	body := &ast.Stmt{Kind: ast.StmtBlock, Stmts: []*ast.Stmt{
		{Kind: ast.StmtContinue},
		{Kind: ast.StmtBreak},
	}}
	stmt := &ast.Stmt{Kind: ast.StmtWhile, Cond: &ast.Expr{Kind: ast.ExprBool, BoolValue: true}, Body: body}
	res := generate(t, []*ast.Stmt{stmt}, nil)
	code := res.Script.Chunk.Code

	var jumps, loops int
	for _, in := range code {
		switch in.Op {
		case bytecode.OpJump:
			jumps++
		case bytecode.OpLoop:
			loops++
		}
	}
	if loops != 1 {
		t.Fatalf("expected exactly one backward LOOP edge, got %d", loops)
	}
	if jumps != 2 {
		t.Fatalf("expected continue and break to each emit one forward JUMP, got %d", jumps)
	}
}

func TestGenerateAndOrShortCircuitViaCopy(t *testing.T) {
	and := &ast.Expr{
		Kind: ast.ExprBinary, Op: token.KwAnd,
		Left:  &ast.Expr{Kind: ast.ExprBool, BoolValue: true},
		Right: &ast.Expr{Kind: ast.ExprBool, BoolValue: false},
	}
	stmt := &ast.Stmt{Kind: ast.StmtExpr, Expr: and}
	res := generate(t, []*ast.Stmt{stmt}, nil)
	code := res.Script.Chunk.Code
	want := []bytecode.OpCode{
		bytecode.OpConstant, bytecode.OpCopy, bytecode.OpJumpIfFalse,
		bytecode.OpPop, bytecode.OpConstant,
		bytecode.OpPop, bytecode.OpVoid, bytecode.OpReturn,
	}
	got := ops(code)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestGenerateObjectDeclEmitsInheritAndMethods(t *testing.T) {
	animalType := types.TypeID(1)
	dogType := types.TypeID(2)
	animal := &ast.ObjectDecl{Name: "Animal", Type: animalType}
	dog := &ast.ObjectDecl{
		Name: "Dog", Type: dogType, SuperName: "Animal",
		Methods: []*ast.FunctionNode{{Name: "speak", Kind: types.FnMethod, Body: &ast.Stmt{Kind: ast.StmtBlock}}},
	}
	stmts := []*ast.Stmt{
		{Kind: ast.StmtObjectDecl, Object: animal},
		{Kind: ast.StmtObjectDecl, Object: dog},
	}
	res := generate(t, stmts, []string{"Animal", "Dog"})
	code := res.Script.Chunk.Code

	var sawInherit, sawMethod bool
	for _, in := range code {
		if in.Op == bytecode.OpInherit {
			sawInherit = true
		}
		if in.Op == bytecode.OpMethod {
			sawMethod = true
		}
	}
	if !sawInherit {
		t.Fatalf("expected an INHERIT instruction for Dog < Animal, got %v", ops(code))
	}
	if !sawMethod {
		t.Fatalf("expected a METHOD instruction for Dog.speak, got %v", ops(code))
	}
}

func TestGenerateTestBlockLeavesLocalAndInvokesInTestMode(t *testing.T) {
	test := &ast.Stmt{
		Kind: ast.StmtTest, TestName: "adds numbers",
		Body: &ast.Stmt{Kind: ast.StmtBlock},
	}
	in := types.NewInterner()
	res := Generate(Input{
		File:     &ast.File{Stmts: []*ast.Stmt{test}},
		Interner: in,
	}, Options{TestMode: true})
	code := res.Script.Chunk.Code

	var sawCall bool
	for _, in := range code {
		if in.Op == bytecode.OpCall {
			sawCall = true
		}
	}
	if !sawCall {
		t.Fatalf("expected test mode to CALL the compiled test block, got %v", ops(code))
	}
	if code[len(code)-1].Op != bytecode.OpReturn || code[len(code)-2].Op != bytecode.OpVoid {
		t.Fatalf("expected the entry point to still end in VOID RETURN, got %v", ops(code))
	}
}

func TestGlobalNamesTableHasNoDuplicateSlots(t *testing.T) {
	decl := &ast.Stmt{
		Kind: ast.StmtVarDecl, Name: "x", Slot: ast.SlotGlobal, SlotIndex: 0,
		Init: &ast.Expr{Kind: ast.ExprInt, IntValue: 1},
	}
	res := generate(t, []*ast.Stmt{decl}, []string{"x", "y", "z"})
	if err := testkit.CheckGlobalSlotsAreDense(res.GlobalNames); err != nil {
		t.Fatalf("global slot table invariant violated: %v", err)
	}
}
