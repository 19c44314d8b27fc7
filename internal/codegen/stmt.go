package codegen

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

func (e *Emitter) compileStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.StmtExpr:
		e.compileExpr(s.Expr)
		e.emit(bytecode.OpPop, 0, s.Span)
	case ast.StmtVarDecl:
		e.compileVarDecl(s)
	case ast.StmtFunDecl:
		e.compileFunDecl(s)
	case ast.StmtObjectDecl:
		e.compileObjectDecl(s.Object)
	case ast.StmtEnumDecl:
		e.compileEnumDecl(s.Enum)
	case ast.StmtImport:
		e.compileImport(s)
	case ast.StmtExport:
		// Export names are resolved by the driver against GlobalNames;
		// nothing to emit here.
	case ast.StmtBlock:
		e.compileBlock(s)
	case ast.StmtIf:
		e.compileIf(s)
	case ast.StmtFor:
		e.compileFor(s)
	case ast.StmtForEach:
		e.compileForEach(s)
	case ast.StmtWhile:
		e.compileWhile(s)
	case ast.StmtDoUntil:
		e.compileDoUntil(s)
	case ast.StmtReturn:
		e.compileReturn(s)
	case ast.StmtBreak:
		e.compileBreak(s)
	case ast.StmtContinue:
		e.compileContinue(s)
	case ast.StmtThrow:
		e.compileThrow(s)
	case ast.StmtTest:
		e.compileTest(s)
	}
}

// closeLocalsTo pops/closes every local above mark, in reverse
// declaration order, when a scope exits (§4.5 write-barrier discussion
// aside, this is the ordinary "close on scope exit" path).
func (e *Emitter) closeLocalsTo(mark int, span source.Span) {
	for e.cur.locals > mark {
		e.emit(bytecode.OpCloseUpvalue, 0, span)
		e.cur.locals--
	}
}

func (e *Emitter) compileBlock(s *ast.Stmt) {
	mark := e.cur.locals
	for _, inner := range s.Stmts {
		e.compileStmt(inner)
	}
	e.closeLocalsTo(mark, s.Span)
}

func (e *Emitter) compileVarDecl(s *ast.Stmt) {
	if s.Init != nil {
		e.compileExpr(s.Init)
	} else {
		e.emitZeroValue(s.DeclType, s.Span)
	}
	e.cur.locals++
	if s.Slot == ast.SlotGlobal {
		e.emit(bytecode.OpDefineGlobal, uint32(s.SlotIndex), s.Span)
		e.cur.locals-- // a global declaration leaves nothing on the local stack
	}
}

// emitZeroValue pushes the default value for a declaration with no
// initializer (§4.2 "declarations" — a type-only form is permitted by
// the grammar).
func (e *Emitter) emitZeroValue(t types.TypeID, span source.Span) {
	typ, ok := e.in.Lookup(t)
	if !ok || typ.Optional {
		e.emit(bytecode.OpNull, 0, span)
		return
	}
	b := e.in.Builtins()
	switch {
	case t == b.Bool:
		e.emit(bytecode.OpConstant, e.addConstant(value.NewBool(false)), span)
	case t == b.Integer:
		e.emit(bytecode.OpConstant, e.addConstant(value.NewInt(0)), span)
	case t == b.Float:
		e.emit(bytecode.OpConstant, e.addConstant(value.NewFloat(0)), span)
	case t == b.String:
		e.emit(bytecode.OpConstant, e.constString(""), span)
	case typ.Kind == types.KindList:
		e.emit(bytecode.OpList, 0, span)
	case typ.Kind == types.KindMap:
		e.emit(bytecode.OpMap, 0, span)
	default:
		e.emit(bytecode.OpNull, 0, span)
	}
}

func (e *Emitter) compileFunDecl(s *ast.Stmt) {
	fnObj := e.compileFunctionNode(s.Function)
	e.emitClosure(fnObj, s.Function.Upvalues, s.Span)
	if slot, ok := e.globalSlot(s.Function.Name); ok {
		e.emit(bytecode.OpDefineGlobal, slot, s.Span)
	} else {
		e.emit(bytecode.OpPop, 0, s.Span)
	}
}

// emitClosure pushes fnObj as a constant and emits CLOSURE followed by
// one (is_local, slot) pair per captured upvalue (§4.3 "Closures").
func (e *Emitter) emitClosure(fnObj *value.FunctionObj, upvalues []ast.UpvalueCapture, span source.Span) {
	idx := e.addConstant(value.NewObject(&value.Object{Kind: value.ObjFunction, Func: fnObj}))
	instrIdx := e.emit(bytecode.OpClosure, idx, span)
	refs := make([]bytecode.UpvalueRef, len(upvalues))
	for i, uv := range upvalues {
		refs[i] = bytecode.UpvalueRef{IsLocal: uv.IsLocal, Index: uint32(uv.Index)}
	}
	c := e.cur.fn.Chunk
	for len(c.UpvalueRefs) <= instrIdx {
		c.UpvalueRefs = append(c.UpvalueRefs, nil)
	}
	c.UpvalueRefs[instrIdx] = refs
}

func (e *Emitter) compileImport(s *ast.Stmt) {
	e.emit(bytecode.OpImport, e.constString(s.Import.Path), s.Span)
}

// compileObjectDecl pre-built its ClassObj shell in registerTypeShells;
// this pass attaches methods/statics and emits the bytecode that
// constructs and binds the class at runtime.
func (e *Emitter) compileObjectDecl(decl *ast.ObjectDecl) {
	class := e.classByType[decl.Type]
	classConst := e.addConstant(value.NewObject(&value.Object{Kind: value.ObjClass, Class: class}))
	e.emit(bytecode.OpObject, classConst, decl.Span)

	if decl.SuperName != "" {
		if slot, ok := e.globalSlot(decl.SuperName); ok {
			e.emit(bytecode.OpGetGlobal, slot, decl.Span)
			e.emit(bytecode.OpInherit, 0, decl.Span)
		}
	}

	for _, m := range decl.Methods {
		fnObj := e.compileFunctionNode(m)
		class.Methods[m.Name] = &value.ClosureObj{Function: fnObj}
		e.emitClosure(fnObj, m.Upvalues, m.Body.Span)
		e.emit(bytecode.OpMethod, e.constString(m.Name), m.Body.Span)
	}
	for _, f := range decl.Fields {
		if !f.Static || f.Default == nil {
			continue
		}
		e.compileExpr(f.Default)
		e.emit(bytecode.OpProperty, e.constString(f.Name), f.Span)
	}

	if slot, ok := e.globalSlot(decl.Name); ok {
		e.emit(bytecode.OpDefineGlobal, slot, decl.Span)
	} else {
		e.emit(bytecode.OpPop, 0, decl.Span)
	}
}

func (e *Emitter) compileEnumDecl(decl *ast.EnumDecl) {
	en := e.enumByType[decl.Type]
	enumConst := e.addConstant(value.NewObject(&value.Object{Kind: value.ObjEnum, Enum: en}))
	e.emit(bytecode.OpEnum, enumConst, decl.Span)

	for i, c := range decl.Cases {
		e.emit(bytecode.OpConstant, e.addConstant(en.Cases[i].Value), c.Span)
		e.emit(bytecode.OpEnumCase, e.constString(c.Name), c.Span)
	}

	if slot, ok := e.globalSlot(decl.Name); ok {
		e.emit(bytecode.OpDefineGlobal, slot, decl.Span)
	} else {
		e.emit(bytecode.OpPop, 0, decl.Span)
	}
}

func (e *Emitter) compileIf(s *ast.Stmt) {
	e.compileExpr(s.Cond)
	elseJump := e.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span)
	e.compileStmt(s.Then)
	if s.Else != nil {
		endJump := e.emitJump(bytecode.OpJump, s.Then.Span)
		e.patchJump(elseJump)
		e.compileStmt(s.Else)
		e.patchJump(endJump)
		return
	}
	e.patchJump(elseJump)
}

func (e *Emitter) pushLoop() *loopCtx {
	lc := &loopCtx{}
	e.cur.loops = append(e.cur.loops, lc)
	return lc
}

func (e *Emitter) popLoop(span source.Span) {
	n := len(e.cur.loops) - 1
	lc := e.cur.loops[n]
	e.cur.loops = e.cur.loops[:n]
	for _, idx := range lc.breaks {
		e.patchJump(idx)
	}
}

// patchContinues patches every pending `continue` jump in the current
// loop to land here — the point right before the loop re-tests its
// condition or advances its iterator, shared by all four loop forms.
func (e *Emitter) patchContinues() {
	lc := e.cur.loops[len(e.cur.loops)-1]
	for _, idx := range lc.continuePatches {
		e.patchJump(idx)
	}
	lc.continuePatches = nil
}

func (e *Emitter) compileWhile(s *ast.Stmt) {
	loopStart := e.here()
	e.pushLoop()
	e.compileExpr(s.Cond)
	exitJump := e.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span)
	e.compileStmt(s.Body)
	e.patchContinues()
	e.emitLoop(loopStart, s.Span)
	e.patchJump(exitJump)
	e.popLoop(s.Span)
}

func (e *Emitter) compileDoUntil(s *ast.Stmt) {
	loopStart := e.here()
	e.pushLoop()
	e.compileStmt(s.Body)
	e.patchContinues()
	e.compileExpr(s.Cond)
	// NOT turns cond into "keep running", so JumpIfFalse skips the
	// backward jump once cond holds.
	e.emit(bytecode.OpNot, 0, s.Cond.Span)
	exitJump := e.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span)
	e.emitLoop(loopStart, s.Span)
	e.patchJump(exitJump)
	e.popLoop(s.Span)
}

func (e *Emitter) compileFor(s *ast.Stmt) {
	mark := e.cur.locals
	if s.ForInit != nil {
		e.compileStmt(s.ForInit)
	}
	loopStart := e.here()
	exitJump := -1
	if s.Cond != nil {
		e.compileExpr(s.Cond)
		exitJump = e.emitJump(bytecode.OpJumpIfFalse, s.Cond.Span)
	}

	e.pushLoop()
	bodyJump := -1
	incrementStart := loopStart
	if s.ForPost != nil {
		bodyJump = e.emitJump(bytecode.OpJump, s.Span)
		incrementStart = e.here()
		e.compileStmt(s.ForPost)
		e.emitLoop(loopStart, s.Span)
		e.patchJump(bodyJump)
	}
	e.compileStmt(s.Body)
	e.patchContinues()
	e.emitLoop(incrementStart, s.Span)
	if exitJump >= 0 {
		e.patchJump(exitJump)
	}
	e.popLoop(s.Span)
	e.closeLocalsTo(mark, s.Span)
}

// compileForEach lowers FOREACH to a manual advance-and-test loop: the
// iterable occupies the hidden IterSlot local reserved by the parser,
// and each pass writes the next (key, value) pair into KeySlot/
// KeySlot+1, signaling exhaustion by leaving KeySlot as Null (§4.4
// "Foreach").
func (e *Emitter) compileForEach(s *ast.Stmt) {
	mark := e.cur.locals
	e.compileExpr(s.Iterable)
	e.cur.locals++ // IterSlot
	e.emit(bytecode.OpNull, 0, s.Span)
	e.cur.locals++ // KeySlot
	e.emit(bytecode.OpNull, 0, s.Span)
	e.cur.locals++ // ValueSlot

	loopStart := e.here()
	e.pushLoop()
	e.emit2(bytecode.OpForeach, uint32(s.IterSlot), uint32(s.KeySlot), s.Span)
	e.emit(bytecode.OpGetLocal, uint32(s.KeySlot), s.Span)
	e.emit(bytecode.OpNull, 0, s.Span)
	e.emit(bytecode.OpEqual, 0, s.Span)
	e.emit(bytecode.OpNot, 0, s.Span)
	exitJump := e.emitJump(bytecode.OpJumpIfFalse, s.Span)

	e.compileStmt(s.Body)
	e.patchContinues()
	e.emitLoop(loopStart, s.Span)
	e.patchJump(exitJump)
	e.popLoop(s.Span)
	e.closeLocalsTo(mark, s.Span)
}

func (e *Emitter) compileReturn(s *ast.Stmt) {
	if s.Value != nil {
		e.compileExpr(s.Value)
	} else {
		e.emit(bytecode.OpVoid, 0, s.Span)
	}
	e.emit(bytecode.OpReturn, 0, s.Span)
}

func (e *Emitter) compileBreak(s *ast.Stmt) {
	if len(e.cur.loops) == 0 {
		e.errorf(s.Span, diag.GenJumpTooFar, "'break' used outside a loop")
		return
	}
	lc := e.cur.loops[len(e.cur.loops)-1]
	idx := e.emitJump(bytecode.OpJump, s.Span)
	lc.breaks = append(lc.breaks, idx)
}

func (e *Emitter) compileContinue(s *ast.Stmt) {
	if len(e.cur.loops) == 0 {
		e.errorf(s.Span, diag.GenJumpTooFar, "'continue' used outside a loop")
		return
	}
	lc := e.cur.loops[len(e.cur.loops)-1]
	idx := e.emitJump(bytecode.OpJump, s.Span)
	lc.continuePatches = append(lc.continuePatches, idx)
}

func (e *Emitter) compileThrow(s *ast.Stmt) {
	e.compileExpr(s.Value)
	e.emit(bytecode.OpThrow, 0, s.Span)
}

// compileTest lowers a `test "name" { ... }` block into an ordinary
// zero-arg function, left resident in a top-level local slot recorded
// on e.testLocals so appendTestEntry can call it in test mode; the
// block has no name a global declaration could bind.
func (e *Emitter) compileTest(s *ast.Stmt) {
	fn := &ast.FunctionNode{Name: s.TestName, Kind: types.FnTest, Body: s.Body}
	fnObj := e.compileFunctionNode(fn)
	e.emitClosure(fnObj, nil, s.Span)
	e.testLocals = append(e.testLocals, e.cur.locals)
	e.cur.locals++
}
