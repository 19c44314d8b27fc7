package codegen

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/token"
	"github.com/WriteNaN/buzz/internal/value"
)

// compileExpr compiles one expression that is its own postfix chain
// (a binary operand, a call argument, a list element, an assignment
// right-hand side, ...), opening a fresh optional-chaining frame so any
// `?.` short-circuit inside it resolves here rather than leaking into
// whatever chain called it (§4.3 "Optional-chaining short-circuit").
func (e *Emitter) compileExpr(expr *ast.Expr) {
	e.pushOptionalFrame()
	e.compileExprInner(expr)
	e.popAndPatchOptionalFrame()
}

// compileExprInner dispatches on Kind without opening a new
// optional-chaining frame, so that a `?.`/`.`/`!`/call/subscript chain
// shares exactly one coda no matter how many links it has.
func (e *Emitter) compileExprInner(expr *ast.Expr) {
	switch expr.Kind {
	case ast.ExprNull:
		e.emit(bytecode.OpNull, 0, expr.Span)
	case ast.ExprBool:
		e.emit(bytecode.OpConstant, e.addConstant(value.NewBool(expr.BoolValue)), expr.Span)
	case ast.ExprInt:
		e.emit(bytecode.OpConstant, e.addConstant(value.NewInt(expr.IntValue)), expr.Span)
	case ast.ExprFloat:
		e.emit(bytecode.OpConstant, e.addConstant(value.NewFloat(expr.FloatValue)), expr.Span)
	case ast.ExprStringLit:
		e.emit(bytecode.OpConstant, e.constString(expr.StringValue), expr.Span)
	case ast.ExprString:
		e.compileInterpolatedString(expr)
	case ast.ExprList:
		e.compileList(expr)
	case ast.ExprMap:
		e.compileMap(expr)
	case ast.ExprRange:
		e.compileExpr(expr.Low)
		e.compileExpr(expr.High)
		e.emit(bytecode.OpRange, 0, expr.Span)
	case ast.ExprVariable:
		e.compileVariableGet(expr)
	case ast.ExprUnary:
		e.compileUnary(expr)
	case ast.ExprBinary:
		e.compileBinary(expr)
	case ast.ExprIs:
		e.compileExpr(expr.Left)
		e.emit(bytecode.OpConstant, e.addConstant(value.NewObject(&value.Object{Kind: value.ObjTypeDef, TypeDefID: expr.IsType})), expr.Span)
		e.emit(bytecode.OpIs, 0, expr.Span)
	case ast.ExprUnwrap:
		e.compileUnwrap(expr)
	case ast.ExprForceUnwrap:
		e.compileForceUnwrap(expr)
	case ast.ExprSubscript:
		e.compileExprInner(expr.Container)
		e.compileExpr(expr.Index)
		e.emit(bytecode.OpGetSubscript, 0, expr.Span)
	case ast.ExprDot:
		e.compileExprInner(expr.Receiver)
		e.emit(bytecode.OpGetProperty, e.constString(expr.Member), expr.Span)
	case ast.ExprSuper:
		e.emit(bytecode.OpGetLocal, 0, expr.Span) // implicit `this`
		e.emit(bytecode.OpGetProperty, e.constString(expr.Member), expr.Span)
	case ast.ExprObjectInit:
		e.compileObjectInit(expr)
	case ast.ExprCall:
		e.compileCall(expr)
	case ast.ExprFunction:
		fnObj := e.compileFunctionNode(expr.Function)
		e.emitClosure(fnObj, expr.Function.Upvalues, expr.Span)
	}
}

// compileInterpolatedString lowers an `{expr}`-laced string literal
// into a chain of TO_STRING/STRING_CONCAT instructions (§4.1 "String
// interpolation").
func (e *Emitter) compileInterpolatedString(expr *ast.Expr) {
	e.emit(bytecode.OpConstant, e.constString(expr.Pieces[0]), expr.Span)
	for i, part := range expr.Parts {
		e.compileExpr(part)
		e.emit(bytecode.OpToString, 0, part.Span)
		e.emit(bytecode.OpStringConcat, 0, part.Span)
		e.emit(bytecode.OpConstant, e.constString(expr.Pieces[i+1]), expr.Span)
		e.emit(bytecode.OpStringConcat, 0, expr.Span)
	}
}

func (e *Emitter) compileList(expr *ast.Expr) {
	for _, item := range expr.Items {
		e.compileExpr(item)
	}
	e.emit(bytecode.OpList, uint32(len(expr.Items)), expr.Span)
}

func (e *Emitter) compileMap(expr *ast.Expr) {
	for i := range expr.MapKeys {
		e.compileExpr(expr.MapKeys[i])
		e.compileExpr(expr.MapValues[i])
	}
	e.emit(bytecode.OpMap, uint32(len(expr.MapKeys)), expr.Span)
}

func (e *Emitter) compileVariableGet(expr *ast.Expr) {
	switch expr.Slot {
	case ast.SlotLocal:
		e.emit(bytecode.OpGetLocal, uint32(expr.SlotIndex), expr.Span)
	case ast.SlotUpvalue:
		e.emit(bytecode.OpGetUpvalue, uint32(expr.SlotIndex), expr.Span)
	default:
		slot, _ := e.globalSlot(expr.Name)
		e.emit(bytecode.OpGetGlobal, slot, expr.Span)
	}
}

func (e *Emitter) compileUnary(expr *ast.Expr) {
	e.compileExpr(expr.Operand)
	switch expr.Op {
	case token.Bang:
		e.emit(bytecode.OpNot, 0, expr.Span)
	case token.Minus:
		e.emit(bytecode.OpNegate, 0, expr.Span)
	}
}

func (e *Emitter) compileBinary(expr *ast.Expr) {
	switch expr.Op {
	case token.Equal:
		e.compileAssign(expr)
	case token.QuestionQuestion:
		e.compileCoalesce(expr)
	case token.KwAnd:
		e.compileAnd(expr)
	case token.KwOr:
		e.compileOr(expr)
	default:
		e.compileExpr(expr.Left)
		e.compileExpr(expr.Right)
		e.emitBinaryOp(expr.Op, expr.Span)
	}
}

func (e *Emitter) emitBinaryOp(op token.Kind, span source.Span) {
	switch op {
	case token.Plus:
		e.emit(bytecode.OpAdd, 0, span)
	case token.Minus:
		e.emit(bytecode.OpSubtract, 0, span)
	case token.Star:
		e.emit(bytecode.OpMultiply, 0, span)
	case token.Slash:
		e.emit(bytecode.OpDivide, 0, span)
	case token.Percent:
		e.emit(bytecode.OpMod, 0, span)
	case token.EqualEqual:
		e.emit(bytecode.OpEqual, 0, span)
	case token.BangEqual:
		e.emit(bytecode.OpEqual, 0, span)
		e.emit(bytecode.OpNot, 0, span)
	case token.Less:
		e.emit(bytecode.OpLess, 0, span)
	case token.Greater:
		e.emit(bytecode.OpGreater, 0, span)
	case token.LessEqual:
		e.emit(bytecode.OpGreater, 0, span)
		e.emit(bytecode.OpNot, 0, span)
	case token.GreaterEqual:
		e.emit(bytecode.OpLess, 0, span)
		e.emit(bytecode.OpNot, 0, span)
	}
}

// compileAssign lowers `target = value`; every Set opcode peeks its
// value operand and writes through, so the assigned value is left on
// the stack automatically (§9 "uniform Set convention").
func (e *Emitter) compileAssign(expr *ast.Expr) {
	target := expr.Left
	switch target.Kind {
	case ast.ExprVariable:
		e.compileExpr(expr.Right)
		switch target.Slot {
		case ast.SlotLocal:
			e.emit(bytecode.OpSetLocal, uint32(target.SlotIndex), expr.Span)
		case ast.SlotUpvalue:
			e.emit(bytecode.OpSetUpvalue, uint32(target.SlotIndex), expr.Span)
		default:
			slot, _ := e.globalSlot(target.Name)
			e.emit(bytecode.OpSetGlobal, slot, expr.Span)
		}
	case ast.ExprSubscript:
		e.compileExpr(target.Container)
		e.compileExpr(target.Index)
		e.compileExpr(expr.Right)
		e.emit(bytecode.OpSetSubscript, 0, expr.Span)
	case ast.ExprDot:
		e.compileExpr(target.Receiver)
		e.compileExpr(expr.Right)
		e.emit(bytecode.OpSetProperty, e.constString(target.Member), expr.Span)
	}
}

// compileCoalesce lowers `left ?? right`: if left is non-null, its
// already-computed copy is the result and right is never evaluated
// (§4.3 "`??`").
func (e *Emitter) compileCoalesce(expr *ast.Expr) {
	e.compileExpr(expr.Left)
	e.emit(bytecode.OpCopy, 0, expr.Span)
	e.emit(bytecode.OpNull, 0, expr.Span)
	e.emit(bytecode.OpEqual, 0, expr.Span)
	keepLeft := e.emitJump(bytecode.OpJumpIfFalse, expr.Span)
	e.emit(bytecode.OpPop, 0, expr.Span) // discard the null left value
	e.compileExpr(expr.Right)
	e.patchJump(keepLeft)
}

func (e *Emitter) compileAnd(expr *ast.Expr) {
	e.compileExpr(expr.Left)
	e.emit(bytecode.OpCopy, 0, expr.Span)
	shortCircuit := e.emitJump(bytecode.OpJumpIfFalse, expr.Span)
	e.emit(bytecode.OpPop, 0, expr.Span)
	e.compileExpr(expr.Right)
	e.patchJump(shortCircuit)
}

func (e *Emitter) compileOr(expr *ast.Expr) {
	e.compileExpr(expr.Left)
	e.emit(bytecode.OpCopy, 0, expr.Span)
	e.emit(bytecode.OpNot, 0, expr.Span)
	shortCircuit := e.emitJump(bytecode.OpJumpIfFalse, expr.Span)
	e.emit(bytecode.OpPop, 0, expr.Span)
	e.compileExpr(expr.Right)
	e.patchJump(shortCircuit)
}

// compileUnwrap lowers `recv?.member`: a null receiver short-circuits
// the whole enclosing chain to Null via the deferred coda recorded on
// the current optional-chaining frame (§4.3 "Optional-chaining
// short-circuit").
func (e *Emitter) compileUnwrap(expr *ast.Expr) {
	e.compileExprInner(expr.Receiver)
	e.emit(bytecode.OpCopy, 0, expr.Span)
	e.emit(bytecode.OpNull, 0, expr.Span)
	e.emit(bytecode.OpEqual, 0, expr.Span)
	e.emit(bytecode.OpNot, 0, expr.Span)
	jump := e.emitJump(bytecode.OpJumpIfFalse, expr.Span)
	e.recordOptionalJump(jump)
	e.emit(bytecode.OpGetProperty, e.constString(expr.Member), expr.Span)
}

// compileForceUnwrap lowers `operand!`: throws if operand is null,
// otherwise yields operand unchanged (§4.3 "`!`").
func (e *Emitter) compileForceUnwrap(expr *ast.Expr) {
	e.compileExprInner(expr.Operand)
	e.emit(bytecode.OpCopy, 0, expr.Span)
	e.emit(bytecode.OpNull, 0, expr.Span)
	e.emit(bytecode.OpEqual, 0, expr.Span)
	skipThrow := e.emitJump(bytecode.OpJumpIfFalse, expr.Span)
	e.emit(bytecode.OpPop, 0, expr.Span)
	e.emit(bytecode.OpConstant, e.constString("attempt to unwrap a null value"), expr.Span)
	e.emit(bytecode.OpThrow, 0, expr.Span)
	e.patchJump(skipThrow)
}

// compileObjectInit lowers `Name{ field: value, ... }`: the instance is
// pushed once and duplicated ahead of every SET_PROPERTY so it remains
// on the stack as the expression's final result (§4.4 "ObjectInit").
func (e *Emitter) compileObjectInit(expr *ast.Expr) {
	if slot, ok := e.globalSlot(expr.ObjectName); ok {
		e.emit(bytecode.OpGetGlobal, slot, expr.Span)
	} else {
		e.emit(bytecode.OpNull, 0, expr.Span)
	}
	e.emit(bytecode.OpInstance, 0, expr.Span)
	for i, name := range expr.FieldNames {
		e.emit(bytecode.OpCopy, 0, expr.Span)
		e.compileExpr(expr.FieldValues[i])
		e.emit(bytecode.OpSetProperty, e.constString(name), expr.Span)
		e.emit(bytecode.OpPop, 0, expr.Span)
	}
}

// compileCall lowers a call expression, preferring INVOKE/SUPER_INVOKE
// over a plain GET_PROPERTY+CALL pair when the callee is a direct
// method access (§4.4 "Call"). Attached catch clauses are compiled as
// ordinary closures pushed ahead of the call instruction; the VM pops
// exactly Arg2 of them to install as handlers for the call's duration.
func (e *Emitter) compileCall(expr *ast.Expr) {
	switch {
	case expr.Callee.Kind == ast.ExprDot && len(expr.CatchClauses) == 0:
		e.compileExprInner(expr.Callee.Receiver)
		e.compileArgs(expr.Args)
		e.emit2(bytecode.OpInvoke, e.constString(expr.Callee.Member), uint32(len(expr.Args)), expr.Span)
	case expr.Callee.Kind == ast.ExprSuper && len(expr.CatchClauses) == 0:
		e.emit(bytecode.OpGetLocal, 0, expr.Span)
		e.compileArgs(expr.Args)
		e.emit2(bytecode.OpSuperInvoke, e.constString(expr.Callee.Member), uint32(len(expr.Args)), expr.Span)
	case expr.Callee.Kind == ast.ExprDot:
		// INVOKE's two inline arguments (member name, argc) leave no room
		// for a catch count, so a guarded method call falls back to the
		// plain GET_PROPERTY+CALL sequence instead of the INVOKE fast path.
		e.compileExprInner(expr.Callee.Receiver)
		e.emit(bytecode.OpGetProperty, e.constString(expr.Callee.Member), expr.Span)
		e.compileArgs(expr.Args)
		e.compileCatchClauses(expr.CatchClauses)
		e.emit2(bytecode.OpCall, uint32(len(expr.Args)), uint32(len(expr.CatchClauses)), expr.Span)
	default:
		e.compileExprInner(expr.Callee)
		e.compileArgs(expr.Args)
		e.compileCatchClauses(expr.CatchClauses)
		e.emit2(bytecode.OpCall, uint32(len(expr.Args)), uint32(len(expr.CatchClauses)), expr.Span)
	}
}

func (e *Emitter) compileArgs(args []ast.Arg) {
	for _, a := range args {
		e.compileExpr(a.Value)
	}
}

func (e *Emitter) compileCatchClauses(clauses []ast.CatchClause) {
	for _, c := range clauses {
		fnObj := e.compileFunctionNode(c.Function)
		e.emitClosure(fnObj, c.Function.Upvalues, c.Span)
	}
}
