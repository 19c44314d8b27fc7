package codegen

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// nullSpan marks bytecode synthesized by codegen itself (implicit
// returns, the test-mode entry point) with no single source location.
var nullSpan = source.Span{}

// registerTypeShells is codegen's first pass over the file (§9 "two-pass
// object/enum codegen"): it pre-builds a ClassObj/EnumObj for every
// declaration before any bytecode is emitted, so a Super link can be
// resolved against an already-existing shell even when the parent is
// declared later in the file than the child.
func (e *Emitter) registerTypeShells(f *ast.File) {
	for _, s := range f.Stmts {
		if s.Kind == ast.StmtObjectDecl {
			e.shellObject(s.Object)
		}
		if s.Kind == ast.StmtEnumDecl {
			e.shellEnum(s.Enum)
		}
	}
	for _, s := range f.Stmts {
		if s.Kind == ast.StmtObjectDecl {
			e.linkSuper(s.Object)
		}
	}
}

func (e *Emitter) shellObject(decl *ast.ObjectDecl) *value.ClassObj {
	if c, ok := e.classByType[decl.Type]; ok {
		return c
	}
	c := &value.ClassObj{
		Name:         decl.Name,
		Methods:      make(map[string]*value.ClosureObj),
		FieldTypes:   make(map[string]value.FieldSpec),
		StaticFields: make(map[string]value.Value),
		Type:         decl.Type,
	}
	for _, f := range decl.Fields {
		c.FieldOrder = append(c.FieldOrder, f.Name)
		c.FieldTypes[f.Name] = value.FieldSpec{Type: f.Type, Default: f.Default, Static: f.Static}
	}
	e.classByType[decl.Type] = c
	return c
}

func (e *Emitter) linkSuper(decl *ast.ObjectDecl) {
	if decl.SuperName == "" {
		return
	}
	c := e.classByType[decl.Type]
	t, ok := e.in.Lookup(decl.Type)
	if !ok || t.Object == nil || t.Object.Super == nil {
		return
	}
	for _, super := range e.classByType {
		if super.Name == t.Object.Super.Name {
			c.Super = super
			return
		}
	}
}

func (e *Emitter) shellEnum(decl *ast.EnumDecl) *value.EnumObj {
	if en, ok := e.enumByType[decl.Type]; ok {
		return en
	}
	en := &value.EnumObj{Name: decl.Name, Underlying: decl.Underlying, Type: decl.Type}
	for i, c := range decl.Cases {
		en.Cases = append(en.Cases, value.EnumCaseValue{Name: c.Name, Value: e.foldEnumCaseValue(c, i)})
	}
	e.enumByType[decl.Type] = en
	return en
}

// foldEnumCaseValue materializes a case's runtime value at compile time.
// Only literal int/string initializers are folded; anything else falls
// back to the case's positional index as an Integer, since
// types.EnumCase itself carries no evaluated value to consult.
func (e *Emitter) foldEnumCaseValue(c ast.EnumCaseDecl, index int) value.Value {
	if c.Value != nil {
		switch c.Value.Kind {
		case ast.ExprInt:
			return value.NewInt(c.Value.IntValue)
		case ast.ExprStringLit:
			return value.NewObject(e.internString(c.Value.StringValue))
		}
	}
	return value.NewInt(int32(index))
}

// compileFunctionBody compiles one function/script body into a fresh
// value.FunctionObj, pushing a new funcState for the duration.
func (e *Emitter) compileFunctionBody(name string, params []ast.ParamDecl, kind types.FunctionKind, upvalues []ast.UpvalueCapture, stmts []*ast.Stmt) *value.FunctionObj {
	fn := &value.FunctionObj{
		Name:         name,
		Chunk:        value.NewChunk(e.emptyStringObject()),
		Arity:        len(params),
		UpvalueCount: len(upvalues),
		Kind:         kind,
	}
	for _, p := range params {
		fn.ParamNames = append(fn.ParamNames, p.Name)
		fn.ParamTypes = append(fn.ParamTypes, p.Type)
		fn.Defaults = append(fn.Defaults, p.Default)
	}
	e.cur = &funcState{enclosing: e.cur, fn: fn}
	if kind == types.FnMethod {
		e.cur.locals++ // implicit `this`, declared before params (§4.2 "parseMethodTail")
	}
	e.cur.locals += len(params)

	for _, s := range stmts {
		e.compileStmt(s)
	}
	e.emitImplicitReturn()

	done := e.cur
	e.cur = done.enclosing
	return fn
}

func (e *Emitter) compileFunctionNode(fn *ast.FunctionNode) *value.FunctionObj {
	return e.compileFunctionBody(fn.Name, fn.Params, fn.Kind, fn.Upvalues, blockStmts(fn.Body))
}

func blockStmts(body *ast.Stmt) []*ast.Stmt {
	if body == nil {
		return nil
	}
	return body.Stmts
}

// emitImplicitReturn appends the `VOID; RETURN` a function falling off
// its own end performs (§4.3 "Return").
func (e *Emitter) emitImplicitReturn() {
	last := e.cur.fn.Chunk.Code
	if len(last) > 0 && last[len(last)-1].Op == bytecode.OpReturn {
		return
	}
	e.emit(bytecode.OpVoid, 0, nullSpan)
	e.emit(bytecode.OpReturn, 0, nullSpan)
}

// appendTestEntry extends the already-compiled script body — whose
// declarations (functions, objects, test blocks) must still run first —
// with a call to every top-level hidden `$test`-prefixed function and
// `test "..."` block, replacing its trailing implicit return (§4.3,
// final paragraph).
func (e *Emitter) appendTestEntry(script *value.FunctionObj, stmts []*ast.Stmt) {
	code := script.Chunk.Code
	if n := len(code); n >= 2 && code[n-1].Op == bytecode.OpReturn {
		script.Chunk.Code = code[:n-2]
	}
	e.cur = &funcState{fn: script}
	for _, s := range stmts {
		if s.Kind == ast.StmtFunDecl && s.Function.Hidden {
			slot, ok := e.globalSlot(s.Function.Name)
			if !ok {
				continue
			}
			e.emit(bytecode.OpGetGlobal, slot, nullSpan)
			e.emit2(bytecode.OpCall, 0, 0, nullSpan)
			e.emit(bytecode.OpPop, 0, nullSpan)
		}
	}
	for _, slot := range e.testLocals {
		e.emit(bytecode.OpGetLocal, uint32(slot), nullSpan)
		e.emit2(bytecode.OpCall, 0, 0, nullSpan)
		e.emit(bytecode.OpPop, 0, nullSpan)
	}
	e.emit(bytecode.OpVoid, 0, nullSpan)
	e.emit(bytecode.OpReturn, 0, nullSpan)
	e.cur = nil
}
