// Package codegen lowers a typed AST (as produced by internal/parser)
// into bytecode (§4.3): one value.FunctionObj per Buzz function, plus the
// top-level script body, sharing a flat globals slot space assigned by
// the parser.
package codegen

import (
	"fmt"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// Options configures a compilation run.
type Options struct {
	Reporter diag.Reporter
	// TestMode synthesizes a script body that invokes every top-level
	// `$test`-prefixed function instead of running `main` (§4.3 "Return").
	TestMode bool
}

// Input is everything the parser produced for one file that the code
// generator needs beyond the AST itself.
type Input struct {
	File        *ast.File
	Interner    *types.Interner
	GlobalNames []string // slot -> name, per parser.GlobalNames
}

// Result is the compiled output of one file: the script's own top-level
// code as a callable Function, plus the slot->name table the driver uses
// to seed native globals before running it (§4.6).
type Result struct {
	Script      *value.FunctionObj
	GlobalNames []string

	e *Emitter // retained so CompileExpr can share this file's class/global tables
}

// CompileExpr compiles a standalone expression — an argument default or
// object-field default fragment — into a zero-arg Function that
// evaluates it and returns the result. The VM calls the returned
// Function fresh on every default-initialization so two calls sharing a
// mutable default (list, map) never alias the same object (§4.2
// "Default values", §8 invariant). Sharing this Result's Emitter keeps
// any class/global reference inside the fragment resolving against the
// same tables the rest of the file compiled against.
func (r *Result) CompileExpr(expr *ast.Expr) *value.FunctionObj {
	stmt := &ast.Stmt{Kind: ast.StmtReturn, Value: expr}
	return r.e.compileFunctionBody("", nil, types.FnFunction, nil, []*ast.Stmt{stmt})
}

// loopCtx tracks one active loop's break/continue patch lists. Both are
// deferred forward jumps rather than a precomputed target address,
// since do-until's continue point (right before its re-tested
// condition) isn't known until after its body compiles (§4.3 "Jump
// patching").
type loopCtx struct {
	breaks          []int
	continuePatches []int
}

// funcState is the per-function compilation frame: its chunk under
// construction, its own loop stack, and the deferred optional-chaining
// jump list stack scoped to the statement currently being compiled
// (§4.3 "Optional-chaining short-circuit").
type funcState struct {
	enclosing *funcState
	fn        *value.FunctionObj
	locals    int // number of frame slots already occupied (params + "this")
	loops     []*loopCtx
	optional  [][]int
}

// Emitter walks a typed AST and emits bytecode into nested funcStates,
// one per Buzz function/method/closure/catch-clause being compiled.
type Emitter struct {
	in      *types.Interner
	opts    Options
	errs    int
	cur     *funcState
	strings map[string]*value.Object // interned constant string objects, keyed by content

	classByType map[types.TypeID]*value.ClassObj
	enumByType  map[types.TypeID]*value.EnumObj
	globalSlots map[string]int

	// testLocals holds the top-level local slot of every compiled `test
	// "..."` block's closure, in declaration order — test blocks have no
	// name a global could be looked up by, so appendTestEntry addresses
	// them positionally instead (§4.3, final paragraph).
	testLocals []int
}

func (e *Emitter) globalSlot(name string) (uint32, bool) {
	slot, ok := e.globalSlots[name]
	return uint32(slot), ok
}

// Generate compiles in into a Result. Check the returned Emitter-internal
// error count via the Reporter's Bag (mirroring the parser's Failed()
// convention) before handing Result.Script to the VM.
func Generate(in Input, opts Options) *Result {
	e := &Emitter{
		in:          in.Interner,
		opts:        opts,
		strings:     make(map[string]*value.Object),
		classByType: make(map[types.TypeID]*value.ClassObj),
		enumByType:  make(map[types.TypeID]*value.EnumObj),
		globalSlots: make(map[string]int, len(in.GlobalNames)),
	}
	for slot, name := range in.GlobalNames {
		e.globalSlots[name] = slot
	}
	e.registerTypeShells(in.File)

	kind := types.FnScript
	if opts.TestMode {
		kind = types.FnScriptEntryPoint
	}
	script := e.compileFunctionBody("", nil, kind, nil, in.File.Stmts)
	if opts.TestMode {
		e.appendTestEntry(script, in.File.Stmts)
	}
	return &Result{Script: script, GlobalNames: in.GlobalNames, e: e}
}

func (e *Emitter) errorf(span source.Span, code diag.Code, format string, args ...any) {
	e.errs++
	if e.opts.Reporter == nil {
		return
	}
	e.opts.Reporter.Report(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

// Failed reports whether any code-generation error was reported.
func (e *Emitter) Failed() bool { return e.errs > 0 }

// ---- chunk / constant pool ----------------------------------------------

func (e *Emitter) emptyStringObject() *value.Object {
	return e.internString("")
}

func (e *Emitter) internString(s string) *value.Object {
	if o, ok := e.strings[s]; ok {
		return o
	}
	o := &value.Object{Kind: value.ObjString, Str: &value.StringObj{Chars: s}}
	e.strings[s] = o
	return o
}

// addConstant appends v to the current function's constant pool and
// returns its index, reusing the string interning table for ObjString
// values so repeated literals share one Object (§8 "identical byte
// content... reference the same object").
func (e *Emitter) addConstant(v value.Value) uint32 {
	c := e.cur.fn.Chunk
	if v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjString {
		v = value.NewObject(e.internString(v.Obj.Str.Chars))
	}
	if len(c.Constants) >= bytecode.MaxInlineArg {
		e.errorf(source.Span{}, diag.GenTooManyConsts, "too many constants in one chunk")
		return 0
	}
	c.Constants = append(c.Constants, v)
	idx, err := bytecode.SafeArg(len(c.Constants) - 1)
	if err != nil {
		e.errorf(source.Span{}, diag.GenTooManyConsts, "constant pool index overflowed: %v", err)
		return 0
	}
	return idx
}

func (e *Emitter) constString(s string) uint32 {
	return e.addConstant(value.NewObject(e.internString(s)))
}

// ---- instruction emission -------------------------------------------------

func (e *Emitter) emit(op bytecode.OpCode, arg uint32, span source.Span) int {
	c := e.cur.fn.Chunk
	c.Code = append(c.Code, bytecode.Instruction{Op: op, Arg: arg, Line: lineOf(span)})
	return len(c.Code) - 1
}

func (e *Emitter) emit2(op bytecode.OpCode, arg, arg2 uint32, span source.Span) int {
	c := e.cur.fn.Chunk
	c.Code = append(c.Code, bytecode.Instruction{Op: op, Arg: arg, Arg2: arg2, Line: lineOf(span)})
	return len(c.Code) - 1
}

func lineOf(span source.Span) int {
	// Byte offsets are resolved to line numbers by internal/diagfmt
	// against the FileSet; codegen itself only threads the offset
	// through so stack traces can look it up later (§7 "formatted stack
	// trace").
	return int(span.Start)
}

// emitJump emits a placeholder forward jump and returns its instruction
// index for later patching by patchJump (§4.3 "Jump patching").
func (e *Emitter) emitJump(op bytecode.OpCode, span source.Span) int {
	return e.emit(op, bytecode.MaxInlineArg, span)
}

// patchJump backfills the jump at idx to land on the next instruction to
// be emitted.
func (e *Emitter) patchJump(idx int) {
	c := e.cur.fn.Chunk
	target := len(c.Code)
	offset := target - idx - 1
	if offset < 0 || uint32(offset) > bytecode.MaxInlineArg {
		e.errorf(source.Span{}, diag.GenJumpTooFar, "jump target is too far to encode")
		return
	}
	c.Code[idx].Arg = uint32(offset)
}

// emitLoop emits a backward jump to loopStart, whose offset is already
// known (§4.3 "Loops emit a backward jump with a known offset").
func (e *Emitter) emitLoop(loopStart int, span source.Span) {
	c := e.cur.fn.Chunk
	offset := len(c.Code) - loopStart + 1
	e.emit(bytecode.OpLoop, uint32(offset), span)
}

func (e *Emitter) here() int { return len(e.cur.fn.Chunk.Code) }

// ---- optional-chaining deferred jump lists ---------------------------

func (e *Emitter) pushOptionalFrame() { e.cur.optional = append(e.cur.optional, nil) }

// popAndPatchOptionalFrame patches every `?.` short-circuit jump recorded
// since the matching pushOptionalFrame to land here — the "common pop
// and substitute null coda" at the end of the enclosing (statement-level)
// expression (§4.3 "Optional-chaining short-circuit").
func (e *Emitter) popAndPatchOptionalFrame() {
	n := len(e.cur.optional) - 1
	pending := e.cur.optional[n]
	e.cur.optional = e.cur.optional[:n]
	for _, idx := range pending {
		e.patchJump(idx)
	}
}

func (e *Emitter) recordOptionalJump(idx int) {
	n := len(e.cur.optional) - 1
	e.cur.optional[n] = append(e.cur.optional[n], idx)
}
