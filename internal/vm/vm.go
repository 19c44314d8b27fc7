// Package vm implements Buzz's stack virtual machine: call frames, the
// garbage collector, exception unwinding, and the dispatch loop that
// interprets one Chunk of bytecode at a time (§4.4, §4.5).
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/codegen"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// Options configures one VM run.
type Options struct {
	Trace  bool // print each dispatched instruction to Stderr
	Stdout io.Writer
	Stderr io.Writer
	// CycleLimit, when non-zero, terminates the current dispatch with a
	// VM error once that many instructions have executed (§5
	// "Cancellation" — the embedder's cycle-limit escape hatch).
	CycleLimit int
}

// VM is a single-threaded stack machine. A VM instance must be driven
// from one goroutine at a time; distinct instances share nothing
// (§5 "Shared mutable state").
type VM struct {
	opts Options

	in      *types.Interner
	compile *codegen.Result // retained so default-argument/-field fragments compile on demand

	Stack  []value.Value
	Frames []CallFrame

	Globals     []value.Value
	globalNames []string

	openUpvalues *value.UpvalueObj // intrusive list, sorted by StackIndex ascending

	heap    *Heap
	strings map[string]*value.Object // runtime string intern table, content -> canonical Object

	defaultFns map[*ast.Expr]*value.FunctionObj // memoized default-value thunks

	// iterPos tracks each active FOREACH's position, keyed by its
	// IterSlot's absolute stack index (stable for the loop's lifetime);
	// see opForeach in ops_foreach.go.
	iterPos map[int]int

	// pendingThrow is set by Throw during a native call, and consumed by
	// callNative right after the call returns (§4.6 "Native functions
	// surface failures by throwing").
	pendingThrow *value.Value

	cycles int
}

// New constructs a VM ready to run compiled's script. natives maps a
// global name to its NativeObj value; any name present in both natives
// and compiled.GlobalNames is seeded into that global slot before
// execution starts (§4.6 "Native ABI").
func New(compiled *codegen.Result, in *types.Interner, natives map[string]*value.NativeObj, opts Options) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	vm := &VM{
		opts:        opts,
		in:          in,
		compile:     compiled,
		Globals:     make([]value.Value, len(compiled.GlobalNames)),
		globalNames: compiled.GlobalNames,
		heap:        NewHeap(),
		strings:     make(map[string]*value.Object),
		defaultFns:  make(map[*ast.Expr]*value.FunctionObj),
		iterPos:     make(map[int]int),
	}
	for slot, name := range compiled.GlobalNames {
		if n, ok := natives[name]; ok {
			vm.Globals[slot] = value.NewObject(vm.track(&value.Object{Kind: value.ObjNative, Native: n}))
		}
	}
	return vm
}

// Run executes the compiled script to completion (or to the first
// unhandled throw/fatal error).
func (vm *VM) Run() *RuntimeError {
	closure := &value.ClosureObj{Function: vm.compile.Script}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjClosure, Closure: closure})))
	if err := vm.call(closure, 0, nil); err != nil {
		return err
	}
	return vm.dispatch()
}

// RunTests behaves like Run but the compiled script must have been
// generated with codegen.Options.TestMode set, so its synthesized entry
// point invokes every `test "..."` block in turn.
func (vm *VM) RunTests() *RuntimeError {
	return vm.Run()
}

func (vm *VM) push(v value.Value) {
	vm.Stack = append(vm.Stack, v)
}

func (vm *VM) pop() value.Value {
	n := len(vm.Stack) - 1
	v := vm.Stack[n]
	vm.Stack = vm.Stack[:n]
	return v
}

func (vm *VM) popN(n int) {
	vm.Stack = vm.Stack[:len(vm.Stack)-n]
}

func (vm *VM) peek(n int) value.Value {
	return vm.Stack[len(vm.Stack)-1-n]
}

func (vm *VM) frame() *CallFrame {
	return &vm.Frames[len(vm.Frames)-1]
}

// ---- native.NativeContext -------------------------------------------

// Peek implements value.NativeContext.
func (vm *VM) Peek(n int) value.Value { return vm.peek(n) }

// Push implements value.NativeContext.
func (vm *VM) Push(v value.Value) { vm.push(v) }

// Throw implements value.NativeContext.
func (vm *VM) Throw(v value.Value) { vm.pendingThrow = &v }

// ---- allocation -------------------------------------------------------

func (vm *VM) track(o *value.Object) *value.Object {
	if vm.heap.shouldCollect() {
		vm.collect()
	}
	return vm.heap.track(o)
}

// internString returns the canonical Object for s, allocating one the
// first time s is seen so every later occurrence of identical content
// shares it (§3 invariant "Strings are interned").
func (vm *VM) internString(s string) *value.Object {
	if o, ok := vm.strings[s]; ok {
		return o
	}
	o := vm.track(&value.Object{Kind: value.ObjString, Str: &value.StringObj{Chars: s}})
	vm.strings[s] = o
	return o
}

// internValue canonicalizes v if it is a string object, reusing the
// constant pool's Object when its content already matches one (the
// compile-time and runtime intern tables converge on first contact).
func (vm *VM) internValue(v value.Value) value.Value {
	if v.Kind != value.KObject || v.Obj == nil || v.Obj.Kind != value.ObjString {
		return v
	}
	if o, ok := vm.strings[v.Obj.Str.Chars]; ok {
		return value.NewObject(o)
	}
	vm.strings[v.Obj.Str.Chars] = v.Obj
	return v
}

func (vm *VM) newString(s string) value.Value {
	return value.NewObject(vm.internString(s))
}

func (vm *VM) runtimeErrorf(code diag.Code, format string, args ...any) *RuntimeError {
	return vm.newRuntimeError(code, fmt.Sprintf(format, args...))
}
