package vm

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// call opens a new frame for closure over argCount already-pushed
// arguments (receiver, if any, included in the same contiguous run) and
// installs catches as the frame's exception guards (§4.4 "Calls").
func (vm *VM) call(closure *value.ClosureObj, argCount int, catches []*value.ClosureObj) *RuntimeError {
	fn := closure.Function
	if argCount < fn.Arity {
		if err := vm.fillDefaults(fn, argCount); err != nil {
			return err
		}
		argCount = fn.Arity
	}
	if argCount > fn.Arity {
		return vm.runtimeErrorf(diag.TypeArityMismatch, "%s expects %d argument(s), got %d", fn.Name, fn.Arity, argCount)
	}
	if len(vm.Frames) >= MaxFrames {
		return vm.runtimeErrorf(diag.RuntimeStackOverflow, "stack overflow")
	}
	base := len(vm.Stack) - argCount - 1
	if fn.Kind != types.FnMethod {
		// Only a method owns slot 0 (its receiver); any other function's
		// parameters start at slot 0, so the callee is dropped and its
		// position becomes slot 0 and, on return, the result slot.
		copy(vm.Stack[base:], vm.Stack[base+1:])
		vm.Stack = vm.Stack[:len(vm.Stack)-1]
	}
	vm.Frames = append(vm.Frames, CallFrame{
		Closure:  closure,
		SlotBase: base,
		Catches:  catches,
	})
	return nil
}

// fillDefaults freshly evaluates and pushes the default fragment for
// every parameter beyond argCount, so two calls omitting a mutable
// defaulted argument never receive the same object (§4.2 "Default
// values", §8 invariant).
func (vm *VM) fillDefaults(fn *value.FunctionObj, argCount int) *RuntimeError {
	for i := argCount; i < fn.Arity; i++ {
		expr := fn.Defaults[i]
		if expr == nil {
			vm.push(value.Null)
			continue
		}
		v, err := vm.evalDefault(expr)
		if err != nil {
			return err
		}
		vm.push(v)
	}
	return nil
}

// evalDefault compiles expr into a memoized zero-arg thunk (once per
// distinct AST fragment) and runs it to completion, returning its
// result.
func (vm *VM) evalDefault(expr *ast.Expr) (value.Value, *RuntimeError) {
	thunk, ok := vm.defaultFns[expr]
	if !ok {
		thunk = vm.compile.CompileExpr(expr)
		vm.defaultFns[expr] = thunk
	}
	closure := &value.ClosureObj{Function: thunk}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjClosure, Closure: closure})))
	depth := len(vm.Frames)
	if err := vm.call(closure, 0, nil); err != nil {
		return value.Value{}, err
	}
	if err := vm.runFrom(depth); err != nil {
		return value.Value{}, err
	}
	return vm.pop(), nil
}

// callValue dispatches a CALL/INVOKE's callee by heap kind: a Closure
// opens an ordinary frame, a Native invokes its Go function body
// directly against the current stack (§4.6 "Native ABI").
func (vm *VM) callValue(callee value.Value, argCount int, catches []*value.ClosureObj) *RuntimeError {
	if callee.Kind != value.KObject || callee.Obj == nil {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not callable", callee.String())
	}
	switch callee.Obj.Kind {
	case value.ObjClosure:
		return vm.call(callee.Obj.Closure, argCount, catches)
	case value.ObjNative:
		return vm.callNative(callee.Obj.Native, argCount)
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not callable", callee.String())
	}
}

// callNative invokes a native function in place: arguments already sit
// on the stack above the callee, exactly as the ABI in §4.6 expects via
// Peek; the callee and its arguments are then replaced by the single
// pushed return value (or Null if none was pushed). Unlike a Buzz
// closure, a native carries no per-parameter default expression (§3
// "Native(function pointer, arity)" has no default slot), so a call
// short of the declared arity is simply padded with Null rather than
// evaluating a fragment.
func (vm *VM) callNative(n *value.NativeObj, argCount int) *RuntimeError {
	if argCount > n.Arity {
		return vm.runtimeErrorf(diag.TypeArityMismatch, "%s expects %d argument(s), got %d", n.Name, n.Arity, argCount)
	}
	for ; argCount < n.Arity; argCount++ {
		vm.push(value.Null)
	}
	base := len(vm.Stack) - argCount
	pushed := n.Fn(vm)
	if vm.pendingThrow != nil {
		thrown := *vm.pendingThrow
		vm.pendingThrow = nil
		vm.Stack = vm.Stack[:base-1]
		return vm.raise(thrown)
	}
	var result value.Value
	switch pushed {
	case 0:
		result = value.Null
	case 1:
		result = vm.pop()
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "%s pushed %d values, expected 0 or 1", n.Name, pushed)
	}
	vm.Stack = vm.Stack[:base-1]
	vm.push(result)
	return nil
}
