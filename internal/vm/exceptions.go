package vm

import (
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// raise implements Buzz's throw semantics (§4.4 "Exceptions"): it walks
// the frame stack from the top down, and the first frame carrying any
// catch closures has each checked in declared order; "the topmost
// matching one (by parameter type) is invoked" is read as "the nearest
// enclosing guarded call, first declared catch that matches". raise
// returns nil once a catch has taken over dispatch, or a fatal
// RuntimeError if v reaches the bottom of the stack unhandled.
func (vm *VM) raise(v value.Value) *RuntimeError {
	for i := len(vm.Frames) - 1; i >= 0; i-- {
		f := &vm.Frames[i]
		for _, c := range f.Catches {
			if vm.catchMatches(c, v) {
				return vm.invokeCatch(i, c, v)
			}
		}
	}
	return vm.unhandledThrow(v)
}

// catchMatches reports whether catch (a zero- or one-arity closure
// compiled from a `catch` clause) handles the thrown value v. A zero-arg
// catch, or a one-arg catch whose parameter has no declared type,
// matches unconditionally; a typed one-arg catch matches only when v's
// runtime type satisfies its declared parameter type (§4.4 "the topmost
// matching one (by parameter type) is invoked").
func (vm *VM) catchMatches(catch *value.ClosureObj, v value.Value) bool {
	fn := catch.Function
	if fn.Arity == 0 || fn.ParamTypes[0] == types.NoTypeID {
		return true
	}
	return vm.isInstanceOf(v, fn.ParamTypes[0])
}

// invokeCatch unwinds the stack back to the guarded call's result slot
// and starts running the matching catch closure in its place, so the
// ordinary dispatch loop's eventual RETURN lands the catch's result
// exactly where the original call's result was expected.
func (vm *VM) invokeCatch(frameIdx int, catch *value.ClosureObj, thrown value.Value) *RuntimeError {
	base := vm.Frames[frameIdx].SlotBase
	vm.closeUpvaluesFrom(base)
	vm.Frames = vm.Frames[:frameIdx]
	vm.Stack = vm.Stack[:base]

	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjClosure, Closure: catch})))
	argCount := 0
	if catch.Function.Arity == 1 {
		vm.push(thrown)
		argCount = 1
	}
	return vm.call(catch, argCount, nil)
}
