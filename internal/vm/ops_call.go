package vm

import "github.com/WriteNaN/buzz/internal/value"

// opCall handles CALL: the catchCount closures compiled just ahead of
// this instruction are popped first (they sit above the arguments), then
// the callee — argCount slots further down — is dispatched by kind
// (§4.4 "Call", §4.4 "Exceptions").
func (vm *VM) opCall(argCount, catchCount int) *RuntimeError {
	catches := vm.popCatches(catchCount)
	callee := vm.peek(argCount)
	return vm.callValue(callee, argCount, catches)
}

func (vm *VM) popCatches(n int) []*value.ClosureObj {
	if n == 0 {
		return nil
	}
	catches := make([]*value.ClosureObj, n)
	for i := n - 1; i >= 0; i-- {
		catches[i] = vm.pop().Obj.Closure
	}
	return catches
}

// opInvoke handles INVOKE: `receiver.member(args...)` compiled as one
// instruction when it carries no catch clauses (§4.4 "Call"). A method
// found on the receiver's class dispatches like an ordinary call; a
// receiver with no user-defined class instead consults its intrinsic
// method table (builtins.go).
func (vm *VM) opInvoke(nameIdx uint32, argCount int) *RuntimeError {
	name := vm.constant(nameIdx).Obj.Str.Chars
	receiver := vm.peek(argCount)
	return vm.invokeMember(receiver, name, argCount, nil)
}

// opSuperInvoke handles SUPER_INVOKE. codegen compiles `super.member(...)`
// by pushing `this` as the receiver (GetLocal 0) ahead of the arguments,
// exactly the layout GET_PROPERTY on `super` itself already uses — so,
// like plain `super.member` property access, this resolves against the
// receiver's own (most-derived) class rather than genuinely starting the
// search at the enclosing method's declared parent, since FunctionObj
// does not record which class defined it.
func (vm *VM) opSuperInvoke(nameIdx uint32, argCount int) *RuntimeError {
	return vm.opInvoke(nameIdx, argCount)
}

func (vm *VM) invokeMember(receiver value.Value, name string, argCount int, catches []*value.ClosureObj) *RuntimeError {
	if receiver.Kind == value.KObject && receiver.Obj != nil && receiver.Obj.Kind == value.ObjInstance {
		if m, ok := receiver.Obj.Instance.Class.FindMethod(name); ok {
			return vm.call(m, argCount, catches)
		}
	}
	return vm.invokeBuiltin(receiver, name, argCount)
}
