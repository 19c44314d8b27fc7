package vm

import "github.com/WriteNaN/buzz/internal/value"

// captureUpvalue returns the open upvalue already pointing at stack
// slot index, creating and linking a new one (in descending-index order)
// if none exists yet — exactly Lua's "find or create" upvalue rule (§9
// "Upvalue linkage").
func (vm *VM) captureUpvalue(index int) *value.UpvalueObj {
	var prev *value.UpvalueObj
	cur := vm.openUpvalues
	for cur != nil && cur.StackIndex > index {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.StackIndex == index {
		return cur
	}
	created := &value.UpvalueObj{Location: &vm.Stack[index], StackIndex: index, Next: cur}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvaluesFrom closes (detaches from the stack) every open upvalue
// at or above slot last, in the order a scope or call frame exits
// (§8 invariant "closed exactly when no VM stack slot references it").
func (vm *VM) closeUpvaluesFrom(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.StackIndex >= last {
		u := vm.openUpvalues
		u.Close()
		vm.openUpvalues = u.Next
	}
}
