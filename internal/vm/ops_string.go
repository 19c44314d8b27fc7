package vm

// opToString renders the top-of-stack value as a string in place,
// reusing Value.String()/Object.String() — the same textual form every
// scalar and container kind already knows how to produce (§4.1 "String
// interpolation").
func (vm *VM) opToString() *RuntimeError {
	v := vm.pop()
	vm.push(vm.newString(v.String()))
	return nil
}

// opStringConcat pops two strings and pushes their concatenation,
// interned the same as any other runtime-built string (§3 invariant
// "Strings are interned").
func (vm *VM) opStringConcat() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	vm.push(vm.newString(a.Obj.Str.Chars + b.Obj.Str.Chars))
	return nil
}
