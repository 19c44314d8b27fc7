package vm

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

func (vm *VM) opEqual() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	vm.push(value.NewBool(value.Equal(a, b)))
	return nil
}

func (vm *VM) opGreater() *RuntimeError { return vm.orderedCompare(func(a, b float64) bool { return a > b }) }
func (vm *VM) opLess() *RuntimeError    { return vm.orderedCompare(func(a, b float64) bool { return a < b }) }

func (vm *VM) orderedCompare(cmp func(a, b float64) bool) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if isNumeric(a) && isNumeric(b) {
		vm.push(value.NewBool(cmp(asFloat(a), asFloat(b))))
		return nil
	}
	if isString(a) && isString(b) {
		// String ordering piggybacks on the same comparator with a 3-way
		// lexical result folded to -1/0/1, so `<`/`>` reuse cmp unchanged.
		var r float64
		switch {
		case a.Obj.Str.Chars < b.Obj.Str.Chars:
			r = -1
		case a.Obj.Str.Chars > b.Obj.Str.Chars:
			r = 1
		}
		vm.push(value.NewBool(cmp(r, 0)))
		return nil
	}
	return vm.runtimeErrorf(diag.TypeMismatch, "cannot compare %s and %s", describeKind(a), describeKind(b))
}

// opIs implements the `is` operator: pops the type-def operand pushed by
// codegen's ExprIs and the value under test, per §4.3 "`is`".
func (vm *VM) opIs() *RuntimeError {
	typeDef := vm.pop()
	v := vm.pop()
	vm.push(value.NewBool(vm.isInstanceOf(v, typeDef.Obj.TypeDefID)))
	return nil
}

// isInstanceOf reports whether v satisfies the declared type id — the
// same rule `is` and catch-clause parameter matching both consult (§4.4
// "the topmost matching one (by parameter type)").
func (vm *VM) isInstanceOf(v value.Value, id types.TypeID) bool {
	t, ok := vm.in.Lookup(id)
	if !ok {
		return false
	}
	if t.Optional && v.IsNull() {
		return true
	}
	nt, _ := vm.in.Lookup(vm.in.NonOptional(id))
	switch nt.Kind {
	case types.KindVoid:
		return v.IsNull()
	case types.KindBool:
		return v.Kind == value.KBool
	case types.KindInteger:
		return v.Kind == value.KInt
	case types.KindFloat:
		return v.Kind == value.KFloat
	case types.KindString:
		return isString(v)
	case types.KindList:
		return isList(v)
	case types.KindMap:
		return isMap(v)
	case types.KindRange:
		return v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjRange
	case types.KindObject, types.KindObjectInstance:
		if v.Kind != value.KObject || v.Obj == nil || v.Obj.Kind != value.ObjInstance {
			return false
		}
		for c := v.Obj.Instance.Class; c != nil; c = c.Super {
			if c.Type == vm.in.NonOptional(id) || c.Type == id {
				return true
			}
		}
		return false
	case types.KindEnum, types.KindEnumInstance:
		return v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjEnumInstance &&
			v.Obj.EnumInstance.Enum.Type == vm.in.NonOptional(id)
	case types.KindFunction:
		return v.Kind == value.KObject && v.Obj != nil && (v.Obj.Kind == value.ObjClosure || v.Obj.Kind == value.ObjNative)
	default:
		return false
	}
}
