package vm

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// opList pops n items (in source order, with the last item on top) and
// pushes a fresh ListObj. Arg's declared item type is not recoverable
// from the stack alone, so the element type is left as the first item's
// own runtime type when present — static typing has already checked
// homogeneity by the time codegen gets here (§4.2 "List").
func (vm *VM) opList(n int) *RuntimeError {
	items := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		items[i] = vm.pop()
	}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjList, List: &value.ListObj{Items: items}})))
	return nil
}

// opAppendList is the dedicated single-item append opcode; codegen
// currently lowers list literals through OpList instead, but the VM
// still implements it for any future direct emitter (§4.3 bytecode set
// completeness).
func (vm *VM) opAppendList() *RuntimeError {
	item := vm.pop()
	list := vm.pop()
	if !isList(list) {
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot append to %s", describeKind(list))
	}
	list.Obj.List.Items = append(list.Obj.List.Items, item)
	vm.push(list)
	return nil
}

// opMap pops 2n values (key, value pairs, last pair on top) and pushes a
// fresh MapObj (§4.2 "Map").
func (vm *VM) opMap(n int) *RuntimeError {
	m := value.NewMap(0, 0)
	pairs := make([]value.MapEntry, n)
	for i := n - 1; i >= 0; i-- {
		v := vm.pop()
		k := vm.pop()
		pairs[i] = value.MapEntry{Key: k, Value: v}
	}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjMap, Map: m})))
	return nil
}

// opSetMap is the dedicated single-entry insert opcode, analogous to
// opAppendList (not currently emitted; kept for completeness).
func (vm *VM) opSetMap() *RuntimeError {
	v := vm.pop()
	k := vm.pop()
	m := vm.pop()
	if !isMap(m) {
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot index-assign into %s", describeKind(m))
	}
	m.Obj.Map.Set(k, v)
	vm.push(m)
	return nil
}

// opRange pops high then low (low was pushed first) and pushes an
// inclusive-low/exclusive-high RangeObj (§3 "Range").
func (vm *VM) opRange() *RuntimeError {
	high := vm.pop()
	low := vm.pop()
	if low.Kind != value.KInt || high.Kind != value.KInt {
		return vm.runtimeErrorf(diag.TypeMismatch, "range bounds must be int, got %s..%s", describeKind(low), describeKind(high))
	}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjRange, Range: &value.RangeObj{Low: low.Int, High: high.Int}})))
	return nil
}

// opGetSubscript implements `container[index]` over List, Map, String
// (by codepoint index), and Range (by offset) (§4.3 "Subscript").
func (vm *VM) opGetSubscript() *RuntimeError {
	index := vm.pop()
	container := vm.pop()
	if container.Kind != value.KObject || container.Obj == nil {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not subscriptable", describeKind(container))
	}
	switch container.Obj.Kind {
	case value.ObjList:
		items := container.Obj.List.Items
		i, err := vm.subscriptIndex(index, len(items))
		if err != nil {
			return err
		}
		vm.push(items[i])
	case value.ObjMap:
		v, ok := container.Obj.Map.Get(index)
		if !ok {
			vm.push(value.Null)
			return nil
		}
		vm.push(v)
	case value.ObjString:
		runes := []rune(container.Obj.Str.Chars)
		i, err := vm.subscriptIndex(index, len(runes))
		if err != nil {
			return err
		}
		vm.push(vm.newString(string(runes[i])))
	case value.ObjRange:
		r := container.Obj.Range
		i, err := vm.subscriptIndex(index, int(r.Len())+1)
		if err != nil {
			return err
		}
		vm.push(value.NewInt(r.Low + int32(i)*r.Step()))
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not subscriptable", container.Obj.Kind.String())
	}
	return nil
}

func (vm *VM) subscriptIndex(index value.Value, length int) (int, *RuntimeError) {
	if index.Kind != value.KInt {
		return 0, vm.runtimeErrorf(diag.TypeMismatch, "subscript index must be int, got %s", describeKind(index))
	}
	i := int(index.Int)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, vm.raise(vm.newString("IndexError: index out of range"))
	}
	return i, nil
}

// opSetSubscript implements `container[index] = value`, leaving the
// assigned value on the stack per the uniform Set convention (§9).
func (vm *VM) opSetSubscript() *RuntimeError {
	val := vm.pop()
	index := vm.pop()
	container := vm.pop()
	if container.Kind != value.KObject || container.Obj == nil {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not subscriptable", describeKind(container))
	}
	switch container.Obj.Kind {
	case value.ObjList:
		items := container.Obj.List.Items
		i, err := vm.subscriptIndex(index, len(items))
		if err != nil {
			return err
		}
		items[i] = val
	case value.ObjMap:
		container.Obj.Map.Set(index, val)
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot index-assign into %s", container.Obj.Kind.String())
	}
	vm.push(val)
	return nil
}
