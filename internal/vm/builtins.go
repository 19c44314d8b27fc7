package vm

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// invokeBuiltin dispatches a method call whose receiver has no
// user-defined class — the intrinsic methods List/Map/String/Range
// carry natively (§4.4 "Call" on a built-in receiver). It replaces the
// receiver+argument run on the stack with the single result, the same
// convention callNative uses for the native ABI.
func (vm *VM) invokeBuiltin(receiver value.Value, name string, argCount int) *RuntimeError {
	base := len(vm.Stack) - argCount - 1
	args := append([]value.Value(nil), vm.Stack[base+1:]...)

	result, err := vm.dispatchBuiltin(receiver, name, args)
	if err != nil {
		return err
	}
	vm.Stack = vm.Stack[:base]
	vm.push(result)
	return nil
}

func (vm *VM) dispatchBuiltin(receiver value.Value, name string, args []value.Value) (value.Value, *RuntimeError) {
	if receiver.Kind != value.KObject || receiver.Obj == nil {
		return value.Value{}, vm.runtimeErrorf(diag.TypeNoSuchMethod, "%s has no method %q", describeKind(receiver), name)
	}
	switch receiver.Obj.Kind {
	case value.ObjList:
		return vm.listMethod(receiver.Obj.List, name, args)
	case value.ObjMap:
		return vm.mapMethod(receiver.Obj.Map, name, args)
	case value.ObjString:
		return vm.stringMethod(receiver.Obj.Str, name, args)
	case value.ObjRange:
		return vm.rangeMethod(receiver.Obj.Range, name, args)
	default:
		return value.Value{}, vm.runtimeErrorf(diag.TypeNoSuchMethod, "%s has no method %q", receiver.Obj.Kind.String(), name)
	}
}

func (vm *VM) listMethod(l *value.ListObj, name string, args []value.Value) (value.Value, *RuntimeError) {
	switch name {
	case "append":
		for _, a := range args {
			l.Items = append(l.Items, a)
		}
		return value.Null, nil
	case "len":
		return value.NewInt(int32(len(l.Items))), nil
	case "toList":
		return value.NewObject(vm.track(&value.Object{Kind: value.ObjList, List: l.Clone()})), nil
	case "pop":
		if len(l.Items) == 0 {
			return value.Value{}, vm.raise(vm.newString("IndexError: pop from an empty list"))
		}
		last := l.Items[len(l.Items)-1]
		l.Items = l.Items[:len(l.Items)-1]
		return last, nil
	default:
		return value.Value{}, vm.runtimeErrorf(diag.TypeNoSuchMethod, "list has no method %q", name)
	}
}

func (vm *VM) mapMethod(m *value.MapObj, name string, args []value.Value) (value.Value, *RuntimeError) {
	switch name {
	case "len":
		return value.NewInt(int32(m.Len())), nil
	case "keys":
		items := make([]value.Value, m.Len())
		for i, e := range m.Entries {
			items[i] = e.Key
		}
		return value.NewObject(vm.track(&value.Object{Kind: value.ObjList, List: &value.ListObj{ItemType: m.KeyType, Items: items}})), nil
	case "values":
		items := make([]value.Value, m.Len())
		for i, e := range m.Entries {
			items[i] = e.Value
		}
		return value.NewObject(vm.track(&value.Object{Kind: value.ObjList, List: &value.ListObj{ItemType: m.ValueType, Items: items}})), nil
	default:
		return value.Value{}, vm.runtimeErrorf(diag.TypeNoSuchMethod, "map has no method %q", name)
	}
}

func (vm *VM) stringMethod(s *value.StringObj, name string, args []value.Value) (value.Value, *RuntimeError) {
	switch name {
	case "len":
		return value.NewInt(int32(len([]rune(s.Chars)))), nil
	default:
		return value.Value{}, vm.runtimeErrorf(diag.TypeNoSuchMethod, "str has no method %q", name)
	}
}

func (vm *VM) rangeMethod(r *value.RangeObj, name string, args []value.Value) (value.Value, *RuntimeError) {
	switch name {
	case "len":
		return value.NewInt(r.Len()), nil
	case "toList":
		n := int(r.Len())
		items := make([]value.Value, n)
		for i := 0; i < n; i++ {
			items[i] = value.NewInt(r.Low + int32(i)*r.Step())
		}
		return value.NewObject(vm.track(&value.Object{Kind: value.ObjList, List: &value.ListObj{Items: items}})), nil
	default:
		return value.Value{}, vm.runtimeErrorf(diag.TypeNoSuchMethod, "range has no method %q", name)
	}
}
