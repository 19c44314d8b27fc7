package vm

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// opForeach advances one FOREACH step. codegen reserves three
// contiguous hidden locals per loop — IterSlot (the iterable, fixed for
// the loop's lifetime), KeySlot, and ValueSlot (= KeySlot+1) — and
// signals exhaustion by leaving KeySlot Null (§4.4 "Foreach"). Since
// none of those slots is a free position counter for Map/Enum
// iteration (whose keys are not indices), the VM tracks position
// separately in iterPos, keyed by IterSlot's absolute stack index; a
// Null KeySlot going into this call — true both at the loop's first
// iteration and right after exhaustion — is exactly when that counter
// should (re)start at zero.
func (vm *VM) opForeach(iterSlot, keySlot uint32) *RuntimeError {
	base := vm.frame().SlotBase
	iterIdx := base + int(iterSlot)
	keyIdx := base + int(keySlot)
	valueIdx := keyIdx + 1

	pos := 0
	if !vm.Stack[keyIdx].IsNull() {
		pos = vm.iterPos[iterIdx]
	}

	iterVal := vm.Stack[iterIdx]
	if iterVal.Kind != value.KObject || iterVal.Obj == nil {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not iterable", describeKind(iterVal))
	}

	exhausted := func() {
		vm.Stack[keyIdx] = value.Null
		delete(vm.iterPos, iterIdx)
	}
	advance := func(key, val value.Value) {
		vm.Stack[keyIdx] = key
		vm.Stack[valueIdx] = val
		vm.iterPos[iterIdx] = pos + 1
	}

	switch iterVal.Obj.Kind {
	case value.ObjList:
		items := iterVal.Obj.List.Items
		if pos >= len(items) {
			exhausted()
			return nil
		}
		advance(value.NewInt(int32(pos)), items[pos])
	case value.ObjMap:
		entries := iterVal.Obj.Map.Entries
		if pos >= len(entries) {
			exhausted()
			return nil
		}
		advance(entries[pos].Key, entries[pos].Value)
	case value.ObjString:
		runes := []rune(iterVal.Obj.Str.Chars)
		if pos >= len(runes) {
			exhausted()
			return nil
		}
		advance(value.NewInt(int32(pos)), vm.newString(string(runes[pos])))
	case value.ObjRange:
		r := iterVal.Obj.Range
		if pos >= int(r.Len()) {
			exhausted()
			return nil
		}
		advance(value.NewInt(int32(pos)), value.NewInt(r.Low+int32(pos)*r.Step()))
	case value.ObjEnum:
		cases := iterVal.Obj.Enum.Cases
		if pos >= len(cases) {
			exhausted()
			return nil
		}
		advance(value.NewInt(int32(pos)), value.NewObject(vm.track(&value.Object{
			Kind:         value.ObjEnumInstance,
			EnumInstance: &value.EnumInstanceObj{Enum: iterVal.Obj.Enum, CaseIndex: pos},
		})))
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not iterable", iterVal.Obj.Kind.String())
	}
	return nil
}
