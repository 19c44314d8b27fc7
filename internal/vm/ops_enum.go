package vm

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// opEnum pushes the pre-built EnumObj constant, unchanged (§4.3
// "EnumDecl").
func (vm *VM) opEnum(constIdx uint32) *RuntimeError {
	vm.push(vm.constant(constIdx))
	return nil
}

// opEnumCase pops a case's value; its EnumObj (still resident beneath
// it on the stack) was already filled in at compile time by
// foldEnumCaseValue, so this only discards the redundant runtime value
// and leaves the enum in place.
func (vm *VM) opEnumCase(nameIdx uint32) *RuntimeError {
	vm.pop()
	_ = nameIdx
	return nil
}

// opGetEnumCase looks a case up on an EnumObj by name, pushing its
// EnumInstance. Not currently emitted by codegen (which lowers `Enum.Case`
// through the polymorphic GET_PROPERTY instead), kept for bytecode-set
// completeness.
func (vm *VM) opGetEnumCase(nameIdx uint32) *RuntimeError {
	enumVal := vm.pop()
	if enumVal.Kind != value.KObject || enumVal.Obj == nil || enumVal.Obj.Kind != value.ObjEnum {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not an enum", describeKind(enumVal))
	}
	name := vm.constant(nameIdx).Obj.Str.Chars
	idx, ok := enumVal.Obj.Enum.CaseByName(name)
	if !ok {
		return vm.runtimeErrorf(diag.TypeNoSuchField, "%s has no case %q", enumVal.Obj.Enum.Name, name)
	}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjEnumInstance, EnumInstance: &value.EnumInstanceObj{Enum: enumVal.Obj.Enum, CaseIndex: idx}})))
	return nil
}

// opGetEnumCaseValue pops an EnumInstance and pushes its underlying
// value. Not currently emitted by codegen (GET_PROPERTY's "value"
// member does the same), kept for completeness.
func (vm *VM) opGetEnumCaseValue() *RuntimeError {
	v := vm.pop()
	if v.Kind != value.KObject || v.Obj == nil || v.Obj.Kind != value.ObjEnumInstance {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s is not an enum instance", describeKind(v))
	}
	ei := v.Obj.EnumInstance
	vm.push(ei.Enum.Cases[ei.CaseIndex].Value)
	return nil
}
