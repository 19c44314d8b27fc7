package vm

import (
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// opObject pushes the pre-built ClassObj constant onto the stack,
// unchanged — its methods and static fields are attached by the
// OpMethod/OpProperty instructions that follow (§4.3 "ObjectDecl").
func (vm *VM) opObject(constIdx uint32) *RuntimeError {
	vm.push(vm.constant(constIdx))
	return nil
}

func (vm *VM) constant(idx uint32) value.Value {
	return vm.frame().chunk().Constants[idx]
}

// opInherit pops the super ClassObj and links it under the class still
// resident beneath it on the stack (§4.2 "Object inheritance").
func (vm *VM) opInherit() *RuntimeError {
	super := vm.pop()
	class := vm.peek(0)
	if !isClass(super) || !isClass(class) {
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot inherit from %s", describeKind(super))
	}
	class.Obj.Class.Super = super.Obj.Class
	return nil
}

// opMethod pops the just-closed method closure and binds it by name on
// the class beneath it, which remains on the stack (§4.3 "ObjectDecl").
func (vm *VM) opMethod(nameIdx uint32) *RuntimeError {
	closure := vm.pop()
	class := vm.peek(0)
	name := vm.constant(nameIdx).Obj.Str.Chars
	class.Obj.Class.Methods[name] = closure.Obj.Closure
	return nil
}

// opProperty pops a static field's initial value and stores it on the
// class beneath it, which remains on the stack (§4.2 "static fields").
func (vm *VM) opProperty(nameIdx uint32) *RuntimeError {
	v := vm.pop()
	class := vm.peek(0)
	name := vm.constant(nameIdx).Obj.Str.Chars
	class.Obj.Class.StaticFields[name] = v
	return nil
}

// opInstance pops a ClassObj and pushes a freshly allocated instance,
// every declared field initialized from its default fragment — each
// re-evaluated fresh via evalDefault so two instances never alias a
// mutable default (§4.2 "Default values", §8 invariant) — or Null when
// the field has none (ObjectInit is responsible for setting it).
func (vm *VM) opInstance() *RuntimeError {
	classVal := vm.pop()
	if !isClass(classVal) {
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot instantiate %s", describeKind(classVal))
	}
	class := classVal.Obj.Class
	inst := &value.InstanceObj{Class: class, Fields: make(map[string]value.Value)}
	for _, name := range class.AllFieldNames() {
		spec, _ := class.FindField(name)
		if spec.Default == nil {
			inst.Fields[name] = value.Null
			continue
		}
		v, err := vm.evalDefault(spec.Default)
		if err != nil {
			return err
		}
		inst.Fields[name] = v
	}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjInstance, Instance: inst})))
	return nil
}

// opGetProperty implements `.member` over an instance's fields, its
// class's (or its ancestors') methods, a class's static fields, an
// enum's cases, and an enum instance's name/value (§4.3 "Property
// access"). A method fetched this way (not immediately invoked through
// INVOKE) is pushed unbound — the receiver is not captured with it, a
// simplification noted where this package's tests exercise it.
func (vm *VM) opGetProperty(nameIdx uint32) *RuntimeError {
	receiver := vm.pop()
	name := vm.constant(nameIdx).Obj.Str.Chars
	if receiver.Kind != value.KObject || receiver.Obj == nil {
		return vm.runtimeErrorf(diag.TypeMismatch, "%s has no property %q", describeKind(receiver), name)
	}
	switch receiver.Obj.Kind {
	case value.ObjInstance:
		if v, ok := receiver.Obj.Instance.Fields[name]; ok {
			vm.push(v)
			return nil
		}
		if m, ok := receiver.Obj.Instance.Class.FindMethod(name); ok {
			vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjClosure, Closure: m})))
			return nil
		}
		return vm.runtimeErrorf(diag.TypeNoSuchField, "%s has no field or method %q", receiver.Obj.Instance.Class.Name, name)
	case value.ObjClass:
		if v, ok := receiver.Obj.Class.StaticFields[name]; ok {
			vm.push(v)
			return nil
		}
		return vm.runtimeErrorf(diag.TypeNoSuchField, "%s has no static field %q", receiver.Obj.Class.Name, name)
	case value.ObjEnum:
		idx, ok := receiver.Obj.Enum.CaseByName(name)
		if !ok {
			return vm.runtimeErrorf(diag.TypeNoSuchField, "%s has no case %q", receiver.Obj.Enum.Name, name)
		}
		vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjEnumInstance, EnumInstance: &value.EnumInstanceObj{Enum: receiver.Obj.Enum, CaseIndex: idx}})))
		return nil
	case value.ObjEnumInstance:
		ei := receiver.Obj.EnumInstance
		switch name {
		case "name":
			vm.push(vm.newString(ei.Enum.Cases[ei.CaseIndex].Name))
		case "value":
			vm.push(ei.Enum.Cases[ei.CaseIndex].Value)
		default:
			return vm.runtimeErrorf(diag.TypeNoSuchField, "enum case has no property %q", name)
		}
		return nil
	default:
		return vm.runtimeErrorf(diag.TypeNoSuchField, "%s has no property %q", receiver.Obj.Kind.String(), name)
	}
}

// opSetProperty implements `receiver.member = value`, leaving value on
// the stack per the uniform Set convention (§9).
func (vm *VM) opSetProperty(nameIdx uint32) *RuntimeError {
	v := vm.pop()
	receiver := vm.pop()
	name := vm.constant(nameIdx).Obj.Str.Chars
	if receiver.Kind != value.KObject || receiver.Obj == nil {
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot set %q on %s", name, describeKind(receiver))
	}
	switch receiver.Obj.Kind {
	case value.ObjInstance:
		receiver.Obj.Instance.Fields[name] = v
	case value.ObjClass:
		receiver.Obj.Class.StaticFields[name] = v
	default:
		return vm.runtimeErrorf(diag.TypeMismatch, "cannot set %q on %s", name, receiver.Obj.Kind.String())
	}
	vm.push(v)
	return nil
}

func isClass(v value.Value) bool { return v.Kind == value.KObject && v.Obj != nil && v.Obj.Kind == value.ObjClass }
