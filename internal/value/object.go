package value

import (
	"fmt"

	"github.com/WriteNaN/buzz/internal/types"
)

// ObjKind identifies which heap object kind an Object holds (§3 "Heap
// objects").
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjList
	ObjMap
	ObjRange
	ObjFunction
	ObjClosure
	ObjUpvalue
	ObjClass // the language's "Object" (class-like) descriptor, named
	// ObjClass here to avoid colliding with Go's own "object" vocabulary
	ObjInstance
	ObjEnum
	ObjEnumInstance
	ObjNative
	ObjTypeDef
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjList:
		return "list"
	case ObjMap:
		return "map"
	case ObjRange:
		return "range"
	case ObjFunction:
		return "function"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjClass:
		return "object"
	case ObjInstance:
		return "object instance"
	case ObjEnum:
		return "enum"
	case ObjEnumInstance:
		return "enum instance"
	case ObjNative:
		return "native"
	case ObjTypeDef:
		return "type"
	default:
		return fmt.Sprintf("ObjKind(%d)", k)
	}
}

// Color is a tri-color GC mark (§4.5).
type Color uint8

const (
	White Color = iota
	Gray
	Black
)

// Object is the common header of every heap value. Only the field that
// matches Kind is populated; the rest are nil.
type Object struct {
	Kind  ObjKind
	Color Color
	Next  *Object // intrusive allocation list, owned by the heap/GC

	Str          *StringObj
	List         *ListObj
	Map          *MapObj
	Range        *RangeObj
	Func         *FunctionObj
	Closure      *ClosureObj
	Upvalue      *UpvalueObj
	Class        *ClassObj
	Instance     *InstanceObj
	Enum         *EnumObj
	EnumInstance *EnumInstanceObj
	Native       *NativeObj
	TypeDefID    types.TypeID
}

func (o *Object) String() string {
	if o == nil {
		return "null"
	}
	switch o.Kind {
	case ObjString:
		return o.Str.Chars
	case ObjList:
		return o.List.String()
	case ObjMap:
		return o.Map.String()
	case ObjRange:
		return o.Range.String()
	case ObjFunction:
		return fmt.Sprintf("<fn %s>", o.Func.Name)
	case ObjClosure:
		return fmt.Sprintf("<fn %s>", o.Closure.Function.Name)
	case ObjUpvalue:
		return "<upvalue>"
	case ObjClass:
		return fmt.Sprintf("<object %s>", o.Class.Name)
	case ObjInstance:
		return fmt.Sprintf("<%s instance>", o.Instance.Class.Name)
	case ObjEnum:
		return fmt.Sprintf("<enum %s>", o.Enum.Name)
	case ObjEnumInstance:
		return fmt.Sprintf("%s.%s", o.EnumInstance.Enum.Name, o.EnumInstance.Enum.Cases[o.EnumInstance.CaseIndex].Name)
	case ObjNative:
		return fmt.Sprintf("<native %s>", o.Native.Name)
	case ObjTypeDef:
		return "<type>"
	default:
		return "<object>"
	}
}
