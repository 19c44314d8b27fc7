// Package value implements Buzz's runtime data model: the tagged Value
// union and every heap Object kind (§3).
package value

import "fmt"

// Kind identifies which field of a Value is meaningful.
type Kind uint8

const (
	KNull Kind = iota
	KBool
	KInt
	KFloat
	KObject
)

// Value is a copyable tagged union. Only KObject participates in GC.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int32
	Float float64
	Obj   *Object
}

// Null is the canonical null value.
var Null = Value{Kind: KNull}

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{Kind: KBool, Bool: b} }

// NewInt wraps an i32.
func NewInt(n int32) Value { return Value{Kind: KInt, Int: n} }

// NewFloat wraps an f64.
func NewFloat(f float64) Value { return Value{Kind: KFloat, Float: f} }

// NewObject wraps a heap reference.
func NewObject(o *Object) Value { return Value{Kind: KObject, Obj: o} }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.Kind == KNull }

// IsTruthy implements Buzz's boolean-context coercion: only `false` and
// `null` are falsy, mirroring the donor's dynamic-truthiness rules.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KNull:
		return false
	case KBool:
		return v.Bool
	default:
		return true
	}
}

// ObjKind reports o's kind, or ObjKind(0) if v does not hold an object.
func (v Value) ObjKind() (ObjKind, bool) {
	if v.Kind != KObject || v.Obj == nil {
		return 0, false
	}
	return v.Obj.Kind, true
}

func (v Value) String() string {
	switch v.Kind {
	case KNull:
		return "null"
	case KBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KInt:
		return fmt.Sprintf("%d", v.Int)
	case KFloat:
		return fmt.Sprintf("%g", v.Float)
	case KObject:
		if v.Obj == nil {
			return "null"
		}
		return v.Obj.String()
	default:
		return "<invalid>"
	}
}

// Equal implements Buzz's `==`: structural for value types and strings
// (interning makes string comparison a pointer check in practice), and
// identity for every other heap kind.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNull:
		return true
	case KBool:
		return a.Bool == b.Bool
	case KInt:
		return a.Int == b.Int
	case KFloat:
		return a.Float == b.Float
	case KObject:
		if a.Obj == b.Obj {
			return true
		}
		if a.Obj == nil || b.Obj == nil {
			return false
		}
		if a.Obj.Kind == ObjString && b.Obj.Kind == ObjString {
			return a.Obj.Str.Chars == b.Obj.Str.Chars
		}
		return false
	default:
		return false
	}
}
