// Package types interns Buzz's structural type descriptors (§3) so that
// type equality reduces to a TypeID comparison everywhere in the
// pipeline (§9, Open Question (a)).
package types

import "fmt"

// TypeID identifies an interned Type descriptor.
type TypeID uint32

// NoTypeID marks the absence of a type (an unresolved node before
// type-checking runs).
const NoTypeID TypeID = 0

// Kind discriminates the variant a Type descriptor holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInteger
	KindFloat
	KindString
	KindList
	KindMap
	KindRange
	KindObject
	KindObjectInstance
	KindEnum
	KindEnumInstance
	KindFunction
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindRange:
		return "range"
	case KindObject:
		return "object"
	case KindObjectInstance:
		return "object instance"
	case KindEnum:
		return "enum"
	case KindEnumInstance:
		return "enum instance"
	case KindFunction:
		return "function"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}
