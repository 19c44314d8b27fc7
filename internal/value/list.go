package value

import (
	"strings"

	"github.com/WriteNaN/buzz/internal/types"
)

// ListObj is a dynamic, homogeneously-typed array (§3 "List").
type ListObj struct {
	ItemType types.TypeID
	Items    []Value
}

func (l *ListObj) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Clone returns a shallow copy of l's backing array, so two instances
// sharing a defaulted list argument never alias each other's elements
// (§4.2 "Default values").
func (l *ListObj) Clone() *ListObj {
	items := make([]Value, len(l.Items))
	copy(items, l.Items)
	return &ListObj{ItemType: l.ItemType, Items: items}
}
