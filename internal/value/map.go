package value

import (
	"strconv"
	"strings"

	"github.com/WriteNaN/buzz/internal/types"
)

// MapEntry is one key/value pair in insertion order.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapObj is Buzz's ordered Value->Value mapping (§3 "Map"). Entries
// preserve insertion order like the source language's own map; lookup is
// O(1) for the hashable primitive key kinds (null, bool, int, float,
// string) and falls back to a linear scan for heap-typed keys, which are
// rare in practice.
type MapObj struct {
	KeyType   types.TypeID
	ValueType types.TypeID
	Entries   []MapEntry
	index     map[string]int
}

// NewMap returns an empty map with the given declared key/value types.
func NewMap(keyType, valueType types.TypeID) *MapObj {
	return &MapObj{KeyType: keyType, ValueType: valueType, index: make(map[string]int)}
}

func hashableKey(v Value) (string, bool) {
	switch v.Kind {
	case KNull:
		return "n", true
	case KBool:
		if v.Bool {
			return "bt", true
		}
		return "bf", true
	case KInt:
		return "i" + strconv.FormatInt(int64(v.Int), 10), true
	case KFloat:
		return "f" + strconv.FormatFloat(v.Float, 'g', -1, 64), true
	case KObject:
		if v.Obj != nil && v.Obj.Kind == ObjString {
			return "s" + v.Obj.Str.Chars, true
		}
		return "", false
	default:
		return "", false
	}
}

// Get looks up key, returning (value, true) if present.
func (m *MapObj) Get(key Value) (Value, bool) {
	if hk, ok := hashableKey(key); ok {
		if i, found := m.index[hk]; found {
			return m.Entries[i].Value, true
		}
		return Value{}, false
	}
	for _, e := range m.Entries {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Set inserts or overwrites key's value, appending a new entry when key
// is new so insertion order is preserved.
func (m *MapObj) Set(key, val Value) {
	if hk, ok := hashableKey(key); ok {
		if i, found := m.index[hk]; found {
			m.Entries[i].Value = val
			return
		}
		m.index[hk] = len(m.Entries)
		m.Entries = append(m.Entries, MapEntry{Key: key, Value: val})
		return
	}
	for i, e := range m.Entries {
		if Equal(e.Key, key) {
			m.Entries[i].Value = val
			return
		}
	}
	m.Entries = append(m.Entries, MapEntry{Key: key, Value: val})
}

// Len returns the number of entries.
func (m *MapObj) Len() int { return len(m.Entries) }

// Clone returns a shallow, independent copy (§4.2 "Default values").
func (m *MapObj) Clone() *MapObj {
	out := NewMap(m.KeyType, m.ValueType)
	for _, e := range m.Entries {
		out.Set(e.Key, e.Value)
	}
	return out
}

// Merge implements the right-biased `+` semantics chosen in §9 Open
// Question (b): duplicate keys are overwritten by other's value.
func (m *MapObj) Merge(other *MapObj) *MapObj {
	out := m.Clone()
	for _, e := range other.Entries {
		out.Set(e.Key, e.Value)
	}
	return out
}

func (m *MapObj) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range m.Entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Key.String())
		sb.WriteString(": ")
		sb.WriteString(e.Value.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
