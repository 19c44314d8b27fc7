package value

import (
	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/types"
)

// FieldSpec is one declared field of a ClassObj: its static type and,
// when present, the AST fragment that produces its default value
// (§3 "Object", §4.2 "Default values").
type FieldSpec struct {
	Type    types.TypeID
	Default *ast.Expr
	Static  bool
}

// ClassObj is the runtime form of an `object` declaration (§3 "Object
// (class-like)"): a name, its methods, its declared field types and
// default-value fragments, an optional parent, and the set of static
// field names.
type ClassObj struct {
	Name         string
	Methods      map[string]*ClosureObj
	FieldTypes   map[string]FieldSpec
	FieldOrder   []string // declaration order, for deterministic instantiation
	Super        *ClassObj
	StaticFields map[string]Value
	Type         types.TypeID
}

// FindMethod looks up a method by name on c or, recursively, its parent
// chain (§4.2 "Object inheritance").
func (c *ClassObj) FindMethod(name string) (*ClosureObj, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if m, ok := cur.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindField looks up a field spec by name on c or its parent chain.
func (c *ClassObj) FindField(name string) (FieldSpec, bool) {
	for cur := c; cur != nil; cur = cur.Super {
		if f, ok := cur.FieldTypes[name]; ok {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// AllFieldNames returns every instance field name, own fields before
// inherited ones, without duplicates.
func (c *ClassObj) AllFieldNames() []string {
	seen := make(map[string]bool)
	var out []string
	for cur := c; cur != nil; cur = cur.Super {
		for _, name := range cur.FieldOrder {
			if seen[name] || cur.FieldTypes[name].Static {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
