package types

// FieldInfo records one declared field's static type and whether it has
// a default-value AST fragment (checked during ObjectInit, §4.2).
type FieldInfo struct {
	Name       string
	Type       TypeID
	HasDefault bool
	Static     bool
}

// ObjectType backs both KindObject (the class-like declaration) and
// KindObjectInstance (an instance of it) Type variants (§3).
type ObjectType struct {
	Name    string
	Fields  []FieldInfo
	Methods map[string]TypeID // method name -> KindFunction TypeID
	Super   *ObjectType       // nil for objects with no parent
}

// FindField looks up a field by name on o or, recursively, its parent
// chain (§4.2 "Object inheritance").
func (o *ObjectType) FindField(name string) (FieldInfo, bool) {
	for cur := o; cur != nil; cur = cur.Super {
		for _, f := range cur.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FieldInfo{}, false
}

// FindMethod looks up a method by name on o or its parent chain.
func (o *ObjectType) FindMethod(name string) (TypeID, bool) {
	for cur := o; cur != nil; cur = cur.Super {
		if id, ok := cur.Methods[name]; ok {
			return id, true
		}
	}
	return NoTypeID, false
}

// AllFields returns the object's own fields followed by its ancestors',
// nearest first, without duplicates (a child field shadows a parent
// field of the same name).
func (o *ObjectType) AllFields() []FieldInfo {
	seen := make(map[string]bool)
	var out []FieldInfo
	for cur := o; cur != nil; cur = cur.Super {
		for _, f := range cur.Fields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}
