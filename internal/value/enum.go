package value

import "github.com/WriteNaN/buzz/internal/types"

// EnumCaseValue is one `name => value` member of an EnumObj.
type EnumCaseValue struct {
	Name  string
	Value Value
}

// EnumObj is a runtime enum declaration (§3 "Enum").
type EnumObj struct {
	Name       string
	Underlying types.TypeID
	Cases      []EnumCaseValue
	Type       types.TypeID
}

// CaseByName looks up a case index by name.
func (e *EnumObj) CaseByName(name string) (int, bool) {
	for i, c := range e.Cases {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// EnumInstanceObj is one case of an EnumObj, selected by index (§3
// "EnumInstance").
type EnumInstanceObj struct {
	Enum      *EnumObj
	CaseIndex int
}
