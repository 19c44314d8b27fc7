package value

// InstanceObj is an instance of a ClassObj (§3 "ObjectInstance").
type InstanceObj struct {
	Class  *ClassObj
	Fields map[string]Value
}
