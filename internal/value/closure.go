package value

// ClosureObj pairs a compiled function with its captured upvalues. Its
// upvalue count always equals its function's UpvalueCount (§8
// invariant).
type ClosureObj struct {
	Function *FunctionObj
	Upvalues []*UpvalueObj
}
