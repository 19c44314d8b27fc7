package value

import "github.com/WriteNaN/buzz/internal/bytecode"

// Chunk is the compiled body of one function: its instruction stream,
// constant pool, and per-instruction line table (§3 "Chunk"). Constant
// slot 0 is always the empty string (§3 invariant).
type Chunk struct {
	Code        []bytecode.Instruction
	Constants   []Value
	UpvalueRefs [][]bytecode.UpvalueRef // parallel to Code; populated only at OpClosure sites
}

// NewChunk returns a chunk whose constant pool already contains the
// empty string at index 0.
func NewChunk(emptyString *Object) *Chunk {
	return &Chunk{Constants: []Value{NewObject(emptyString)}}
}
