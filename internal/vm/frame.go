package vm

import "github.com/WriteNaN/buzz/internal/value"

// MaxFrames is the deepest the call-frame stack may grow before the VM
// reports a stack overflow (§4.4 "Maximum 64 call frames").
const MaxFrames = 64

// CallFrame is one activation record: the running closure, its
// instruction pointer into the closure's chunk, the first stack slot it
// owns (argument 0 or the receiver), and the catch closures installed by
// the CALL/INVOKE/SUPER_INVOKE instruction that pushed this frame
// (§4.4 "Call frame", "Exceptions").
type CallFrame struct {
	Closure  *value.ClosureObj
	IP       int
	SlotBase int
	Catches  []*value.ClosureObj
}

func (f *CallFrame) chunk() *value.Chunk { return f.Closure.Function.Chunk }
