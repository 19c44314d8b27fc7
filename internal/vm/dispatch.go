package vm

import (
	"fmt"

	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// dispatch runs the interpreter loop from the current (just-opened)
// frame to completion.
func (vm *VM) dispatch() *RuntimeError {
	return vm.runFrom(0)
}

// runFrom drives step until the frame stack unwinds back to depth —
// the frame count vm.call left behind before opening the frame(s) this
// call is meant to run. It is also how evalDefault re-enters dispatch
// for a nested default-value thunk without disturbing the enclosing
// run's own depth (§4.2 "Default values").
func (vm *VM) runFrom(depth int) *RuntimeError {
	for len(vm.Frames) > depth {
		if err := vm.step(); err != nil {
			return err
		}
	}
	return nil
}

// step decodes and executes the single instruction at the current
// frame's IP (§4.3, §4.4 "Call frame").
func (vm *VM) step() *RuntimeError {
	f := vm.frame()
	instr := f.chunk().Code[f.IP]
	instrIdx := f.IP
	f.IP++

	if vm.opts.CycleLimit > 0 {
		vm.cycles++
		if vm.cycles > vm.opts.CycleLimit {
			return vm.runtimeErrorf(diag.RuntimeStackOverflow, "cycle limit exceeded")
		}
	}
	if vm.opts.Trace {
		vm.traceInstr(instr)
	}

	switch instr.Op {
	case bytecode.OpConstant:
		vm.push(vm.constant(instr.Arg))
	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpCopy:
		vm.push(vm.peek(0))
	case bytecode.OpSwap:
		a := vm.pop()
		b := vm.pop()
		vm.push(a)
		vm.push(b)

	case bytecode.OpGetGlobal:
		vm.push(vm.Globals[instr.Arg])
	case bytecode.OpSetGlobal:
		vm.Globals[instr.Arg] = vm.peek(0)
	case bytecode.OpDefineGlobal:
		vm.Globals[instr.Arg] = vm.pop()

	case bytecode.OpGetLocal:
		vm.push(vm.Stack[f.SlotBase+int(instr.Arg)])
	case bytecode.OpSetLocal:
		vm.Stack[f.SlotBase+int(instr.Arg)] = vm.peek(0)

	case bytecode.OpGetUpvalue:
		vm.push(f.Closure.Upvalues[instr.Arg].Get())
	case bytecode.OpSetUpvalue:
		f.Closure.Upvalues[instr.Arg].Set(vm.peek(0))
	case bytecode.OpCloseUpvalue:
		idx := len(vm.Stack) - 1
		vm.closeUpvaluesFrom(idx)
		vm.pop()

	case bytecode.OpGetProperty:
		return vm.opGetProperty(instr.Arg)
	case bytecode.OpSetProperty:
		return vm.opSetProperty(instr.Arg)
	case bytecode.OpGetSubscript:
		return vm.opGetSubscript()
	case bytecode.OpSetSubscript:
		return vm.opSetSubscript()

	case bytecode.OpList:
		return vm.opList(int(instr.Arg))
	case bytecode.OpAppendList:
		return vm.opAppendList()
	case bytecode.OpMap:
		return vm.opMap(int(instr.Arg))
	case bytecode.OpSetMap:
		return vm.opSetMap()
	case bytecode.OpRange:
		return vm.opRange()

	case bytecode.OpAdd:
		return vm.opAdd()
	case bytecode.OpSubtract:
		return vm.opSubtract()
	case bytecode.OpMultiply:
		return vm.opMultiply()
	case bytecode.OpDivide:
		return vm.opDivide()
	case bytecode.OpMod:
		return vm.opMod()
	case bytecode.OpNegate:
		return vm.opNegate()
	case bytecode.OpNot:
		return vm.opNot()

	case bytecode.OpEqual:
		return vm.opEqual()
	case bytecode.OpGreater:
		return vm.opGreater()
	case bytecode.OpLess:
		return vm.opLess()
	case bytecode.OpIs:
		return vm.opIs()

	case bytecode.OpJump:
		f.IP += int(instr.Arg)
	case bytecode.OpJumpIfFalse:
		cond := vm.pop()
		if !cond.IsTruthy() {
			f.IP += int(instr.Arg)
		}
	case bytecode.OpLoop:
		f.IP -= int(instr.Arg)

	case bytecode.OpNull:
		vm.push(value.Null)
	case bytecode.OpUnwrap:
		v := vm.pop()
		if v.IsNull() {
			return vm.raise(vm.newString("NullError: unwrapped a null value"))
		}
		vm.push(v)
	case bytecode.OpNullOr:
		// Never emitted by codegen, which lowers `??` through Copy/Null/
		// Equal/Not/JumpIfFalse instead; kept for bytecode-set completeness.
		fallback := vm.pop()
		v := vm.pop()
		if v.IsNull() {
			vm.push(fallback)
		} else {
			vm.push(v)
		}

	case bytecode.OpCall:
		return vm.opCall(int(instr.Arg), int(instr.Arg2))
	case bytecode.OpInvoke:
		return vm.opInvoke(instr.Arg, int(instr.Arg2))
	case bytecode.OpSuperInvoke:
		return vm.opSuperInvoke(instr.Arg, int(instr.Arg2))
	case bytecode.OpClosure:
		vm.opClosure(instr.Arg, instrIdx)
	case bytecode.OpReturn:
		return vm.opReturn()
	case bytecode.OpVoid:
		vm.push(value.Null)

	case bytecode.OpObject:
		return vm.opObject(instr.Arg)
	case bytecode.OpInherit:
		return vm.opInherit()
	case bytecode.OpMethod:
		return vm.opMethod(instr.Arg)
	case bytecode.OpProperty:
		return vm.opProperty(instr.Arg)
	case bytecode.OpInstance:
		return vm.opInstance()

	case bytecode.OpEnum:
		return vm.opEnum(instr.Arg)
	case bytecode.OpEnumCase:
		return vm.opEnumCase(instr.Arg)
	case bytecode.OpGetEnumCase:
		return vm.opGetEnumCase(instr.Arg)
	case bytecode.OpGetEnumCaseValue:
		return vm.opGetEnumCaseValue()

	case bytecode.OpToString:
		return vm.opToString()
	case bytecode.OpStringConcat:
		return vm.opStringConcat()

	case bytecode.OpForeach:
		return vm.opForeach(instr.Arg, instr.Arg2)

	case bytecode.OpImport:
		return vm.opImport()
	case bytecode.OpExport:
		return vm.opExport()

	case bytecode.OpThrow:
		v := vm.pop()
		return vm.raise(v)

	default:
		return vm.runtimeErrorf(diag.RuntimeUnhandledThrow, "unknown opcode %s", instr.Op)
	}
	return nil
}

// opClosure builds a ClosureObj from the function constant at idx,
// resolving each entry of the UpvalueRefs table recorded for the
// instruction at instrIdx against the enclosing frame still on top of
// vm.Frames (§4.3 "Closures", §9 "Upvalue linkage").
func (vm *VM) opClosure(idx uint32, instrIdx int) {
	f := vm.frame()
	fnVal := vm.constant(idx)
	fnObj := fnVal.Obj.Func

	refs := f.chunk().UpvalueRefs[instrIdx]
	upvalues := make([]*value.UpvalueObj, len(refs))
	for i, ref := range refs {
		if ref.IsLocal {
			upvalues[i] = vm.captureUpvalue(f.SlotBase + int(ref.Index))
		} else {
			upvalues[i] = f.Closure.Upvalues[ref.Index]
		}
	}

	closure := &value.ClosureObj{Function: fnObj, Upvalues: upvalues}
	vm.push(value.NewObject(vm.track(&value.Object{Kind: value.ObjClosure, Closure: closure})))
}

// opReturn pops the returning frame, closing any upvalue still open
// into its locals, and leaves the function's result sitting where the
// call itself occupied on the caller's stack (§4.4 "Call").
func (vm *VM) opReturn() *RuntimeError {
	result := vm.pop()
	base := vm.frame().SlotBase
	vm.closeUpvaluesFrom(base)
	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	vm.Stack = vm.Stack[:base]
	vm.push(result)
	return nil
}

// traceInstr prints one dispatched instruction to Stderr when
// Options.Trace is set (§4.4, debugging aid mirrored on the donor's
// own step tracer).
func (vm *VM) traceInstr(instr bytecode.Instruction) {
	f := vm.frame()
	fmt.Fprintf(vm.opts.Stderr, "%-20s %-16s %6d %6d\n", f.Closure.Function.Name, instr.Op.String(), instr.Arg, instr.Arg2)
}
