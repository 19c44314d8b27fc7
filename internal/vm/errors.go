package vm

import (
	"fmt"
	"strings"

	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/value"
)

// StackTraceEntry names one call frame at the moment a RuntimeError was
// raised, innermost first (§7 "formatted stack trace").
type StackTraceEntry struct {
	Function string
	Line     int
}

// RuntimeError is a fatal VM failure: an unhandled throw, stack
// overflow, arithmetic overflow/underflow, or any other condition §7
// classifies as a non-recoverable RuntimeError.
type RuntimeError struct {
	Code    diag.Code
	Message string
	Thrown  value.Value // the thrown Value, for RuntimeUnhandledThrow
	Trace   []StackTraceEntry
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", e.Code, e.Message)
	for _, f := range e.Trace {
		fmt.Fprintf(&sb, "  at %s (line %d)\n", f.Function, f.Line)
	}
	return sb.String()
}

// newRuntimeError builds a RuntimeError carrying the current call
// stack's trace, innermost frame first.
func (vm *VM) newRuntimeError(code diag.Code, msg string) *RuntimeError {
	trace := make([]StackTraceEntry, 0, len(vm.Frames))
	for i := len(vm.Frames) - 1; i >= 0; i-- {
		f := &vm.Frames[i]
		line := 0
		if f.IP-1 >= 0 && f.IP-1 < len(f.chunk().Code) {
			line = f.chunk().Code[f.IP-1].Line
		}
		trace = append(trace, StackTraceEntry{Function: f.Closure.Function.Name, Line: line})
	}
	return &RuntimeError{Code: code, Message: msg, Trace: trace}
}

func (vm *VM) unhandledThrow(v value.Value) *RuntimeError {
	err := vm.newRuntimeError(diag.RuntimeUnhandledThrow, fmt.Sprintf("unhandled throw: %s", v.String()))
	err.Thrown = v
	return err
}
