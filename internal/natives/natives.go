// Package natives implements the small set of native functions the
// testable scenarios in spec §8 exercise directly: print, assert,
// parseInt, toString (§4.6 "Native ABI"). Every other standard-library
// surface (math, buffers, os, errors) is out of scope per §1.
package natives

import (
	"fmt"
	"io"
	"strconv"

	"github.com/WriteNaN/buzz/internal/value"
)

func str(s string) value.Value {
	return value.NewObject(&value.Object{Kind: value.ObjString, Str: &value.StringObj{Chars: s}})
}

func throwf(ctx value.NativeContext, format string, args ...any) int {
	ctx.Throw(str(fmt.Sprintf(format, args...)))
	return 0
}

// Builtins returns the native function table, writing print's output to
// out. Callers (internal/driver) seed these into the globals whose name
// matches, per §4.6 "Native ABI".
func Builtins(out io.Writer) map[string]*value.NativeObj {
	return map[string]*value.NativeObj{
		"print":    {Name: "print", Arity: 1, Fn: printFn(out)},
		"assert":   {Name: "assert", Arity: 2, Fn: assertFn},
		"parseInt": {Name: "parseInt", Arity: 1, Fn: parseIntFn},
		"toString": {Name: "toString", Arity: 1, Fn: toStringFn},
	}
}

// printFn implements `print(value)`: it renders value.String() followed
// by a newline, exactly scenario 1's `print("hello");` -> `hello\n`.
func printFn(out io.Writer) value.NativeFn {
	return func(ctx value.NativeContext) int {
		fmt.Fprintln(out, ctx.Peek(0).String())
		return 0
	}
}

// assertFn implements `assert(condition, message)`. A falsy condition
// throws an AssertionError carrying message ("assertion failed" when the
// caller omitted it, per callNative's Null-padding of a short native call);
// a truthy condition returns nothing (§8 scenario 2).
func assertFn(ctx value.NativeContext) int {
	cond := ctx.Peek(1)
	message := ctx.Peek(0)
	if cond.IsTruthy() {
		return 0
	}
	text := "assertion failed"
	if !message.IsNull() {
		text = message.String()
	}
	return throwf(ctx, "AssertionError: %s", text)
}

// parseIntFn implements `parseInt(s)`, throwing ParseError on malformed
// input rather than returning a sentinel (§4.6 "Native functions
// surface failures by throwing").
func parseIntFn(ctx value.NativeContext) int {
	arg := ctx.Peek(0)
	if arg.Kind != value.KObject || arg.Obj == nil || arg.Obj.Kind != value.ObjString {
		return throwf(ctx, "TypeError: parseInt expects a str, got %s", arg.String())
	}
	n, err := strconv.ParseInt(arg.Obj.Str.Chars, 10, 32)
	if err != nil {
		return throwf(ctx, "ParseError: %q is not a valid integer", arg.Obj.Str.Chars)
	}
	ctx.Push(value.NewInt(int32(n)))
	return 1
}

// toStringFn implements `toString(value)`, the native counterpart to the
// OpToString opcode string interpolation already uses internally.
func toStringFn(ctx value.NativeContext) int {
	ctx.Push(str(ctx.Peek(0).String()))
	return 1
}
