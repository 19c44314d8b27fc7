package natives

import (
	"bytes"
	"strings"
	"testing"

	"github.com/WriteNaN/buzz/internal/value"
)

// fakeContext is a minimal value.NativeContext for exercising a native
// body in isolation, without a VM. args[0] is the deepest (Peek's
// highest n), mirroring the VM's argument stack layout.
type fakeContext struct {
	args   []value.Value
	pushed []value.Value
	thrown *value.Value
}

func (c *fakeContext) Peek(n int) value.Value { return c.args[len(c.args)-1-n] }
func (c *fakeContext) Push(v value.Value)     { c.pushed = append(c.pushed, v) }
func (c *fakeContext) Throw(v value.Value)    { c.thrown = &v }

func TestPrintWritesArgumentAndNewline(t *testing.T) {
	var out bytes.Buffer
	fn := printFn(&out)
	ctx := &fakeContext{args: []value.Value{str("hi")}}
	if n := fn(ctx); n != 0 {
		t.Fatalf("expected 0 pushed values, got %d", n)
	}
	if out.String() != "hi\n" {
		t.Fatalf("expected %q, got %q", "hi\n", out.String())
	}
}

func TestAssertPassesOnTruthyCondition(t *testing.T) {
	ctx := &fakeContext{args: []value.Value{value.NewBool(true), value.Null}}
	if n := assertFn(ctx); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if ctx.thrown != nil {
		t.Fatalf("expected no throw, got %v", ctx.thrown)
	}
}

func TestAssertThrowsOnFalseConditionWithMessage(t *testing.T) {
	ctx := &fakeContext{args: []value.Value{value.NewBool(false), str("math is broken")}}
	assertFn(ctx)
	if ctx.thrown == nil {
		t.Fatalf("expected a throw")
	}
	if !strings.Contains(ctx.thrown.String(), "math is broken") {
		t.Fatalf("expected thrown message to include the assertion message, got %q", ctx.thrown.String())
	}
}

func TestParseIntParsesDecimalString(t *testing.T) {
	ctx := &fakeContext{args: []value.Value{str("42")}}
	if n := parseIntFn(ctx); n != 1 {
		t.Fatalf("expected 1 pushed value, got %d", n)
	}
	if ctx.pushed[0].Int != 42 {
		t.Fatalf("expected 42, got %d", ctx.pushed[0].Int)
	}
}

func TestParseIntThrowsOnNonNumericString(t *testing.T) {
	ctx := &fakeContext{args: []value.Value{str("not a number")}}
	parseIntFn(ctx)
	if ctx.thrown == nil {
		t.Fatalf("expected a throw for a non-numeric string")
	}
}

func TestToStringFormatsInt(t *testing.T) {
	ctx := &fakeContext{args: []value.Value{value.NewInt(7)}}
	toStringFn(ctx)
	if len(ctx.pushed) != 1 || ctx.pushed[0].String() != "7" {
		t.Fatalf("expected pushed \"7\", got %+v", ctx.pushed)
	}
}

func TestBuiltinsRegistersEveryNative(t *testing.T) {
	var out bytes.Buffer
	table := Builtins(&out)
	for _, name := range []string{"print", "assert", "parseInt", "toString"} {
		if _, ok := table[name]; !ok {
			t.Fatalf("expected %q to be registered", name)
		}
	}
}
