package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/WriteNaN/buzz/internal/codegen"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/lexer"
	"github.com/WriteNaN/buzz/internal/natives"
	"github.com/WriteNaN/buzz/internal/parser"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// compileAndRun lexes, parses, and generates src as one script, then
// runs it on a fresh VM, returning captured stdout and any RuntimeError.
// It fails the test outright on a lex/parse/codegen error, since these
// tests exist to exercise the VM, not the earlier stages.
func compileAndRun(t *testing.T, src string) (string, *RuntimeError) {
	t.Helper()
	fset := source.NewFileSet()
	fileID := fset.Add("test.bz", []byte(src))
	file := fset.Get(fileID)
	bag := diag.NewBag(50)
	reporter := &diag.BagReporter{Bag: bag}

	lx := lexer.New(file, reporter)
	in := types.NewInterner()
	p := parser.New(lx, in, fileID, parser.Options{Reporter: reporter, MaxErrors: 50})
	astFile := p.ParseFile("test.bz")
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}

	res := codegen.Generate(codegen.Input{
		File: astFile, Interner: in, GlobalNames: p.GlobalNames(),
	}, codegen.Options{})
	if bag.HasErrors() {
		t.Fatalf("codegen errors: %v", bag.Items())
	}

	var out bytes.Buffer
	m := New(res, in, natives.Builtins(&out), Options{Stdout: &out, Stderr: &out})
	err := m.Run()
	return out.String(), err
}

func TestCatchClauseReceivesThrownValue(t *testing.T) {
	src := `
fun boom() {
    throw "kaboom";
}
boom() catch (e) {
    print("caught: {e}");
}
`
	out, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "caught: kaboom" {
		t.Fatalf("expected caught message, got %q", out)
	}
}

func TestUnhandledThrowReportsUnhandledThrowCode(t *testing.T) {
	src := `
fun boom() {
    throw "kaboom";
}
boom();
`
	_, err := compileAndRun(t, src)
	if err == nil {
		t.Fatalf("expected an unhandled throw")
	}
	if err.Code != diag.RuntimeUnhandledThrow {
		t.Fatalf("expected RuntimeUnhandledThrow, got %v", err.Code)
	}
	if err.Thrown.String() != "kaboom" {
		t.Fatalf("expected thrown value kaboom, got %v", err.Thrown)
	}
}

func TestBareCatchWithoutParamStillRunsOnThrow(t *testing.T) {
	src := `
fun boom() {
    throw "kaboom";
}
boom() catch {
    print("recovered");
}
`
	out, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "recovered" {
		t.Fatalf("expected recovered, got %q", out)
	}
}

func TestClosureCapturesOuterLocalByReference(t *testing.T) {
	src := `
fun makeCounter() {
    int n = 0;
    fun increment() {
        n = n + 1;
        return n;
    }
    return increment;
}
Function counter = makeCounter();
print("{counter()}");
print("{counter()}");
print("{counter()}");
`
	out, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	got := strings.Fields(out)
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestTwoClosuresFromSameCallShareUpvalue(t *testing.T) {
	src := `
fun makePair() {
    int n = 0;
    fun get() { return n; }
    fun inc() { n = n + 1; }
    inc();
    inc();
    return get;
}
Function get = makePair();
print("{get()}");
`
	out, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("expected 2, got %q", out)
	}
}

func TestListAppendLenAndToListRoundTrip(t *testing.T) {
	src := `
[int] xs = [1, 2, 3];
xs.append(4);
print("{xs.len()}");
[int] ys = xs.toList();
ys.append(5);
print("{xs.len()} {ys.len()}");
`
	out, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "4" || lines[1] != "4 5" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMapLiteralLenCountsEntries(t *testing.T) {
	src := `
{str, int} m = {"a": 1, "b": 2};
print("{m.len()}");
`
	out, err := compileAndRun(t, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Fatalf("expected 2, got %q", out)
	}
}

func TestDivideByZeroThrowsRuntimeError(t *testing.T) {
	src := `int x = 1; int y = 0; int z = x / y; print("{z}");`
	_, err := compileAndRun(t, src)
	if err == nil {
		t.Fatalf("expected a divide-by-zero error")
	}
	if err.Code != diag.RuntimeDivideByZero {
		t.Fatalf("expected RuntimeDivideByZero, got %v", err.Code)
	}
}

func TestStackTraceRecordsInnermostFrameFirst(t *testing.T) {
	src := `
fun inner() {
    throw "deep";
}
fun outer() {
    inner();
}
outer();
`
	_, err := compileAndRun(t, src)
	if err == nil {
		t.Fatalf("expected an unhandled throw")
	}
	if len(err.Trace) < 2 {
		t.Fatalf("expected at least 2 stack frames, got %v", err.Trace)
	}
	if err.Trace[0].Function != "inner" {
		t.Fatalf("expected innermost frame to be inner, got %q", err.Trace[0].Function)
	}
}

func TestCycleLimitAbortsLongRunningLoop(t *testing.T) {
	fset := source.NewFileSet()
	src := `int i = 0; while (true) { i = i + 1; }`
	fileID := fset.Add("test.bz", []byte(src))
	file := fset.Get(fileID)
	bag := diag.NewBag(50)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, reporter)
	in := types.NewInterner()
	p := parser.New(lx, in, fileID, parser.Options{Reporter: reporter, MaxErrors: 50})
	astFile := p.ParseFile("test.bz")
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	res := codegen.Generate(codegen.Input{File: astFile, Interner: in, GlobalNames: p.GlobalNames()}, codegen.Options{})
	if bag.HasErrors() {
		t.Fatalf("codegen errors: %v", bag.Items())
	}
	var out bytes.Buffer
	m := New(res, in, nil, Options{Stdout: &out, Stderr: &out, CycleLimit: 10000})
	err := m.Run()
	if err == nil {
		t.Fatalf("expected the cycle limit to abort the loop")
	}
}

func TestNativeFunctionSeededIntoGlobalSlot(t *testing.T) {
	src := `print("hi from native");`
	fset := source.NewFileSet()
	fileID := fset.Add("test.bz", []byte(src))
	file := fset.Get(fileID)
	bag := diag.NewBag(50)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, reporter)
	in := types.NewInterner()
	p := parser.New(lx, in, fileID, parser.Options{Reporter: reporter, MaxErrors: 50})
	astFile := p.ParseFile("test.bz")
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	res := codegen.Generate(codegen.Input{File: astFile, Interner: in, GlobalNames: p.GlobalNames()}, codegen.Options{})
	if bag.HasErrors() {
		t.Fatalf("codegen errors: %v", bag.Items())
	}

	called := false
	native := &value.NativeObj{Name: "print", Arity: 1, Fn: func(ctx value.NativeContext) int {
		called = true
		return 0
	}}
	var out bytes.Buffer
	m := New(res, in, map[string]*value.NativeObj{"print": native}, Options{Stdout: &out, Stderr: &out})
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if !called {
		t.Fatalf("expected the seeded native to be invoked")
	}
}
