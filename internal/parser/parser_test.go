package parser

import (
	"testing"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/lexer"
	"github.com/WriteNaN/buzz/internal/source"
	"github.com/WriteNaN/buzz/internal/testkit"
	"github.com/WriteNaN/buzz/internal/types"
)

func parseSource(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.bzz", []byte(src))
	file := fs.Get(id)
	bag := diag.NewBag(0)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, reporter)
	in := types.NewInterner()
	f := ParseFile(lx, in, id, "test.bzz", Options{Reporter: reporter})
	return f, bag
}

func TestParseVarDecl(t *testing.T) {
	f, bag := parseSource(t, `int x = 1 + 2;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if len(f.Stmts) != 1 || f.Stmts[0].Kind != ast.StmtVarDecl {
		t.Fatalf("expected one StmtVarDecl, got %+v", f.Stmts)
	}
	if f.Stmts[0].Name != "x" {
		t.Fatalf("expected variable name 'x', got %q", f.Stmts[0].Name)
	}
}

func TestParseForEachRange(t *testing.T) {
	f, bag := parseSource(t, `int s = 0; foreach (int n in 0..10) { s = s + n; } print("{s}");`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if len(f.Stmts) != 3 {
		t.Fatalf("expected 3 top-level statements, got %d", len(f.Stmts))
	}
	fe := f.Stmts[1]
	if fe.Kind != ast.StmtForEach {
		t.Fatalf("expected StmtForEach, got %v", fe.Kind)
	}
	if fe.ValueName != "n" || fe.KeyName != "" {
		t.Fatalf("expected single loop variable 'n', got key=%q value=%q", fe.KeyName, fe.ValueName)
	}
	if fe.Iterable.Kind != ast.ExprRange {
		t.Fatalf("expected range iterable, got %v", fe.Iterable.Kind)
	}
}

func TestParseFunctionWithDefaultArg(t *testing.T) {
	f, bag := parseSource(t, `fun add(int a, int b = 1) > int { return a + b; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	fn := f.Stmts[0].Function
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("expected function 'add' with 2 params, got %+v", fn)
	}
	if fn.Params[1].Default == nil {
		t.Fatalf("expected second parameter to carry a default-value AST fragment")
	}
}

func TestParseObjectDeclWithSelfReference(t *testing.T) {
	f, bag := parseSource(t, `object Node { int value = 0; Node? next = null; }`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	obj := f.Stmts[0].Object
	if obj.Name != "Node" || len(obj.Fields) != 2 {
		t.Fatalf("expected object 'Node' with 2 fields, got %+v", obj)
	}
	if obj.Fields[1].Name != "next" {
		t.Fatalf("expected second field 'next', got %q", obj.Fields[1].Name)
	}
}

func TestObjectInitMissingFieldIsReported(t *testing.T) {
	_, bag := parseSource(t, `
object A { int x; }
A a = A{};
`)
	if !bag.HasErrors() {
		t.Fatalf("expected an error for an ObjectInit omitting a default-less field")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeFieldNotInitialized {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeFieldNotInitialized, got %+v", bag.Items())
	}
}

func TestObjectFieldDefaultSharingScenario(t *testing.T) {
	_, bag := parseSource(t, `
object A { [int] xs = [1, 2, 3] }
A a = A{};
A b = A{};
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
}

func TestInterpolatedString(t *testing.T) {
	f, bag := parseSource(t, `int s = 45; print("{s}");`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	call := f.Stmts[1].Expr
	if call.Kind != ast.ExprCall {
		t.Fatalf("expected a call expression, got %v", call.Kind)
	}
	arg := call.Args[0].Value
	if arg.Kind != ast.ExprString || len(arg.Parts) != 1 {
		t.Fatalf("expected an interpolated string with one part, got %+v", arg)
	}
}

func TestNamedArgumentBinding(t *testing.T) {
	f, bag := parseSource(t, `fun greet(str name) { } greet(name: "a");`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	call := f.Stmts[1].Expr
	if len(call.Args) != 1 || call.Args[0].Name != "name" {
		t.Fatalf("expected one named argument 'name', got %+v", call.Args)
	}
}

func TestUnknownArgNameIsReported(t *testing.T) {
	_, bag := parseSource(t, `fun greet(str name) { } greet(nope: "a");`)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.TypeUnknownArgName {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TypeUnknownArgName, got %+v", bag.Items())
	}
}

func TestParsedStatementSpansSatisfyInvariants(t *testing.T) {
	fs := source.NewFileSet()
	src := `int x = 1 + 2; fun greet(str name) { print(name); } greet("buzz");`
	id := fs.Add("test.bzz", []byte(src))
	sf := fs.Get(id)
	bag := diag.NewBag(0)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(sf, reporter)
	in := types.NewInterner()
	f := ParseFile(lx, in, id, "test.bzz", Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	if err := testkit.CheckSpanInvariants(f, sf); err != nil {
		t.Fatalf("span invariants violated: %v", err)
	}
}
