package importcache

import (
	"path/filepath"
	"testing"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

func simpleScript() *value.FunctionObj {
	return &value.FunctionObj{
		Name:       "",
		Arity:      0,
		ParamNames: nil,
		Defaults:   nil,
		Type:       types.TypeID(0),
		Kind:       types.FnScript,
		Chunk: &value.Chunk{
			Code: []bytecode.Instruction{
				{Op: bytecode.OpConstant, Arg: 0, Line: 1},
				{Op: bytecode.OpReturn, Line: 1},
			},
			Constants: []value.Value{value.NewInt(42)},
		},
	}
}

func TestPutThenGetRoundTripsScriptAndGlobals(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key([]byte("int x = 42;"))
	if err := c.Put(key, Entry{Script: simpleScript(), GlobalNames: []string{"x"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if len(entry.GlobalNames) != 1 || entry.GlobalNames[0] != "x" {
		t.Fatalf("expected GlobalNames [x], got %v", entry.GlobalNames)
	}
	if got := len(entry.Script.Chunk.Code); got != 2 {
		t.Fatalf("expected 2 instructions, got %d", got)
	}
	if entry.Script.Chunk.Code[0].Op != bytecode.OpConstant {
		t.Fatalf("expected first instruction to be CONSTANT, got %s", entry.Script.Chunk.Code[0].Op)
	}
	if entry.Script.Chunk.Constants[0].Int != 42 {
		t.Fatalf("expected constant 42, got %d", entry.Script.Chunk.Constants[0].Int)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := c.Get(Key([]byte("nothing stored"))); ok {
		t.Fatalf("expected a cache miss")
	}
}

func TestPutSkipsFunctionsWithDefaults(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	script := simpleScript()
	script.Defaults = []*ast.Expr{{Kind: ast.ExprInt, IntValue: 1}}
	script.ParamNames = []string{"n"}
	script.Arity = 1

	key := Key([]byte("fun f(int n = 1) {}"))
	if err := c.Put(key, Entry{Script: script}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatalf("expected Put to skip a function carrying a default expression")
	}
}
