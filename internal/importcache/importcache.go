// Package importcache persists compiled Function chunks to disk, keyed
// by the importing file's content hash, so a process that imports the
// same module from several scripts in one run — or across separate
// `buzz` invocations — compiles it once (§4.2 "imports... cached by
// canonical path", extended here from in-process to on-disk).
//
// A cached entry is only usable when nothing in the function (or any
// function nested inside it) carries a default-value expression: a
// default is an AST fragment (internal/codegen's CompileExpr thunk
// source), and the cache stores bytecode only, not AST, so there is
// nothing to recompile the fragment from on load. The same holds for a
// class, enum or type constant, which the wire format cannot represent.
// Put silently skips any chunk that fails these checks; the caller falls
// back to its own live compile.
package importcache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/WriteNaN/buzz/internal/ast"
	"github.com/WriteNaN/buzz/internal/bytecode"
	"github.com/WriteNaN/buzz/internal/types"
	"github.com/WriteNaN/buzz/internal/value"
)

// Cache stores and retrieves compiled entries under dir, one file per
// content hash.
type Cache struct {
	dir string
}

// Open returns a Cache rooted at dir, creating it if necessary.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Key hashes source to the content key Get/Put address entries by.
func Key(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".buzzc")
}

// Entry is one cached compilation unit: the top-level script Function
// plus the slot->name table the VM needs to size and seed its globals
// array (codegen.Result carries the same pair for a live compile).
type Entry struct {
	Script      *value.FunctionObj
	GlobalNames []string
}

type wireEntry struct {
	Script      *wireFunction
	GlobalNames []string
}

// Get returns the cached Entry for key, or ok=false on a cache miss
// (including "never stored", "unreadable", or "corrupt").
func (c *Cache) Get(key string) (entry Entry, ok bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return Entry{}, false
	}
	var w wireEntry
	if err := msgpack.Unmarshal(raw, &w); err != nil {
		return Entry{}, false
	}
	return Entry{Script: w.Script.toRuntime(), GlobalNames: w.GlobalNames}, true
}

// Put stores entry under key if its script (and everything it
// references) is cacheable; otherwise it is a no-op.
func (c *Cache) Put(key string, entry Entry) error {
	wf, ok := fromRuntime(entry.Script)
	if !ok {
		return nil
	}
	raw, err := msgpack.Marshal(wireEntry{Script: wf, GlobalNames: entry.GlobalNames})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), raw, 0o644)
}

// ---- wire format ---------------------------------------------------

type wireInstruction struct {
	Op   uint8
	Arg  uint32
	Arg2 uint32
	Line int
}

type wireUpvalueRef struct {
	IsLocal bool
	Index   uint32
}

// wireValue mirrors value.Value for the subset of kinds a cached
// constant pool can hold: primitives, interned strings, and nested
// function constants (Put refuses any chunk holding a class, enum or
// type constant, so those never need representation here).
type wireValue struct {
	Kind  uint8
	Bool  bool
	Int   int32
	Float float64
	Str   string
	Func  *wireFunction
}

type wireFunction struct {
	Name         string
	Arity        int
	UpvalueCount int
	ParamNames   []string
	ParamTypes   []uint32
	Type         uint32
	Kind         uint8
	Code         []wireInstruction
	Constants    []wireValue
	UpvalueRefs  [][]wireUpvalueRef
}

func fromRuntime(fn *value.FunctionObj) (*wireFunction, bool) {
	if hasDefaults(fn) || hasOpaqueConstants(fn) {
		return nil, false
	}
	return toWireFunction(fn), true
}

// hasOpaqueConstants reports whether fn, or a function nested in it,
// holds an object constant other than a string or a function.
func hasOpaqueConstants(fn *value.FunctionObj) bool {
	for _, k := range fn.Chunk.Constants {
		if k.Kind != value.KObject || k.Obj == nil || k.Obj.Kind == value.ObjString {
			continue
		}
		if k.Obj.Kind != value.ObjFunction || hasOpaqueConstants(k.Obj.Func) {
			return true
		}
	}
	return false
}

func hasDefaults(fn *value.FunctionObj) bool {
	for _, d := range fn.Defaults {
		if d != nil {
			return true
		}
	}
	for _, k := range fn.Chunk.Constants {
		if k.Kind == value.KObject && k.Obj != nil && k.Obj.Kind == value.ObjFunction {
			if hasDefaults(k.Obj.Func) {
				return true
			}
		}
	}
	return false
}

func toWireFunction(fn *value.FunctionObj) *wireFunction {
	w := &wireFunction{
		Name:         fn.Name,
		Arity:        fn.Arity,
		UpvalueCount: fn.UpvalueCount,
		ParamNames:   fn.ParamNames,
		Type:         uint32(fn.Type),
		Kind:         uint8(fn.Kind),
	}
	for _, t := range fn.ParamTypes {
		w.ParamTypes = append(w.ParamTypes, uint32(t))
	}
	for _, ins := range fn.Chunk.Code {
		w.Code = append(w.Code, wireInstruction{Op: uint8(ins.Op), Arg: ins.Arg, Arg2: ins.Arg2, Line: ins.Line})
	}
	for _, k := range fn.Chunk.Constants {
		w.Constants = append(w.Constants, toWireValue(k))
	}
	for _, refs := range fn.Chunk.UpvalueRefs {
		var wrefs []wireUpvalueRef
		for _, r := range refs {
			wrefs = append(wrefs, wireUpvalueRef{IsLocal: r.IsLocal, Index: r.Index})
		}
		w.UpvalueRefs = append(w.UpvalueRefs, wrefs)
	}
	return w
}

func toWireValue(v value.Value) wireValue {
	switch v.Kind {
	case value.KBool:
		return wireValue{Kind: uint8(v.Kind), Bool: v.Bool}
	case value.KInt:
		return wireValue{Kind: uint8(v.Kind), Int: v.Int}
	case value.KFloat:
		return wireValue{Kind: uint8(v.Kind), Float: v.Float}
	case value.KObject:
		if v.Obj == nil {
			return wireValue{Kind: uint8(value.KNull)}
		}
		if v.Obj.Kind == value.ObjString {
			return wireValue{Kind: uint8(v.Kind), Str: v.Obj.Str.Chars}
		}
		if v.Obj.Kind == value.ObjFunction {
			return wireValue{Kind: uint8(v.Kind), Func: toWireFunction(v.Obj.Func)}
		}
	}
	return wireValue{Kind: uint8(value.KNull)}
}

func (w *wireFunction) toRuntime() *value.FunctionObj {
	fn := &value.FunctionObj{
		Name:         w.Name,
		Arity:        w.Arity,
		UpvalueCount: w.UpvalueCount,
		ParamNames:   w.ParamNames,
		Type:         types.TypeID(w.Type),
		Kind:         types.FunctionKind(w.Kind),
		Defaults:     make([]*ast.Expr, len(w.ParamNames)),
	}
	for _, t := range w.ParamTypes {
		fn.ParamTypes = append(fn.ParamTypes, types.TypeID(t))
	}
	chunk := &value.Chunk{}
	for _, ins := range w.Code {
		chunk.Code = append(chunk.Code, bytecode.Instruction{Op: bytecode.OpCode(ins.Op), Arg: ins.Arg, Arg2: ins.Arg2, Line: ins.Line})
	}
	for _, k := range w.Constants {
		chunk.Constants = append(chunk.Constants, k.toRuntime())
	}
	for _, refs := range w.UpvalueRefs {
		var rs []bytecode.UpvalueRef
		for _, r := range refs {
			rs = append(rs, bytecode.UpvalueRef{IsLocal: r.IsLocal, Index: r.Index})
		}
		chunk.UpvalueRefs = append(chunk.UpvalueRefs, rs)
	}
	fn.Chunk = chunk
	return fn
}

func (w wireValue) toRuntime() value.Value {
	switch value.Kind(w.Kind) {
	case value.KBool:
		return value.NewBool(w.Bool)
	case value.KInt:
		return value.NewInt(w.Int)
	case value.KFloat:
		return value.NewFloat(w.Float)
	case value.KObject:
		if w.Func != nil {
			return value.NewObject(&value.Object{Kind: value.ObjFunction, Func: w.Func.toRuntime()})
		}
		return value.NewObject(&value.Object{Kind: value.ObjString, Str: &value.StringObj{Chars: w.Str}})
	default:
		return value.Null
	}
}
