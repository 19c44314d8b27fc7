package parser

import "github.com/WriteNaN/buzz/internal/types"

// maxLocals and maxUpvalues mirror the Lua 5.x closure model's
// fixed-size per-frame arrays (§4.2 "Scoping").
const (
	maxLocals   = 255
	maxUpvalues = 255
)

type local struct {
	name  string
	typ   types.TypeID
	depth int
}

type upvalueRef struct {
	name    string
	index   int // slot in the enclosing frame (if isLocal) or upvalue index (if not)
	isLocal bool
	typ     types.TypeID
}

// frame is one parser-time activation record: a function's locals and
// the upvalues it captures from enclosing frames, exactly the resolution
// structure the code generator later mirrors at runtime (§4.2, §9
// "Upvalue linkage").
type frame struct {
	enclosing *frame
	kind      types.FunctionKind
	locals    []local
	upvalues  []upvalueRef
	depth     int
}

func newFrame(enclosing *frame, kind types.FunctionKind) *frame {
	return &frame{enclosing: enclosing, kind: kind}
}

// beginScope/endScope track block nesting so endScope can discard the
// locals declared inside the block that just closed.
func (f *frame) beginScope() { f.depth++ }

func (f *frame) endScope() {
	f.depth--
	for len(f.locals) > 0 && f.locals[len(f.locals)-1].depth > f.depth {
		f.locals = f.locals[:len(f.locals)-1]
	}
}

// declareLocal adds name as a new local in the current scope, returning
// its slot index, or false if the frame is full (§4.2 "up to 255
// locals").
func (f *frame) declareLocal(name string, typ types.TypeID) (int, bool) {
	if len(f.locals) >= maxLocals {
		return 0, false
	}
	slot := len(f.locals)
	f.locals = append(f.locals, local{name: name, typ: typ, depth: f.depth})
	return slot, true
}

// resolveLocal looks up name among this frame's locals, last declared
// first so shadowing in nested blocks works.
func (f *frame) resolveLocal(name string) (int, types.TypeID, bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return i, f.locals[i].typ, true
		}
	}
	return 0, types.NoTypeID, false
}

// resolveUpvalue walks enclosing frames for name, inserting an upvalue
// record in every intermediate frame along the way — the Lua 5.x closure
// model named in §4.2.
func (f *frame) resolveUpvalue(name string) (int, types.TypeID, bool) {
	if f.enclosing == nil {
		return 0, types.NoTypeID, false
	}
	if slot, typ, ok := f.enclosing.resolveLocal(name); ok {
		idx, added := f.addUpvalue(name, slot, true, typ)
		return idx, typ, added
	}
	if idx, typ, ok := f.enclosing.resolveUpvalue(name); ok {
		i, added := f.addUpvalue(name, idx, false, typ)
		return i, typ, added
	}
	return 0, types.NoTypeID, false
}

func (f *frame) addUpvalue(name string, index int, isLocal bool, typ types.TypeID) (int, bool) {
	for i, uv := range f.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i, true
		}
	}
	if len(f.upvalues) >= maxUpvalues {
		return 0, false
	}
	f.upvalues = append(f.upvalues, upvalueRef{name: name, index: index, isLocal: isLocal, typ: typ})
	return len(f.upvalues) - 1, true
}
