package vm

import "github.com/WriteNaN/buzz/internal/value"

// collect runs one tri-color mark-and-sweep pass over the heap (§4.5
// "Garbage collector"). Roots are the value stack, every call frame's
// closure, the globals array, the open-upvalue list, and the string
// intern table; the type registry is not a root since types.Interner
// owns its own, separate, non-collected lifetime (§4.5).
func (vm *VM) collect() {
	var gray []*value.Object

	mark := func(o *value.Object) {
		if o == nil || o.Color != value.White {
			return
		}
		o.Color = value.Gray
		gray = append(gray, o)
	}
	markValue := func(v value.Value) {
		if v.Kind == value.KObject {
			mark(v.Obj)
		}
	}

	for _, v := range vm.Stack {
		markValue(v)
	}
	for i := range vm.Frames {
		f := &vm.Frames[i]
		if f.Closure != nil {
			markClosureRoot(f.Closure, mark)
		}
		for _, c := range f.Catches {
			markClosureRoot(c, mark)
		}
	}
	for _, v := range vm.Globals {
		markValue(v)
	}
	for u := vm.openUpvalues; u != nil; u = u.Next {
		markValue(u.Get())
	}
	for _, o := range vm.strings {
		mark(o)
	}

	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		o.Color = value.Black
		vm.blacken(o, mark)
	}

	vm.sweep()
	vm.heap.grow()
}

// markClosureRoot marks a closure object header itself is not tracked
// (closures referenced only from a frame have no heap Object wrapper
// until they are pushed as a Value), so this instead marks the upvalues
// and constant objects the closure's function chunk references.
func markClosureRoot(c *value.ClosureObj, mark func(*value.Object)) {
	for _, uv := range c.Upvalues {
		if uv.IsOpen() {
			continue // open upvalues are reached through the stack itself
		}
		if uv.Closed.Kind == value.KObject {
			mark(uv.Closed.Obj)
		}
	}
	if c.Function == nil {
		return
	}
	for _, k := range c.Function.Chunk.Constants {
		if k.Kind == value.KObject {
			mark(k.Obj)
		}
	}
}

// blacken marks every Object o directly references, growing the gray
// worklist with anything still White.
func (vm *VM) blacken(o *value.Object, mark func(*value.Object)) {
	switch o.Kind {
	case value.ObjList:
		for _, v := range o.List.Items {
			if v.Kind == value.KObject {
				mark(v.Obj)
			}
		}
	case value.ObjMap:
		for _, e := range o.Map.Entries {
			if e.Key.Kind == value.KObject {
				mark(e.Key.Obj)
			}
			if e.Value.Kind == value.KObject {
				mark(e.Value.Obj)
			}
		}
	case value.ObjClosure:
		markClosureRoot(o.Closure, mark)
	case value.ObjUpvalue:
		if o.Upvalue != nil && o.Upvalue.Closed.Kind == value.KObject {
			mark(o.Upvalue.Closed.Obj)
		}
	case value.ObjInstance:
		for _, v := range o.Instance.Fields {
			if v.Kind == value.KObject {
				mark(v.Obj)
			}
		}
		if o.Instance.Class != nil {
			for _, v := range o.Instance.Class.StaticFields {
				if v.Kind == value.KObject {
					mark(v.Obj)
				}
			}
		}
	case value.ObjEnumInstance:
		// Enum and case values are compile-time constants, outside the
		// collected heap; nothing further to mark.
	}
}

// sweep walks the heap's intrusive allocation list, freeing (unlinking)
// every object left White and resetting survivors back to White for the
// next cycle.
func (vm *VM) sweep() {
	var prev *value.Object
	cur := vm.heap.head
	for cur != nil {
		next := cur.Next
		if cur.Color == value.Black {
			cur.Color = value.White
			prev = cur
		} else {
			if prev == nil {
				vm.heap.head = next
			} else {
				prev.Next = next
			}
			if cur.Kind == value.ObjString {
				delete(vm.strings, cur.Str.Chars)
			}
		}
		cur = next
	}
	vm.heap.allocated = 0
}
