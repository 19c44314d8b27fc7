package value

import "testing"

func TestEqualStringsByContent(t *testing.T) {
	a := NewObject(&Object{Kind: ObjString, Str: &StringObj{Chars: "hi"}})
	b := NewObject(&Object{Kind: ObjString, Str: &StringObj{Chars: "hi"}})
	if !Equal(a, b) {
		t.Fatalf("expected equal strings with identical content to compare equal")
	}
}

func TestListCloneIsIndependent(t *testing.T) {
	orig := &ListObj{Items: []Value{NewInt(1), NewInt(2)}}
	clone := orig.Clone()
	clone.Items[0] = NewInt(99)
	if orig.Items[0].Int == 99 {
		t.Fatalf("expected clone mutation not to affect original")
	}
}

func TestMapPreservesInsertionOrderAndOverwrites(t *testing.T) {
	m := NewMap(0, 0)
	m.Set(NewInt(1), NewInt(10))
	m.Set(NewInt(2), NewInt(20))
	m.Set(NewInt(1), NewInt(100))
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries after overwrite, got %d", m.Len())
	}
	if m.Entries[0].Key.Int != 1 || m.Entries[0].Value.Int != 100 {
		t.Fatalf("expected first entry to be overwritten key 1 -> 100, got %+v", m.Entries[0])
	}
	if m.Entries[1].Key.Int != 2 {
		t.Fatalf("expected insertion order preserved for key 2")
	}
}

func TestMapMergeIsRightBiased(t *testing.T) {
	a := NewMap(0, 0)
	a.Set(NewInt(1), NewInt(1))
	b := NewMap(0, 0)
	b.Set(NewInt(1), NewInt(2))
	merged := a.Merge(b)
	v, ok := merged.Get(NewInt(1))
	if !ok || v.Int != 2 {
		t.Fatalf("expected right-biased merge to keep b's value, got %+v ok=%v", v, ok)
	}
}

func TestRangeDirection(t *testing.T) {
	up := RangeObj{Low: 0, High: 10}
	if up.Step() != 1 {
		t.Fatalf("expected ascending range to step +1")
	}
	down := RangeObj{Low: 10, High: 0}
	if down.Step() != -1 {
		t.Fatalf("expected descending range to step -1")
	}
}

func TestUpvalueOpenCloseRoundTrip(t *testing.T) {
	slot := NewInt(42)
	u := &UpvalueObj{Location: &slot}
	if !u.IsOpen() {
		t.Fatalf("expected fresh upvalue to be open")
	}
	if u.Get().Int != 42 {
		t.Fatalf("expected open upvalue to read through to stack slot")
	}
	u.Close()
	if u.IsOpen() {
		t.Fatalf("expected Close to detach from the stack slot")
	}
	slot = NewInt(7) // mutating the old slot must not affect the closed value
	if u.Get().Int != 42 {
		t.Fatalf("expected closed upvalue to retain its copied value, got %d", u.Get().Int)
	}
}
