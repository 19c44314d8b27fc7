package types

import "testing"

func TestPrimitivesInternToStableIDs(t *testing.T) {
	in := NewInterner()
	a := in.Intern(Type{Kind: KindInteger})
	b := in.Intern(Type{Kind: KindInteger})
	if a != b {
		t.Fatalf("expected identical TypeIDs for two int interns, got %d and %d", a, b)
	}
	if a != in.Builtins().Integer {
		t.Fatalf("expected int intern to match Builtins().Integer")
	}
}

func TestListStructuralInterning(t *testing.T) {
	in := NewInterner()
	intID := in.Builtins().Integer
	a := in.Intern(Type{Kind: KindList, Item: intID})
	b := in.Intern(Type{Kind: KindList, Item: intID})
	if a != b {
		t.Fatalf("expected [int] to intern to one TypeID, got %d and %d", a, b)
	}
	strID := in.Builtins().String
	c := in.Intern(Type{Kind: KindList, Item: strID})
	if a == c {
		t.Fatalf("expected [int] and [str] to be distinct TypeIDs")
	}
}

func TestOptionalPeerRoundTrips(t *testing.T) {
	in := NewInterner()
	intID := in.Builtins().Integer
	optInt := in.Optional(intID)
	if optInt == intID {
		t.Fatalf("expected optional peer to differ from base type")
	}
	if in.NonOptional(optInt) != intID {
		t.Fatalf("expected NonOptional(Optional(int)) == int")
	}
	if in.Optional(optInt) != optInt {
		t.Fatalf("expected Optional() on an already-optional type to be a no-op")
	}
}

func TestPlaceholderResolvesInPlace(t *testing.T) {
	in := NewInterner()
	ph := in.NewPlaceholder(&PlaceholderType{Name: "A"})
	if !in.IsPlaceholder(ph) {
		t.Fatalf("expected fresh placeholder to report IsPlaceholder")
	}
	obj := in.NewObject(&ObjectType{Name: "A"})
	in.ResolvePlaceholder(ph, obj)
	if in.IsPlaceholder(ph) {
		t.Fatalf("expected placeholder to be resolved in place")
	}
	resolved := in.MustLookup(ph)
	if resolved.Kind != KindObject || resolved.Object.Name != "A" {
		t.Fatalf("expected placeholder slot to now describe object A, got %+v", resolved)
	}
	if len(in.PendingPlaceholders()) != 0 {
		t.Fatalf("expected no pending placeholders after resolution")
	}
}

func TestPendingPlaceholdersReportsUnresolved(t *testing.T) {
	in := NewInterner()
	in.NewPlaceholder(&PlaceholderType{Name: "Unknown"})
	if got := len(in.PendingPlaceholders()); got != 1 {
		t.Fatalf("expected one pending placeholder, got %d", got)
	}
}
