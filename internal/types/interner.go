package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins holds the TypeIDs of primitive types, interned once at
// startup so every compilation unit shares the same IDs.
type Builtins struct {
	Void    TypeID
	Bool    TypeID
	Integer TypeID
	Float   TypeID
	String  TypeID
	Range   TypeID
}

// Interner stores Type descriptors by TypeID and deduplicates the
// structural ones (primitives, list, map, range) by content so pointer
// equality of TypeIDs implies type equality everywhere (§3, §9 Open
// Question (a)).
type Interner struct {
	types         []Type
	index         map[typeKey]TypeID
	builtins      Builtins
	optionalOf    map[TypeID]TypeID
	nonOptionalOf map[TypeID]TypeID
}

// NewInterner returns an interner pre-seeded with the primitive types.
func NewInterner() *Interner {
	in := &Interner{
		index:         make(map[typeKey]TypeID, 64),
		optionalOf:    make(map[TypeID]TypeID),
		nonOptionalOf: make(map[TypeID]TypeID),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // TypeID 0 is NoTypeID
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Integer = in.Intern(Type{Kind: KindInteger})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Range = in.Intern(Type{Kind: KindRange})
	return in
}

// Builtins returns the primitive TypeIDs.
func (in *Interner) Builtins() Builtins { return in.builtins }

// typeKey is the comparable projection of a Type used for structural
// deduplication. Object/Enum/Function/Placeholder types carry pointers
// with nominal (not structural) identity and are never routed through
// this key; see NewObject/NewEnum/NewFunction/NewPlaceholder.
type typeKey struct {
	Kind     Kind
	Optional bool
	Item     TypeID
	Key      TypeID
	Value    TypeID
}

// Intern returns the stable TypeID for a structural descriptor
// (primitives, list, map, range), allocating one if t has not been seen
// before.
func (in *Interner) Intern(t Type) TypeID {
	switch t.Kind {
	case KindObject, KindObjectInstance, KindEnum, KindEnumInstance, KindFunction, KindPlaceholder:
		panic(fmt.Sprintf("types: %s must be interned via its dedicated constructor", t.Kind))
	}
	key := typeKey{Kind: t.Kind, Optional: t.Optional, Item: t.Item, Key: t.Key, Value: t.Value}
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.allocate(t, &key)
}

// NewObject allocates a fresh, uninterned TypeID for an object
// declaration. Objects are nominal: two declarations with identical
// fields are still distinct types.
func (in *Interner) NewObject(o *ObjectType) TypeID {
	return in.allocate(Type{Kind: KindObject, Object: o}, nil)
}

// NewObjectInstance allocates the KindObjectInstance peer of an object
// type.
func (in *Interner) NewObjectInstance(o *ObjectType) TypeID {
	return in.allocate(Type{Kind: KindObjectInstance, Object: o}, nil)
}

// NewEnum allocates a fresh TypeID for an enum declaration.
func (in *Interner) NewEnum(e *EnumType) TypeID {
	return in.allocate(Type{Kind: KindEnum, Enum: e}, nil)
}

// NewEnumInstance allocates the KindEnumInstance peer of an enum type.
func (in *Interner) NewEnumInstance(e *EnumType) TypeID {
	return in.allocate(Type{Kind: KindEnumInstance, Enum: e}, nil)
}

// NewFunction allocates a fresh TypeID describing a function's
// signature.
func (in *Interner) NewFunction(f *FunctionType) TypeID {
	return in.allocate(Type{Kind: KindFunction, Func: f}, nil)
}

// NewPlaceholder allocates a provisional TypeID for an unresolved name
// (§4.2 "Forward references and placeholders").
func (in *Interner) NewPlaceholder(p *PlaceholderType) TypeID {
	return in.allocate(Type{Kind: KindPlaceholder, Placeholder: p}, nil)
}

func (in *Interner) allocate(t Type, key *typeKey) TypeID {
	slot, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Sprintf("types: too many interned types: %v", err))
	}
	id := TypeID(slot)
	in.types = append(in.types, t)
	if key != nil {
		in.index[*key] = id
	}
	return id
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics on an invalid id; used once a type is known-valid.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// ResolvePlaceholder overwrites the placeholder at id in place with the
// descriptor resolved, so every existing TypeID reference to the
// placeholder transparently becomes a reference to resolved without
// being rewritten (§9 "placeholders are resolved in place by swapping
// the resolved variant").
func (in *Interner) ResolvePlaceholder(id TypeID, resolved TypeID) {
	rt := in.MustLookup(resolved)
	in.types[id] = rt
}

// IsPlaceholder reports whether id currently names an unresolved
// placeholder.
func (in *Interner) IsPlaceholder(id TypeID) bool {
	t, ok := in.Lookup(id)
	return ok && t.Kind == KindPlaceholder
}

// PendingPlaceholders returns every TypeID still unresolved, in
// allocation order. A non-empty result at the end of compilation is a
// "Unknown type" error (§4.2, §7 ResolutionError).
func (in *Interner) PendingPlaceholders() []TypeID {
	var out []TypeID
	for id, t := range in.types {
		if t.Kind == KindPlaceholder {
			out = append(out, TypeID(id))
		}
	}
	return out
}

// Equal reports whether a and b name the same type. Optionality counts:
// a type and its optional peer have different TypeIDs and are not Equal.
func (in *Interner) Equal(a, b TypeID) bool {
	return a == b
}

func isNominal(k Kind) bool {
	switch k {
	case KindObject, KindObjectInstance, KindEnum, KindEnumInstance, KindFunction, KindPlaceholder:
		return true
	default:
		return false
	}
}

// Optional returns the TypeID for the optional ('?') peer of id, per
// §4.2's `??`/`!` typing rules. Nominal types (objects, enums,
// functions, placeholders) are cached by identity rather than re-routed
// through Intern's structural key.
func (in *Interner) Optional(id TypeID) TypeID {
	if id == NoTypeID {
		return NoTypeID
	}
	t := in.MustLookup(id)
	if t.Optional {
		return id
	}
	if !isNominal(t.Kind) {
		return in.Intern(t.AsOptional())
	}
	if cached, ok := in.optionalOf[id]; ok {
		return cached
	}
	newID := in.allocate(t.AsOptional(), nil)
	in.optionalOf[id] = newID
	in.nonOptionalOf[newID] = id
	return newID
}

// NonOptional returns the TypeID for the non-optional peer of id, used
// by force-unwrap (`!`) and `??` to compute their result type.
func (in *Interner) NonOptional(id TypeID) TypeID {
	if id == NoTypeID {
		return NoTypeID
	}
	t := in.MustLookup(id)
	if !t.Optional {
		return id
	}
	if !isNominal(t.Kind) {
		return in.Intern(t.NonOptional())
	}
	if cached, ok := in.nonOptionalOf[id]; ok {
		return cached
	}
	newID := in.allocate(t.NonOptional(), nil)
	in.nonOptionalOf[id] = newID
	in.optionalOf[newID] = id
	return newID
}
