package value

// UpvalueObj is either "open" (Location points into a live VM stack
// slot) or "closed" (it owns Closed directly) — exactly the Lua 5.x
// closure model (§3 "Upvalue", §9 "Upvalue linkage"). Open upvalues are
// kept on an intrusive list sorted by StackIndex so closing every
// upvalue above a departing frame is linear in the closed count.
type UpvalueObj struct {
	Location   *Value
	Closed     Value
	StackIndex int
	Next       *UpvalueObj
}

// IsOpen reports whether the upvalue still points into the stack.
func (u *UpvalueObj) IsOpen() bool { return u.Location != nil }

// Get returns the upvalue's current value, open or closed.
func (u *UpvalueObj) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

// Set writes through to the stack slot while open, or to the owned
// value once closed.
func (u *UpvalueObj) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Close copies the current stack value into the upvalue and detaches it
// from the stack, per the §8 invariant "closed exactly when no VM stack
// slot references it".
func (u *UpvalueObj) Close() {
	u.Closed = *u.Location
	u.Location = nil
}
