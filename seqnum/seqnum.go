// Package seqnum provides wrap-safe arithmetic on cTCP sequence numbers.
//
// Sequence numbers live in a 32-bit space that wraps around; comparisons
// must be done on the signed difference between two values rather than on
// their raw unsigned magnitude, or a connection that runs long enough to
// wrap would see every comparison invert. See spec.md section 9.
package seqnum

// Value is a sequence or acknowledgement number.
type Value uint32

// Size is a difference between two Values, or a window/segment length.
type Size uint32

// Add returns v+delta, wrapping around the 32-bit space as needed.
func (v Value) Add(delta Size) Value {
	return v + Value(delta)
}

// Size returns the (wrap-safe) number of values between v and w, assuming
// w comes at or after v in sequence-number order.
func (v Value) Size(w Value) Size {
	return Size(w - v)
}

// LessThan reports whether v precedes w in sequence-space order, using a
// signed-delta comparison so it remains correct across wraparound.
func (v Value) LessThan(w Value) bool {
	return int32(v-w) < 0
}

// LessThanEq reports whether v precedes or equals w.
func (v Value) LessThanEq(w Value) bool {
	return v == w || v.LessThan(w)
}

// GreaterThan reports whether v follows w in sequence-space order.
func (v Value) GreaterThan(w Value) bool {
	return w.LessThan(v)
}

// GreaterThanEq reports whether v follows or equals w.
func (v Value) GreaterThanEq(w Value) bool {
	return v == w || v.GreaterThan(w)
}

// InRange reports whether v lies in the half-open interval [a, b).
func (v Value) InRange(a, b Value) bool {
	return v.GreaterThanEq(a) && v.LessThan(b)
}
