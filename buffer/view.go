package buffer

// View is a slice of a buffer, with convenience methods
type View []byte

// NewView allocates a new buffer and returns an initialized view that convers
// the whole buffer
func NewView(size int) View {
	return make(View, size)
}

// TrimFront removes the first "count" bytes from the visible section of the
// buffer
func (v *View) TrimFront(count int) {
	*v = (*v)[count:]
}

// Clone returns a new View holding a copy of v's bytes. Segment payloads are
// cloned out of the substrate's receive buffer before being queued, so later
// reuse of that buffer by the caller can't corrupt queued data.
func (v View) Clone() View {
	c := make(View, len(v))
	copy(c, v)
	return c
}
