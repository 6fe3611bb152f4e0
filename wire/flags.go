package wire

import "strings"

// Flags is the 32-bit flags word of a segment header. Per spec.md section 9's
// design note, only two bits are meaningful; it is modeled as a small bit-set
// rather than as a raw integer so callers write Flags.Has(FlagACK) instead of
// bit-masking by hand at every call site.
type Flags uint32

const (
	// FlagACK marks ackno as valid. Every segment this engine emits sets it.
	FlagACK Flags = 1 << iota
	// FlagFIN marks the sender as having no more data to send; it consumes
	// one byte of sequence space.
	FlagFIN

	flagsMask = FlagACK | FlagFIN
)

// Mask clears all reserved bits, keeping only ACK and FIN.
func (f Flags) Mask() Flags {
	return f & flagsMask
}

// Has reports whether all bits in want are set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// With returns f with the given bits set.
func (f Flags) With(bits Flags) Flags {
	return f | bits
}

func (f Flags) String() string {
	if f&flagsMask == 0 {
		return "-"
	}
	var b strings.Builder
	if f.Has(FlagACK) {
		b.WriteByte('A')
	}
	if f.Has(FlagFIN) {
		b.WriteByte('F')
	}
	return b.String()
}
