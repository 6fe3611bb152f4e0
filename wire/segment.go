// Package wire implements the cTCP segment wire format: a fixed 18-byte
// header followed by 0..MSS payload bytes, all integer fields big-endian,
// checksummed with the standard 16-bit Internet checksum. See spec.md
// section 3 and section 4.1.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/wrights1/ctcp/buffer"
	"github.com/wrights1/ctcp/seqnum"
)

// HeaderSize is the fixed size, in bytes, of a cTCP segment header.
const HeaderSize = 18

// ErrShortBuffer is returned by Decode when fewer bytes were delivered than
// HeaderSize, so no header could possibly be present.
var ErrShortBuffer = errors.New("wire: buffer shorter than segment header")

// ErrChecksum is returned by Decode when the checksum stamped in the segment
// does not match the checksum computed over the received bytes.
var ErrChecksum = errors.New("wire: checksum mismatch")

// ErrLength is returned by Decode when the segment's len field is smaller
// than HeaderSize or exceeds the number of bytes actually delivered by the
// substrate. Bytes delivered beyond len are ignored, not rejected.
var ErrLength = errors.New("wire: len field exceeds received bytes")

const (
	offSeq    = 0
	offAck    = 4
	offLen    = 8
	offFlags  = 10
	offWindow = 14
	offCksum  = 16
)

// Segment is the decoded, host-order representation of a cTCP segment.
type Segment struct {
	Seqno  seqnum.Value
	Ackno  seqnum.Value
	Flags  Flags
	Window uint16
	Data   buffer.View
}

// Len returns the total wire length (header + payload) this segment would
// encode to.
func (s Segment) Len() int {
	return HeaderSize + len(s.Data)
}

func (s Segment) String() string {
	return fmt.Sprintf("seq=%d ack=%d flags=%s win=%d len=%d", s.Seqno, s.Ackno, s.Flags, s.Window, len(s.Data))
}

// Encode writes s into a freshly allocated buffer sized HeaderSize+len(s.Data),
// computing the checksum over the assembled bytes with the cksum field held
// at zero during the compute pass, then stamping the result into the header.
func Encode(s Segment) []byte {
	buf := buffer.NewView(s.Len())
	hdr := buf[:HeaderSize]
	copy(buf[HeaderSize:], s.Data)

	binary.BigEndian.PutUint32(hdr[offSeq:], uint32(s.Seqno))
	binary.BigEndian.PutUint32(hdr[offAck:], uint32(s.Ackno))
	binary.BigEndian.PutUint16(hdr[offLen:], uint16(s.Len()))
	binary.BigEndian.PutUint32(hdr[offFlags:], uint32(s.Flags.Mask()))
	binary.BigEndian.PutUint16(hdr[offWindow:], s.Window)
	binary.BigEndian.PutUint16(hdr[offCksum:], 0)

	binary.BigEndian.PutUint16(buf[offCksum:], checksum(buf, 0))
	return buf
}

// Decode parses buf (the bytes actually delivered by the substrate) into a
// Segment, verifying the checksum and cross-checking the header's len field
// against len(buf). Decode never trusts len beyond what was actually
// received: a segment claiming to be longer than the bytes delivered is
// rejected rather than read out of bounds.
func Decode(buf []byte) (Segment, error) {
	if len(buf) < HeaderSize {
		return Segment{}, ErrShortBuffer
	}
	wireLen := int(binary.BigEndian.Uint16(buf[offLen:]))
	if wireLen < HeaderSize || wireLen > len(buf) {
		return Segment{}, ErrLength
	}
	buf = buf[:wireLen]

	gotCksum := binary.BigEndian.Uint16(buf[offCksum:])
	verify := make([]byte, len(buf))
	copy(verify, buf)
	binary.BigEndian.PutUint16(verify[offCksum:], 0)
	if checksum(verify, 0) != gotCksum {
		return Segment{}, ErrChecksum
	}

	seg := Segment{
		Seqno:  seqnum.Value(binary.BigEndian.Uint32(buf[offSeq:])),
		Ackno:  seqnum.Value(binary.BigEndian.Uint32(buf[offAck:])),
		Flags:  Flags(binary.BigEndian.Uint32(buf[offFlags:])).Mask(),
		Window: binary.BigEndian.Uint16(buf[offWindow:]),
	}
	if wireLen > HeaderSize {
		seg.Data = buffer.View(buf[HeaderSize:wireLen]).Clone()
	}
	return seg, nil
}
