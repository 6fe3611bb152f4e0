// Package wiretest holds segment assertion helpers for tests elsewhere in
// the module. Kept out of package wire itself so the shipping wire codec
// never links "testing", mirroring the teacher's own checker package being
// separate from the network/transport packages it asserts against.
package wiretest

import (
	"testing"

	"github.com/wrights1/ctcp/seqnum"
	"github.com/wrights1/ctcp/wire"
)

// SegmentChecker checks a property of a decoded wire.Segment. Adapted from
// checker/checker.go's functional-option TransportChecker pattern: Check
// decodes raw bytes once and runs every checker against the result, so a
// test site reads as
//
//	wiretest.Check(t, raw, wiretest.SeqNum(1), wiretest.AckNum(1), wiretest.Flag(wire.FlagACK))
type SegmentChecker func(*testing.T, wire.Segment)

// Check decodes raw and runs every checker against the result. It fails the
// test immediately if raw doesn't even decode (bad checksum or length),
// since no individual checker could meaningfully run against a Segment that
// doesn't exist.
func Check(t *testing.T, raw []byte, checkers ...SegmentChecker) wire.Segment {
	t.Helper()
	seg, err := wire.Decode(raw)
	if err != nil {
		t.Fatalf("wire.Decode: %v", err)
	}
	for _, c := range checkers {
		c(t, seg)
	}
	return seg
}

// SeqNum checks the segment's sequence number.
func SeqNum(seq uint32) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if s.Seqno != seqnum.Value(seq) {
			t.Fatalf("bad seqno: got %d, want %d", s.Seqno, seq)
		}
	}
}

// AckNum checks the segment's acknowledgement number.
func AckNum(ack uint32) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if s.Ackno != seqnum.Value(ack) {
			t.Fatalf("bad ackno: got %d, want %d", s.Ackno, ack)
		}
	}
}

// Flag checks that every bit in want is set in the segment's flags.
func Flag(want wire.Flags) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if !s.Flags.Has(want) {
			t.Fatalf("missing flag(s): got %s, want %s set", s.Flags, want)
		}
	}
}

// FlagsExact checks the segment's flags match want exactly, no more and no
// less.
func FlagsExact(want wire.Flags) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if s.Flags != want {
			t.Fatalf("bad flags: got %s, want %s", s.Flags, want)
		}
	}
}

// Window checks the segment's advertised window.
func Window(window uint16) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if s.Window != window {
			t.Fatalf("bad window: got %d, want %d", s.Window, window)
		}
	}
}

// PayloadLen checks the segment's payload length.
func PayloadLen(n int) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if len(s.Data) != n {
			t.Fatalf("bad payload length: got %d, want %d", len(s.Data), n)
		}
	}
}

// Payload checks the segment's payload bytes match want exactly.
func Payload(want []byte) SegmentChecker {
	return func(t *testing.T, s wire.Segment) {
		t.Helper()
		if len(s.Data) != len(want) {
			t.Fatalf("bad payload length: got %d, want %d", len(s.Data), len(want))
			return
		}
		for i := range want {
			if s.Data[i] != want[i] {
				t.Fatalf("payload mismatch at byte %d: got 0x%x, want 0x%x", i, s.Data[i], want[i])
			}
		}
	}
}
