package conn

import (
	"time"

	"github.com/wrights1/ctcp/ilist"
	"github.com/wrights1/ctcp/seqnum"
)

// SentSegment is an outstanding (unacknowledged or not-yet-sent) segment,
// queued on ConnectionState.sent in strictly ascending seqno order. See
// spec.md section 3 "SentSegment". It embeds ilist.Entry so it can live
// directly on an ilist.List with no separate allocation, the way the
// teacher's segment embeds segmentEntry to live on sender.writeList.
type SentSegment struct {
	ilist.Entry

	encoded    []byte
	payloadLen int
	// pendingPayload holds the raw payload bytes until the segment is
	// first transmitted and encoded into encoded.
	pendingPayload  []byte
	seqno           seqnum.Value
	isFIN           bool
	timeSent        time.Time
	retransmitCount int
	// sentFlag distinguishes enqueued-but-unsent (held because the peer's
	// advertised window was full) from in-flight.
	sentFlag bool
}

// logicalLen is the number of sequence-space bytes this segment consumes:
// its payload length, plus one if it carries FIN.
func (s *SentSegment) logicalLen() seqnum.Size {
	n := seqnum.Size(s.payloadLen)
	if s.isFIN {
		n++
	}
	return n
}

// endSeq is the sequence number one past the last byte (or FIN) this
// segment covers.
func (s *SentSegment) endSeq() seqnum.Value {
	return s.seqno.Add(s.logicalLen())
}

// ReceivedSegment is a segment received but not yet delivered to the
// application, queued on ConnectionState.received in strictly ascending
// seqno order. spec.md section 3 leaves this type anonymous; it is named
// explicitly here for symmetry with SentSegment.
type ReceivedSegment struct {
	ilist.Entry

	seqno seqnum.Value
	data  []byte
}

func (r *ReceivedSegment) dataLen() seqnum.Size {
	return seqnum.Size(len(r.data))
}
