package conn

import (
	"github.com/wrights1/ctcp/seqnum"
	"github.com/wrights1/ctcp/wire"
)

// OnApplicationReadable is called when the host signals application input
// is available. See spec.md section 4.2.
func (c *ConnectionState) OnApplicationReadable() {
	if c.finSent {
		return
	}
	if c.sendWindowAvail == 0 {
		return // flow/back-pressure: local send buffer is full
	}

	buf := make([]byte, c.sendWindowAvail)
	n := c.application.Input(buf)

	switch {
	case n < 0: // EOF
		c.enqueueFIN()
	case n == 0:
		// no data ready yet
	default:
		c.fragmentAndEnqueue(buf[:n])
	}

	c.transmitPending()
}

// fragmentAndEnqueue splits data into MSS-sized segments, each queued
// unsent at the tail of c.sent (seqno assignment is monotonic, so tail
// insertion always keeps the list sorted).
func (c *ConnectionState) fragmentAndEnqueue(data []byte) {
	mss := c.config.MSS
	for len(data) > 0 {
		n := len(data)
		if n > mss {
			n = mss
		}
		payload := make([]byte, n)
		copy(payload, data[:n])
		data = data[n:]

		seg := &SentSegment{payloadLen: n, pendingPayload: payload}
		c.sent.PushBack(seg)
		if c.unsent == nil {
			c.unsent = seg
		}
		c.sendWindowAvail -= n
	}
}

// enqueueFIN marks the local half as closed and queues a zero-length
// FIN|ACK control segment, which consumes exactly one byte of sequence
// space. See spec.md section 4.2 step 4 and section 4.5.
func (c *ConnectionState) enqueueFIN() {
	c.finSent = true
	seg := &SentSegment{isFIN: true}
	c.sent.PushBack(seg)
	if c.unsent == nil {
		c.unsent = seg
	}
	c.log.Debug("local FIN enqueued")
}

// transmitPending walks c.sent from the first unsent entry, transmitting
// while the peer's advertised window allows, per spec.md section 4.2 step 6:
// "while advertised_window > 0 and segment is unsent". A segment whose
// payload exceeds the remaining window is still sent (cTCP's window is an
// advisory flow-control signal, not a byte-exact admission test); the
// window only needs to be positive for the next segment to go out.
func (c *ConnectionState) transmitPending() {
	windowLeft := int(c.advertisedWindow)
	seg := c.unsent
	for seg != nil && !seg.sentFlag && windowLeft > 0 {
		segLen := seg.payloadLen

		seg.seqno = c.nextSeqno
		c.nextSeqno = c.nextSeqno.Add(seg.logicalLen())
		if seg.isFIN {
			c.ourFINSeqno = seg.seqno
			c.finSeqnoAssigned = true
		}

		seg.encoded = wire.Encode(wire.Segment{
			Seqno:  seg.seqno,
			Ackno:  c.ackno,
			Flags:  sentSegmentFlags(seg),
			Window: uint16(c.recvWindowAvail),
			Data:   seg.pendingPayload,
		})
		c.transmit(seg.encoded)
		seg.timeSent = now()
		seg.retransmitCount++
		seg.sentFlag = true
		c.Stats.BytesInFlight.Add(int64(segLen))

		windowLeft -= segLen
		seg, _ = seg.Next().(*SentSegment)
	}
	c.unsent = seg
}

func sentSegmentFlags(seg *SentSegment) wire.Flags {
	f := wire.FlagACK
	if seg.isFIN {
		f = f.With(wire.FlagFIN)
	}
	return f
}

// OnAck processes an inbound segment's ACK flag, advancing the send window.
// See spec.md section 4.2 "on_ack".
func (c *ConnectionState) OnAck(ackno seqnum.Value, peerWindow uint16) {
	c.advertisedWindow = peerWindow

	switch {
	case ackno.GreaterThan(c.sendBase):
		c.sendBase = ackno
		c.reapAcked()
		c.maybeMarkFINAcked(ackno)
	case ackno.LessThan(c.sendBase):
		c.Stats.DroppedStaleAck.Add(1)
		c.log.WithField("ackno", ackno).Debug("ignored stale ACK")
		return // stale, ignore
	default:
		// ackno == sendBase: no new data acknowledged, gap upstream, rely on timer.
	}

	c.transmitPending()
}

// reapAcked removes every fully-acknowledged entry from the head of c.sent,
// restoring its payload length to sendWindowAvail.
func (c *ConnectionState) reapAcked() {
	for {
		front, _ := c.sent.Front().(*SentSegment)
		if front == nil || front.endSeq().GreaterThan(c.sendBase) {
			break
		}
		c.sent.Remove(front)
		if !front.isFIN {
			c.sendWindowAvail += front.payloadLen
			if front.sentFlag {
				c.Stats.BytesInFlight.Add(-int64(front.payloadLen))
			}
		}
	}
}

// maybeMarkFINAcked sets finSentAcked once ackno acknowledges our FIN's
// sequence number, i.e. ackno == our_fin_seqno + 1. See spec.md section 4.5.
// finSeqnoAssigned guards against treating the FIN as acked before it has
// even been transmitted (before transmission its seqno is the zero value,
// which would otherwise be indistinguishable from a real seqno of 0).
func (c *ConnectionState) maybeMarkFINAcked(ackno seqnum.Value) {
	if !c.finSent || c.finSentAcked || !c.finSeqnoAssigned {
		return
	}
	if ackno.GreaterThanEq(c.ourFINSeqno.Add(1)) {
		c.finSentAcked = true
		c.log.Debug("local FIN acknowledged")
		c.maybeTransitionClosed()
	}
}
