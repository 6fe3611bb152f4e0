package conn

import (
	"github.com/wrights1/ctcp/seqnum"
	"github.com/wrights1/ctcp/wire"
)

// OnSegment is invoked by the registry/dispatcher for every inbound datagram
// on this connection's substrate. raw is exactly the bytes the substrate
// delivered. See spec.md section 4.3.
func (c *ConnectionState) OnSegment(raw []byte) {
	seg, err := wire.Decode(raw)
	if err != nil {
		c.Stats.DroppedCorrupt.Add(1)
		c.log.WithError(err).Debug("dropped corrupt segment")
		return // corruption: drop silently, do not ACK; rely on retransmission
	}
	c.Stats.SegmentsRecv.Add(1)

	c.handleTeardownHooks(seg)

	if seg.Flags.Has(wire.FlagACK) {
		c.OnAck(seg.Ackno, seg.Window)
	}

	dataLen := len(seg.Data)
	switch {
	case dataLen == 0:
		// control segment: nothing to insert, still falls through to the
		// unconditional ACK below (e.g. a bare FIN must still be ACKed).
	case c.recvWindowAvail < dataLen:
		c.Stats.DroppedOutOfWindow.Add(1)
		c.log.WithField("seqno", seg.Seqno).Debug("dropped out-of-window data")
	case seg.Seqno == c.ackno:
		c.acceptInOrder(seg.Seqno, seg.Data)
	case seg.Seqno.GreaterThan(c.ackno):
		c.acceptOutOfOrder(seg.Seqno, seg.Data)
	default:
		// seg.Seqno < c.ackno: duplicate of already-delivered data.
		c.Stats.DroppedDuplicate.Add(1)
		c.log.WithField("seqno", seg.Seqno).Debug("dropped duplicate segment")
	}

	// Emitted even when the data above was dropped, so the peer always
	// re-learns our window and cumulative ACK. See spec.md section 4.3 step 8.
	c.sendAck()
}

// acceptInOrder inserts a segment that arrived exactly at the front of the
// receive window, then advances ackno over any now-contiguous entries
// already queued out of order. See spec.md section 4.3 step 7 (seqno==ackno).
func (c *ConnectionState) acceptInOrder(seqno seqnum.Value, data []byte) {
	r := &ReceivedSegment{seqno: seqno, data: data}
	c.received.PushFront(r)
	c.recvWindowAvail -= len(data)

	for it := c.received.Front(); it != nil; it = it.Next() {
		r := it.(*ReceivedSegment)
		if r.seqno != c.ackno {
			break
		}
		c.ackno = c.ackno.Add(r.dataLen())
	}

	c.deliver()
}

// acceptOutOfOrder inserts a segment past the front of the window into its
// sorted position in c.received, dropping it if it duplicates an entry
// already queued. See spec.md section 4.3 step 7 (seqno>ackno).
func (c *ConnectionState) acceptOutOfOrder(seqno seqnum.Value, data []byte) {
	for it := c.received.Front(); it != nil; it = it.Next() {
		existing := it.(*ReceivedSegment)
		if existing.seqno == seqno {
			c.Stats.DroppedDuplicate.Add(1)
			c.log.WithField("seqno", seqno).Debug("dropped duplicate segment")
			return
		}
		if existing.seqno.GreaterThan(seqno) {
			r := &ReceivedSegment{seqno: seqno, data: data}
			c.received.InsertBefore(existing, r)
			c.recvWindowAvail -= len(data)
			return
		}
	}
	// seqno is greater than every queued entry (or queue is empty): append.
	r := &ReceivedSegment{seqno: seqno, data: data}
	c.received.PushBack(r)
	c.recvWindowAvail -= len(data)
}

// sendAck emits a bare ACK segment carrying the current ackno and current
// recv_window_avail. Emitted after every accepted-or-dropped data segment,
// per spec.md section 4.3 step 8, so the peer always re-learns our window
// even when we dropped its payload.
func (c *ConnectionState) sendAck() {
	c.sendControlSegment(wire.FlagACK, c.nextSeqno)
}

// deliver walks c.received from the head while it is contiguous with
// nextByteConsume, handing bytes to the application as buffer space allows.
// See spec.md section 4.4.
func (c *ConnectionState) deliver() {
	for {
		head, _ := c.received.Front().(*ReceivedSegment)
		if head == nil || head.seqno != c.nextByteConsume {
			return
		}
		if c.application.FreeSpace() < len(head.data) {
			return // back-pressure: stop until the sink has room
		}
		c.application.Output(head.data)
		c.nextByteConsume = c.nextByteConsume.Add(head.dataLen())
		c.recvWindowAvail += len(head.data)
		c.received.Remove(head)
	}
}
