package conn

import (
	"fmt"

	"github.com/wrights1/ctcp/seqnum"
)

// CheckInvariants verifies the properties spec.md section 8 says must hold
// after every callback. It's exported so package conn's own tests, and
// integration tests in other packages, can assert on it directly rather
// than re-deriving the same checks ad hoc.
func (c *ConnectionState) CheckInvariants() error {
	if c.nextSeqno.LessThan(c.sendBase) {
		return fmt.Errorf("sendBase %d > nextSeqno %d", c.sendBase, c.nextSeqno)
	}

	sentBytes := 0
	var prev seqnum.Value
	havePrev := false
	for it := c.sent.Front(); it != nil; it = it.Next() {
		seg := it.(*SentSegment)
		if seg.sentFlag && seg.seqno.LessThan(c.sendBase) {
			return fmt.Errorf("sent entry seqno %d precedes sendBase %d", seg.seqno, c.sendBase)
		}
		// Unsent entries (held back by a zero peer window) have no seqno
		// assigned yet and all carry the zero value, so only transmitted
		// entries are checked for strictly ascending order.
		if seg.sentFlag {
			if havePrev && seg.seqno.LessThanEq(prev) {
				return fmt.Errorf("sent list not strictly ascending: %d after %d", seg.seqno, prev)
			}
			prev, havePrev = seg.seqno, true
		}
		if !seg.isFIN {
			sentBytes += seg.payloadLen
		}
	}
	if c.sendWindowAvail+sentBytes != c.config.SendWindow {
		return fmt.Errorf("sendWindowAvail(%d)+outstanding(%d) != configured SendWindow(%d)", c.sendWindowAvail, sentBytes, c.config.SendWindow)
	}

	if c.nextByteConsume.GreaterThan(c.ackno) {
		return fmt.Errorf("nextByteConsume %d > ackno %d", c.nextByteConsume, c.ackno)
	}

	recvBytes := 0
	prev, havePrev = seqnum.Value(0), false
	for it := c.received.Front(); it != nil; it = it.Next() {
		seg := it.(*ReceivedSegment)
		if havePrev && seg.seqno.LessThanEq(prev) {
			return fmt.Errorf("received list not strictly ascending: %d after %d", seg.seqno, prev)
		}
		prev, havePrev = seg.seqno, true
		recvBytes += len(seg.data)
	}
	if c.recvWindowAvail+recvBytes != c.config.RecvWindow {
		return fmt.Errorf("recvWindowAvail(%d)+queued(%d) != configured RecvWindow(%d)", c.recvWindowAvail, recvBytes, c.config.RecvWindow)
	}

	return nil
}
