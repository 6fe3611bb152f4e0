package conn

import "github.com/wrights1/ctcp/wire"

// handleTeardownHooks implements the remote-FIN half of the four-way close
// (spec.md section 4.5). It must run before OnAck/data processing so the
// ACK this segment triggers (section 4.3 step 8) already reflects the
// consumed FIN seqno.
//
// A retransmitted peer FIN must not re-advance ackno a second time, hence
// the finRecv guard — spec.md section 9 calls this out explicitly as an
// edge the original source got wrong.
func (c *ConnectionState) handleTeardownHooks(seg wire.Segment) {
	if !seg.Flags.Has(wire.FlagFIN) || c.finRecv {
		return
	}
	c.finRecv = true
	c.ackno = c.ackno.Add(1) // FIN consumes exactly one sequence-space byte
	c.log.Debug("remote FIN observed")
	c.maybeTransitionClosed()
}

// maybeTransitionClosed destroys the connection once both halves have
// closed: our FIN has been acknowledged and we've seen the peer's FIN.
// See spec.md section 4.5 "Transition to CLOSED".
func (c *ConnectionState) maybeTransitionClosed() {
	if c.finSentAcked && c.finRecv {
		c.Stats.TeardownsCompleted.Add(1)
		c.log.Debug("teardown complete, destroying connection")
		c.destroy()
	}
}
