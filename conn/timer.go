package conn

// OnTick is invoked periodically by the host's timer dispatch. It walks
// every in-flight (sent_flag == true) entry of c.sent, retransmitting those
// whose age exceeds the configured timeout, and kills the connection once
// any entry's retransmit count exceeds the configured cap. See spec.md
// section 4.6. Unsent entries (held back by a zero peer window) are not
// aged and not retransmitted here — transmitPending first-transmits them
// once an inbound ACK raises the advertised window.
func (c *ConnectionState) OnTick() error {
	for it := c.sent.Front(); it != nil; it = it.Next() {
		seg := it.(*SentSegment)
		if !seg.sentFlag {
			continue
		}
		if seg.retransmitCount > c.config.MaxRetransmits {
			c.log.WithField("seqno", seg.seqno).Warn("retransmission cap exceeded, destroying connection")
			c.destroy()
			return ErrRetransmitCapExceeded
		}
		if now().Sub(seg.timeSent) > c.config.RTTimeout {
			c.transmit(seg.encoded) // byte-identical: seqno/payload/checksum unchanged
			seg.timeSent = now()
			seg.retransmitCount++
			c.Stats.RetransmitsSent.Add(1)
			c.log.WithField("seqno", seg.seqno).WithField("retransmit_count", seg.retransmitCount).Debug("retransmitting segment")
		}
	}
	return nil
}
