// Package conn implements the per-connection cTCP protocol engine: the
// sliding-window sender, the reordering receiver, the retransmission timer,
// and the four-way teardown state machine, wired together as
// ConnectionState. See spec.md sections 3-7.
package conn

import (
	"math"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/wrights1/ctcp/ctcpcfg"
	"github.com/wrights1/ctcp/ilist"
	"github.com/wrights1/ctcp/seqnum"
	"github.com/wrights1/ctcp/wire"
)

// ConnectionState is the per-peer protocol engine (spec.md section 3). A
// ConnectionState is created when the substrate hands the registry a live
// connection and destroyed when teardown completes or the retransmit cap is
// exceeded. Every method is called from the single event-loop goroutine;
// see spec.md section 5 — there is no internal locking.
type ConnectionState struct {
	ID xid.ID

	substrate   Substrate
	application Application
	config      ctcpcfg.Config
	log         logrus.FieldLogger
	Stats       Stats

	// sender state
	sendBase         seqnum.Value
	nextSeqno        seqnum.Value
	sendWindowAvail  int
	advertisedWindow uint16
	sent             ilist.List
	unsent           *SentSegment // first not-yet-transmitted entry of sent, or nil
	finSent          bool
	finSentAcked     bool
	finSeqnoAssigned bool
	ourFINSeqno      seqnum.Value

	// receiver state
	ackno           seqnum.Value
	nextByteConsume seqnum.Value
	recvWindowAvail int
	received        ilist.List
	finRecv         bool

	destroyed bool
	onDestroy func(*ConnectionState)
}

// New creates a ConnectionState for a freshly accepted peer. initialSeqno is
// the sequence number of the first byte this side will send; initialAckno
// is the sequence number expected of the first byte the peer will send
// (both assumed pre-agreed, since connection establishment is out of scope
// per spec.md section 1).
func New(id xid.ID, substrate Substrate, application Application, cfg ctcpcfg.Config, initialSeqno, initialAckno seqnum.Value, log logrus.FieldLogger) *ConnectionState {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &ConnectionState{
		ID:               id,
		substrate:        substrate,
		application:      application,
		config:           cfg,
		log:              log.WithField("conn_id", id.String()),
		sendBase:         initialSeqno,
		nextSeqno:        initialSeqno,
		sendWindowAvail:  cfg.SendWindow,
		advertisedWindow: initialWindow(cfg.RecvWindow),
		ackno:            initialAckno,
		nextByteConsume:  initialAckno,
		recvWindowAvail:  cfg.RecvWindow,
	}
	return c
}

// initialWindow seeds the peer's advertised window before any ACK has been
// received. Both sides of a cTCP connection are configured with the same
// recv window out of band (connection establishment is out of scope per
// spec.md section 1), so assuming the peer starts with its full configured
// window — rather than 0 — is the same kind of pre-agreement initialSeqno
// and initialAckno already rely on; without it, two freshly started peers
// would never send a first segment; the real window is corrected the
// moment the first inbound ACK arrives. Capped at the wire header's 16-bit
// Window field width so the seed itself can never silently truncate.
func initialWindow(recvWindow int) uint16 {
	if recvWindow > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(recvWindow)
}

// OnDestroy registers a callback invoked exactly once when this connection
// is destroyed, used by registry.Registry to splice itself out of its
// connection list.
func (c *ConnectionState) OnDestroy(fn func(*ConnectionState)) {
	c.onDestroy = fn
}

// Destroyed reports whether destroy has already run.
func (c *ConnectionState) Destroyed() bool {
	return c.destroyed
}

// destroy notifies the registry so it can remove this connection, then
// frees all send/receive buffer entries and closes the substrate handle.
// Idempotent: a second call is a no-op.
func (c *ConnectionState) destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.onDestroy != nil {
		c.onDestroy(c)
	}
	c.sent.Reset()
	c.received.Reset()
	c.unsent = nil
	if err := c.substrate.Close(); err != nil {
		c.log.WithError(err).Debug("substrate close returned error")
	}
}

// transmit hands an encoded segment to the substrate and bumps stats. It is
// the single choke point every outbound byte passes through, whether first
// transmission or retransmission.
func (c *ConnectionState) transmit(encoded []byte) {
	if _, err := c.substrate.Send(encoded); err != nil {
		c.log.WithError(err).Debug("substrate send returned error")
		return
	}
	c.Stats.SegmentsSent.Add(1)
}

// sendControlSegment builds and transmits a zero-payload segment (the bare
// ACK sent by sendAck; the FIN|ACK is instead queued on the sent list by
// enqueueFIN and sent by transmitPending) carrying the current
// ackno/recv_window_avail. It never touches the sent list; it does not
// consume sequence space and is never retransmitted by the timer.
func (c *ConnectionState) sendControlSegment(flags wire.Flags, seq seqnum.Value) {
	seg := wire.Segment{
		Seqno:  seq,
		Ackno:  c.ackno,
		Flags:  flags.With(wire.FlagACK),
		Window: uint16(c.recvWindowAvail),
	}
	c.transmit(wire.Encode(seg))
}

// now is a seam so tests can fake the clock without monkeypatching time.Now.
var now = time.Now
