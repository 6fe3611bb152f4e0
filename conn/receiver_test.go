package conn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wrights1/ctcp/seqnum"
	"github.com/wrights1/ctcp/wire"
	"github.com/wrights1/ctcp/wire/wiretest"
)

func dataSegment(seq, ack seqnum.Value, data []byte) []byte {
	return wire.Encode(wire.Segment{Seqno: seq, Ackno: ack, Flags: wire.FlagACK, Window: 4096, Data: data})
}

func TestInOrderDeliveryAndAck(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{}
	c := newTestConnection(sub, app, 1, 1)

	c.OnSegment(dataSegment(1, 1, []byte("hello\n")))

	require.Equal(t, "hello\n", string(app.delivered))
	require.Equal(t, seqnum.Value(7), c.ackno)
	require.Len(t, sub.sent, 1)
	wiretest.Check(t, sub.sent[0], wiretest.AckNum(7))
	require.NoError(t, c.CheckInvariants())
}

func TestOutOfOrderReassemblyAndAckSequence(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{}
	c := newTestConnection(sub, app, 1, 1)

	seg1 := dataSegment(1, 1, make([]byte, 1440))
	seg2 := dataSegment(1441, 1, make([]byte, 1440))
	seg3 := dataSegment(2881, 1, make([]byte, 1440))

	// Delivered out of order: 2881, 1441, 1.
	c.OnSegment(seg3)
	wiretest.Check(t, sub.sent[0], wiretest.AckNum(1))
	c.OnSegment(seg2)
	wiretest.Check(t, sub.sent[1], wiretest.AckNum(1))
	c.OnSegment(seg1)
	wiretest.Check(t, sub.sent[2], wiretest.AckNum(4321))

	require.Equal(t, seqnum.Value(4321), c.ackno)
	require.Len(t, app.delivered, 3*1440)
	require.NoError(t, c.CheckInvariants())
}

func TestDuplicateInOrderSegmentDroppedAfterFirstDelivery(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{}
	c := newTestConnection(sub, app, 1, 1)

	c.OnSegment(dataSegment(1, 1, []byte("abc")))
	c.OnSegment(dataSegment(1, 1, []byte("abc"))) // duplicate, already delivered

	require.Equal(t, "abc", string(app.delivered), "duplicate data must not be delivered twice")
	require.Equal(t, uint64(1), c.Stats.DroppedDuplicate.Load())
}

func TestDuplicateOutOfOrderSegmentDropped(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{}
	c := newTestConnection(sub, app, 1, 1)

	seg2 := dataSegment(1441, 1, make([]byte, 1440))
	c.OnSegment(seg2)
	c.OnSegment(seg2) // duplicate out-of-order insert

	require.Equal(t, uint64(1), c.Stats.DroppedDuplicate.Load())
}

func TestOutOfWindowSegmentDropped(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{}
	c := newTestConnection(sub, app, 1, 1)
	c.recvWindowAvail = 4

	c.OnSegment(dataSegment(1, 1, make([]byte, 5)))

	require.Equal(t, uint64(1), c.Stats.DroppedOutOfWindow.Load())
	require.Empty(t, app.delivered)
}

func TestBareAckStillAcksOnControlSegment(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{}
	c := newTestConnection(sub, app, 1, 1)

	c.OnSegment(wire.Encode(wire.Segment{Seqno: 1, Ackno: 1, Flags: wire.FlagACK}))

	require.Len(t, sub.sent, 1, "a bare control segment must still trigger an ACK reply")
}

func TestDeliveryBackpressureHoldsUntilFreeSpace(t *testing.T) {
	sub := &fakeSubstrate{}
	app := &fakeApplication{cap: 3}
	c := newTestConnection(sub, app, 1, 1)

	c.OnSegment(dataSegment(1, 1, []byte("abcdef")))

	require.Empty(t, app.delivered, "sink has no free space, nothing should be delivered yet")
	require.False(t, c.received.Empty())
}
