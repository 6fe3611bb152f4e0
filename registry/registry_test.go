package registry

import (
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/wrights1/ctcp/conn"
	"github.com/wrights1/ctcp/ctcpcfg"
)

type nopSubstrate struct{ closed bool }

func (s *nopSubstrate) Send(b []byte) (int, error) { return len(b), nil }
func (s *nopSubstrate) Close() error               { s.closed = true; return nil }

type nopApplication struct{}

func (nopApplication) Input(buf []byte) int { return 0 }
func (nopApplication) Output(data []byte)   {}
func (nopApplication) FreeSpace() int        { return 1 << 20 }

type eofApplication struct{}

func (eofApplication) Input(buf []byte) int { return -1 }
func (eofApplication) Output(data []byte)   {}
func (eofApplication) FreeSpace() int        { return 1 << 20 }

func newEntry(t *testing.T) (*conn.ConnectionState, *nopSubstrate) {
	t.Helper()
	cfg, err := ctcpcfg.New(4096, 4096, time.Second, 3, 1440)
	require.NoError(t, err)
	sub := &nopSubstrate{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return conn.New(xid.New(), sub, nopApplication{}, cfg, 1, 1, log), sub
}

// newFatalEntry returns a connection with a vanishingly small retransmission
// timeout and a cap of one, so a couple of OnTick calls alone (no fake
// clock needed) push it past the retransmit cap.
func newFatalEntry(t *testing.T) (*conn.ConnectionState, *nopSubstrate) {
	t.Helper()
	cfg, err := ctcpcfg.New(4096, 4096, time.Nanosecond, 1, 1440)
	require.NoError(t, err)
	sub := &nopSubstrate{}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	c := conn.New(xid.New(), sub, eofApplication{}, cfg, 1, 1, log)
	c.OnAck(1, 4096) // sets the advertised window explicitly (New already seeds it from RecvWindow) so the FIN below is sent, not just queued
	c.OnApplicationReadable()
	return c, sub
}

func TestAddLookupAndLen(t *testing.T) {
	r := New()
	c, _ := newEntry(t)
	r.Add(c)

	require.Equal(t, 1, r.Len())
	got, ok := r.Lookup(c.ID)
	require.True(t, ok)
	require.Same(t, c, got)
}

func TestLookupMissing(t *testing.T) {
	r := New()
	_, ok := r.Lookup(xid.New())
	require.False(t, ok)
}

func TestRemovalOnDestroySplicesOut(t *testing.T) {
	r := New()
	c, sub := newFatalEntry(t)
	r.Add(c)
	require.Equal(t, 1, r.Len())

	// A fatal tick (forced past the retransmit cap) destroys the
	// connection, which must splice it out of the registry automatically.
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = c.OnTick()
	}
	require.Error(t, err)
	require.Equal(t, 0, r.Len())
	require.True(t, sub.closed)
	_, ok := r.Lookup(c.ID)
	require.False(t, ok)
}

func TestEachVisitsInRegistrationOrder(t *testing.T) {
	r := New()
	c1, _ := newEntry(t)
	c2, _ := newEntry(t)
	r.Add(c1)
	r.Add(c2)

	var seen []string
	r.Each(func(c *conn.ConnectionState) {
		seen = append(seen, c.ID.String())
	})
	require.Equal(t, []string{c1.ID.String(), c2.ID.String()}, seen)
}

func TestDispatchSegmentUnknownID(t *testing.T) {
	r := New()
	err := r.DispatchSegment(xid.New(), []byte("junk"))
	require.Error(t, err)
}

func TestDispatchReadableUnknownID(t *testing.T) {
	r := New()
	err := r.DispatchReadable(xid.New())
	require.Error(t, err)
}
