package conn

import (
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/wrights1/ctcp/ctcpcfg"
	"github.com/wrights1/ctcp/seqnum"
)

// fakeSubstrate records every segment handed to Send, so tests can assert on
// exactly what the engine transmitted without a real datagram channel.
type fakeSubstrate struct {
	sent   [][]byte
	closed bool
	drop   func(seq int) bool // drop(n) reports whether the nth Send should be swallowed
}

func (f *fakeSubstrate) Send(b []byte) (int, error) {
	n := len(f.sent)
	cp := make([]byte, len(b))
	copy(cp, b)
	if f.drop == nil || !f.drop(n) {
		f.sent = append(f.sent, cp)
	} else {
		f.sent = append(f.sent, nil) // keep indices aligned with call count
	}
	return len(b), nil
}

func (f *fakeSubstrate) Close() error {
	f.closed = true
	return nil
}

// fakeApplication is an in-memory stand-in for conn.Application: pending
// holds bytes waiting to be read out by Input, delivered accumulates
// whatever OnSegment's receive path hands to Output.
type fakeApplication struct {
	pending   []byte
	eof       bool
	delivered []byte
	cap       int // 0 means unbounded
}

func (a *fakeApplication) Input(buf []byte) int {
	if len(a.pending) == 0 {
		if a.eof {
			return -1
		}
		return 0
	}
	n := copy(buf, a.pending)
	a.pending = a.pending[n:]
	return n
}

func (a *fakeApplication) Output(data []byte) {
	a.delivered = append(a.delivered, data...)
}

func (a *fakeApplication) FreeSpace() int {
	if a.cap == 0 {
		return 1 << 30
	}
	return a.cap - len(a.delivered)
}

// fullWindow is the largest value that fits in the wire header's 16-bit
// Window field, used in tests as "effectively unlimited" rather than the
// actual 1<<16, which would silently truncate to 0 once encoded.
const fullWindow = 65535

func newTestConnection(sub Substrate, app Application, initSeq, initAck seqnum.Value) *ConnectionState {
	cfg, _ := ctcpcfg.New(1<<20, fullWindow, 500*time.Millisecond, 3, 1440)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel) // keep test output quiet
	return New(xid.New(), sub, app, cfg, initSeq, initAck, log)
}
