// Package ctcpcfg holds the immutable, construction-time configuration of a
// cTCP connection: window sizes, retransmission timeout, retransmit cap, and
// MSS. See spec.md section 6 "Configuration inputs".
package ctcpcfg

import (
	"fmt"
	"time"
)

// MaxMSS is the compile-time upper bound on segment payload size.
const MaxMSS = 1440

// DefaultMaxRetransmits is the retransmission cap spec.md section 3/7 names.
const DefaultMaxRetransmits = 5

// Config is immutable after New returns successfully; nothing in the
// engine ever mutates a field of an in-use Config.
type Config struct {
	// SendWindow is the size, in bytes, of the local send buffer.
	SendWindow int
	// RecvWindow is the size, in bytes, of the local receive buffer.
	RecvWindow int
	// RTTimeout is the elapsed time a segment may go unacknowledged before
	// being retransmitted.
	RTTimeout time.Duration
	// MaxRetransmits is the number of retransmissions a single segment may
	// undergo before the connection is considered dead.
	MaxRetransmits int
	// MSS is the maximum payload bytes per segment; must not exceed MaxMSS.
	MSS int
}

// New validates and returns a Config. Fields left at their zero value are
// filled with sane defaults (DefaultMaxRetransmits, MaxMSS).
func New(sendWindow, recvWindow int, rtTimeout time.Duration, maxRetransmits, mss int) (Config, error) {
	if sendWindow <= 0 {
		return Config{}, fmt.Errorf("ctcpcfg: send window must be positive, got %d", sendWindow)
	}
	if recvWindow <= 0 {
		return Config{}, fmt.Errorf("ctcpcfg: recv window must be positive, got %d", recvWindow)
	}
	if rtTimeout <= 0 {
		return Config{}, fmt.Errorf("ctcpcfg: retransmission timeout must be positive, got %v", rtTimeout)
	}
	if maxRetransmits <= 0 {
		maxRetransmits = DefaultMaxRetransmits
	}
	if mss <= 0 {
		mss = MaxMSS
	}
	if mss > MaxMSS {
		return Config{}, fmt.Errorf("ctcpcfg: mss %d exceeds compile-time maximum %d", mss, MaxMSS)
	}
	return Config{
		SendWindow:     sendWindow,
		RecvWindow:     recvWindow,
		RTTimeout:      rtTimeout,
		MaxRetransmits: maxRetransmits,
		MSS:            mss,
	}, nil
}
