package conn

import "sync/atomic"

// Stats holds purely observational per-connection counters, never read by
// protocol logic, fed to ctcpmetrics.Collector. Safe to read concurrently
// with the single engine goroutine since every field is an atomic counter.
type Stats struct {
	SegmentsSent       atomic.Uint64
	SegmentsRecv       atomic.Uint64
	RetransmitsSent    atomic.Uint64
	DroppedCorrupt     atomic.Uint64
	DroppedDuplicate   atomic.Uint64
	DroppedOutOfWindow atomic.Uint64
	DroppedStaleAck    atomic.Uint64
	BytesInFlight      atomic.Int64
	TeardownsCompleted atomic.Uint64
}
