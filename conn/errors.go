package conn

import "errors"

// ErrRetransmitCapExceeded is returned from ConnectionState.OnTick when a
// segment's retransmit count exceeds Config.MaxRetransmits. The connection
// is destroyed before this error is returned; per spec.md section 7 this is
// the one protocol condition that is fatal for the connection rather than
// being silently recovered from.
var ErrRetransmitCapExceeded = errors.New("ctcp: retransmission cap exceeded")
