package conn

// Substrate is the datagram channel a ConnectionState sends encoded segments
// over. It is presumed non-blocking and best-effort: short writes are
// treated as successful since the underlying datagram protocol preserves
// record boundaries (spec.md section 5). Implementations live outside the
// core — see cmd/ctcpd's udpSubstrate for one concrete binding.
type Substrate interface {
	// Send hands b to the peer. The engine never inspects the returned
	// byte count beyond logging; errors are logged and otherwise ignored,
	// since the retransmission timer is what actually recovers from loss.
	Send(b []byte) (n int, err error)
	// Close releases substrate resources. Called exactly once, from
	// ConnectionState.destroy.
	Close() error
}

// Application is the byte-stream sink/source the connection delivers
// in-order data to and reads outbound data from. Return codes of Input
// follow spec.md section 6 literally: -1 means EOF, 0 means no bytes ready
// yet, and a positive value is the number of bytes read into buf.
type Application interface {
	// Input reads up to len(buf) bytes of outbound application data into
	// buf, returning -1 on EOF, 0 if no data is ready, or n>0.
	Input(buf []byte) (n int)
	// Output delivers in-order bytes to the downstream sink. The caller
	// (ConnectionState.deliver) only calls Output after confirming
	// FreeSpace() has room, so Output itself never blocks or drops.
	Output(data []byte)
	// FreeSpace reports the free capacity, in bytes, of the downstream
	// sink, used to implement delivery backpressure (spec.md section 4.4).
	FreeSpace() int
}
