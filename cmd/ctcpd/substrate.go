package main

import (
	"bytes"
	"net"
	"sync"
)

// udpSubstrate implements conn.Substrate over a connected UDP socket. It is
// the one concrete binding of the Substrate contract spec.md section 6
// treats as an external collaborator.
type udpSubstrate struct {
	pc net.Conn
}

func newUDPSubstrate(pc net.Conn) *udpSubstrate {
	return &udpSubstrate{pc: pc}
}

func (u *udpSubstrate) Send(b []byte) (int, error) {
	return u.pc.Write(b)
}

func (u *udpSubstrate) Close() error {
	return u.pc.Close()
}

// stdioApplication implements conn.Application over os.Stdin/os.Stdout,
// with an explicit bounded buffer standing in for "downstream sink free
// space" so FreeSpace() reflects real backpressure rather than being
// unbounded, per SPEC_FULL.md section 6.
type stdioApplication struct {
	mu       sync.Mutex
	out      *bytes.Buffer
	outCap   int
	eof      bool
	inReader inputReader
}

// inputReader abstracts stdin so tests can substitute a fake source.
type inputReader interface {
	Read(p []byte) (n int, err error)
}

func newStdioApplication(in inputReader, outCap int) *stdioApplication {
	return &stdioApplication{
		out:      &bytes.Buffer{},
		outCap:   outCap,
		inReader: in,
	}
}

// Input returns -1 on EOF, 0 if no bytes are ready, or n>0, per the literal
// contract of conn.Application.Input (spec.md section 6).
func (a *stdioApplication) Input(buf []byte) int {
	if a.eof {
		return -1
	}
	n, err := a.inReader.Read(buf)
	if n == 0 && err != nil {
		a.eof = true
		return -1
	}
	if n == 0 {
		return 0
	}
	return n
}

// Output appends bytes to the bounded downstream buffer. The caller
// (conn.ConnectionState.deliver) only calls this after checking FreeSpace.
func (a *stdioApplication) Output(data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.out.Write(data)
}

// FreeSpace reports the bounded sink's remaining capacity.
func (a *stdioApplication) FreeSpace() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	free := a.outCap - a.out.Len()
	if free < 0 {
		free = 0
	}
	return free
}

// Drain flushes and returns everything written to the sink so far, freeing
// its capacity back up. The event loop calls this after each readiness
// round to push delivered bytes out to the real os.Stdout.
func (a *stdioApplication) Drain() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := make([]byte, a.out.Len())
	copy(b, a.out.Bytes())
	a.out.Reset()
	return b
}
