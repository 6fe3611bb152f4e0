// Package registry implements the process-wide connection registry and
// dispatcher of spec.md section 2/section 4.6/section 9: a table mapping
// each live connection to its engine state, with O(1) removal, that the
// host event loop's three callback sources are routed through.
//
// Grounded on stack.Stack's registered-protocols map (generalized here to
// registered connections) and waiter.Queue's ilist-backed registration
// pattern; all mutation happens from the single event-loop goroutine that
// owns the registry, exactly as spec.md section 5 requires.
package registry

import (
	"fmt"
	"sync"

	"github.com/rs/xid"

	"github.com/wrights1/ctcp/conn"
	"github.com/wrights1/ctcp/ilist"
)

// entry adapts a *conn.ConnectionState onto an ilist.List so the registry
// can hold and splice connections in O(1) without a second allocation.
type entry struct {
	ilist.Entry
	c *conn.ConnectionState
}

// Registry is a process-wide table of live connections, keyed by xid.ID for
// O(1) lookup and an ilist.List for O(1) insertion-order iteration/removal.
// Create one with New: the zero value has a nil map, and Add panics on it.
type Registry struct {
	mu      sync.Mutex // guards only cross-goroutine readers (e.g. metrics); the engine itself is single-threaded
	byID    map[xid.ID]*entry
	ordered ilist.List
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byID: make(map[xid.ID]*entry)}
}

// Add registers c, wiring its destroy hook to remove it from the registry
// the moment it is destroyed (by the engine itself, or by a tick that hits
// the retransmit cap). Removal from the registry precedes destruction of
// the ConnectionState's own buffers, per spec.md section 3 "Ownership".
func (r *Registry) Add(c *conn.ConnectionState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{c: c}
	r.byID[c.ID] = e
	r.ordered.PushBack(e)
	c.OnDestroy(func(c *conn.ConnectionState) {
		r.remove(c.ID)
	})
}

func (r *Registry) remove(id xid.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	r.ordered.Remove(e)
}

// Lookup returns the connection registered under id, if any.
func (r *Registry) Lookup(id xid.ID) (*conn.ConnectionState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return e.c, true
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Each calls fn once per live connection, in registration order. fn must not
// add or remove registry entries.
func (r *Registry) Each(fn func(*conn.ConnectionState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for it := r.ordered.Front(); it != nil; it = it.Next() {
		fn(it.(*entry).c)
	}
}

// DispatchSegment routes an inbound datagram to the connection identified by
// id, implementing the "inbound segment arrives" callback source of
// spec.md section 5.
func (r *Registry) DispatchSegment(id xid.ID, raw []byte) error {
	c, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("registry: no connection registered for %s", id)
	}
	c.OnSegment(raw)
	return nil
}

// DispatchReadable routes an "application input is readable" callback to
// the connection identified by id.
func (r *Registry) DispatchReadable(id xid.ID) error {
	c, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("registry: no connection registered for %s", id)
	}
	c.OnApplicationReadable()
	return nil
}

// Tick implements the periodic timer dispatch of spec.md section 4.6,
// calling OnTick on every live connection. It collects every
// conn.ErrRetransmitCapExceeded encountered (the connections that returned
// it have already been destroyed and spliced out of the registry by the
// time Tick returns) rather than stopping at the first one, since a single
// tick may legitimately kill more than one moribund connection.
func (r *Registry) Tick() []error {
	var dead []*conn.ConnectionState
	r.Each(func(c *conn.ConnectionState) {
		dead = append(dead, c)
	})

	var errs []error
	for _, c := range dead {
		if c.Destroyed() {
			continue // already torn down by an earlier iteration this tick
		}
		if err := c.OnTick(); err != nil {
			errs = append(errs, fmt.Errorf("connection %s: %w", c.ID, err))
		}
	}
	return errs
}
