// Package delivery tracks live realtime connections per recipient handle
// and fans queued pushes out to them on a best-effort basis.
package delivery

import (
	"context"
	"sync"
)

// Push is one realtime frame sent to a client connection.
type Push struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Conn is a live client connection. Send must be safe for concurrent use
// and should fail fast when the peer is gone.
type Conn interface {
	Send(ctx context.Context, p Push) error
}

// Result is the typed outcome of one delivery attempt to one connection.
type Result struct {
	Conn Conn
	Err  error
}

// Registry maps recipient handles to their live connections. One recipient
// may hold several simultaneous connections. A handle with no connections
// is never kept as a key.
//
// Membership changes share a single registry-wide mutex; fan-out pushes run
// on a snapshot taken under the lock but executed outside it, so a slow
// connection cannot stall register/unregister. A connection registered
// mid-fan-out may miss that particular push; its own startup path drains
// the inbox, so nothing is lost.
type Registry struct {
	mu    sync.Mutex
	conns map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[Conn]struct{})}
}

// Register adds the connection under the recipient's membership set.
// Registering the same pair twice is a no-op.
func (r *Registry) Register(rcptID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[rcptID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[rcptID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes the connection; when the membership set empties, the
// handle key is removed with it.
func (r *Registry) Unregister(rcptID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[rcptID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, rcptID)
	}
}

// Deliver pushes p to every live connection of the recipient. Connections
// whose push fails are treated as dead and unregistered. Failures are never
// surfaced to the producer: the caller has already queued the envelope
// durably, and having no live connection at all is a normal state. The
// number of successful pushes is returned for logging.
func (r *Registry) Deliver(ctx context.Context, rcptID string, p Push) int {
	snapshot := r.snapshot(rcptID)
	if len(snapshot) == 0 {
		return 0
	}

	results := make([]Result, 0, len(snapshot))
	for _, c := range snapshot {
		results = append(results, Result{Conn: c, Err: c.Send(ctx, p)})
	}

	delivered := 0
	for _, res := range results {
		if res.Err != nil {
			r.Unregister(rcptID, res.Conn)
			continue
		}
		delivered++
	}
	return delivered
}

func (r *Registry) snapshot(rcptID string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[rcptID]
	out := make([]Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Connections reports the membership count for a handle, for tests and
// diagnostics.
func (r *Registry) Connections(rcptID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[rcptID])
}

// Handles reports the number of handle keys currently held.
func (r *Registry) Handles() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
