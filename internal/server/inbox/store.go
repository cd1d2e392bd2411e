// Package inbox queues undelivered envelopes per recipient handle. It is
// the durability fallback for recipients with no live connection: a message
// is always enqueued first and only then offered to live connections.
package inbox

import (
	"sync"
	"time"
)

// Envelope is an opaque sealed message plus routing and timing metadata.
// The ciphertext fields are never interpreted by the server. TSServer is
// assigned at receipt.
type Envelope struct {
	V         int       `json:"v"`
	RcptID    string    `json:"rcpt_id"`
	TSClient  time.Time `json:"ts_client"`
	EphPubB64 string    `json:"eph_pub_b64"`
	NonceB64  string    `json:"nonce_b64"`
	CTB64     string    `json:"ct_b64"`
	TSServer  time.Time `json:"ts_server"`
}

// Store is an in-memory per-recipient queue with destructive reads. All
// operations share one mutex; enqueue order within a recipient is the order
// of arrival at the lock.
type Store struct {
	mu     sync.Mutex
	queues map[string][]Envelope

	now func() time.Time // test seam
}

func NewStore() *Store {
	return &Store{
		queues: make(map[string][]Envelope),
		now:    time.Now,
	}
}

// Enqueue stamps the envelope with the server receipt time and appends it
// to the recipient's queue, creating the queue on first use. The stored
// envelope is returned so callers can push the exact queued value to live
// connections.
func (s *Store) Enqueue(rcptID string, env Envelope) Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	env.TSServer = s.now().UTC()
	s.queues[rcptID] = append(s.queues[rcptID], env)
	return env
}

// Drain atomically returns the recipient's queued envelopes in insertion
// order and empties the queue. This is a destructive read: once returned,
// the envelopes are considered delivered and a second immediate call yields
// nothing.
func (s *Store) Drain(rcptID string) []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[rcptID]
	delete(s.queues, rcptID)
	return q
}

// Pending reports the queue length without consuming it.
func (s *Store) Pending(rcptID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[rcptID])
}
