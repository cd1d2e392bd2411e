package auth

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

// DefaultReplayTTLFloor is the minimum retention window for seen token ids,
// so short-lived tokens are still remembered long enough to catch fast
// replay attempts.
const DefaultReplayTTLFloor = 10 * time.Minute

// ReplayGuard is a time-bounded cache of accepted single-use token ids.
// Check and record happen in one critical section: two concurrent requests
// carrying the same id can never both observe "absent".
type ReplayGuard struct {
	mu       sync.Mutex
	seen     map[string]int64 // jti -> expiry (unix seconds)
	ttlFloor time.Duration
}

func NewReplayGuard(ttlFloor time.Duration) *ReplayGuard {
	if ttlFloor <= 0 {
		ttlFloor = DefaultReplayTTLFloor
	}
	return &ReplayGuard{
		seen:     make(map[string]int64),
		ttlFloor: ttlFloor,
	}
}

// CheckAndRecord sweeps expired entries, rejects an already-seen id with
// common.ErrReplayDetected and otherwise records the id until
// max(exp, now+ttlFloor). The full sweep is O(entries) per call, which is
// fine for a single-process relay; a high-throughput deployment would swap
// it for a lazily expiring priority structure.
func (g *ReplayGuard) CheckAndRecord(jti string, now, exp int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, expiry := range g.seen {
		if expiry < now {
			delete(g.seen, id)
		}
	}

	if jti == "" {
		return common.ErrMissingTokenID
	}
	if _, ok := g.seen[jti]; ok {
		return common.ErrReplayDetected
	}

	keepUntil := now + int64(g.ttlFloor.Seconds())
	if exp > keepUntil {
		keepUntil = exp
	}
	g.seen[jti] = keepUntil
	return nil
}

// Len reports the number of live records, for tests and diagnostics.
func (g *ReplayGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
