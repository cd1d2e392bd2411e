package auth

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

func TestReplayGuard_FirstSeenThenReplay(t *testing.T) {
	t.Parallel()

	g := NewReplayGuard(DefaultReplayTTLFloor)
	now := time.Now().Unix()

	if err := g.CheckAndRecord("jti-1", now, now+300); err != nil {
		t.Fatalf("first use rejected: %v", err)
	}
	err := g.CheckAndRecord("jti-1", now, now+300)
	if !errors.Is(err, common.ErrReplayDetected) {
		t.Fatalf("expected ErrReplayDetected, got %v", err)
	}
}

func TestReplayGuard_EmptyID(t *testing.T) {
	t.Parallel()

	g := NewReplayGuard(0)
	now := time.Now().Unix()
	if err := g.CheckAndRecord("", now, now+300); !errors.Is(err, common.ErrMissingTokenID) {
		t.Fatalf("expected ErrMissingTokenID, got %v", err)
	}
}

func TestReplayGuard_SweepEvictsExpired(t *testing.T) {
	t.Parallel()

	g := NewReplayGuard(time.Second)
	now := time.Now().Unix()

	if err := g.CheckAndRecord("old", now, now+1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Far enough in the future that the stored expiry has passed.
	later := now + 120
	if err := g.CheckAndRecord("old", later, later+300); err != nil {
		t.Fatalf("expected expired entry to be evicted and id reusable, got %v", err)
	}
}

func TestReplayGuard_TTLFloorExtendsShortLivedTokens(t *testing.T) {
	t.Parallel()

	g := NewReplayGuard(10 * time.Minute)
	now := time.Now().Unix()

	// Token expires in 5 seconds, but the floor keeps the record alive.
	if err := g.CheckAndRecord("short", now, now+5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	soon := now + 60
	err := g.CheckAndRecord("short", soon, soon+5)
	if !errors.Is(err, common.ErrReplayDetected) {
		t.Fatalf("short-lived token must still be remembered, got %v", err)
	}
}

func TestReplayGuard_ConcurrentSameID_ExactlyOneWins(t *testing.T) {
	t.Parallel()

	g := NewReplayGuard(DefaultReplayTTLFloor)
	now := time.Now().Unix()

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- g.CheckAndRecord("contended", now, now+300)
		}()
	}
	wg.Wait()
	close(results)

	var ok, replayed int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrReplayDetected):
			replayed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || replayed != workers-1 {
		t.Fatalf("expected exactly one acceptance, got ok=%d replayed=%d", ok, replayed)
	}
}

func TestReplayGuard_SweepBoundsMemory(t *testing.T) {
	t.Parallel()

	g := NewReplayGuard(time.Second)
	now := time.Now().Unix()

	for i := 0; i < 100; i++ {
		if err := g.CheckAndRecord(fmt.Sprintf("jti-%d", i), now, now+1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	later := now + 120
	if err := g.CheckAndRecord("fresh", later, later+300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Len(); got != 1 {
		t.Fatalf("expected sweep to leave 1 record, got %d", got)
	}
}
