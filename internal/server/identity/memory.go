package identity

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

// MemoryRepository keeps identities in process memory, indexed by email
// with a secondary recipient-handle index. It is the default backend for a
// single-process relay; mutations happen only under the internal lock.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*Identity
	byRcpt  map[string]string // rcpt_id -> email
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byEmail: make(map[string]*Identity),
		byRcpt:  make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, id *Identity) (*Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[id.Email]; ok {
		return nil, common.ErrorDuplicateEmail
	}

	stored := *id
	r.byEmail[stored.Email] = &stored
	r.byRcpt[stored.RcptID] = stored.Email

	out := stored
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *id
	return &out, nil
}

func (r *MemoryRepository) GetByRcptID(ctx context.Context, rcptID string) (*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.byRcpt[rcptID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *r.byEmail[email]
	return &out, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Identity, 0, len(r.byEmail))
	for _, id := range r.byEmail {
		cp := *id
		out = append(out, &cp)
	}
	return out, nil
}
