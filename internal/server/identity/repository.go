package identity

import "context"

// Repository is the identity store contract. Create fails with
// common.ErrorDuplicateEmail when the email is taken; lookups fail with
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, id *Identity) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	GetByRcptID(ctx context.Context, rcptID string) (*Identity, error)
	List(ctx context.Context) ([]*Identity, error)
}
