package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

// Service owns registration bookkeeping: it normalizes the email, assigns
// the opaque recipient handle and stamps the scheme version. Reads are thin
// passthroughs to the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new identity. signPub, encPub and sealedMaster are
// opaque base64 values produced on the client and stored verbatim.
func (s *Service) Register(ctx context.Context, email, signPub, encPub, sealedMaster string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if signPub == "" || encPub == "" || sealedMaster == "" {
		return nil, fmt.Errorf("%w: missing key material", common.ErrorValidation)
	}

	id := &Identity{
		Email:        email,
		SignPub:      signPub,
		EncPub:       encPub,
		SealedMaster: sealedMaster,
		Version:      DefaultVersion,
		RcptID:       uuid.NewString(),
	}

	created, err := s.repo.Create(ctx, id)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByRcptID(ctx context.Context, rcptID string) (*Identity, error) {
	return s.repo.GetByRcptID(ctx, rcptID)
}

func (s *Service) List(ctx context.Context) ([]*Identity, error) {
	return s.repo.List(ctx)
}
