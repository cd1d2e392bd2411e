package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

func TestService_Register_AssignsHandleAndVersion(t *testing.T) {
	t.Parallel()

	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	id, err := s.Register(ctx, " a@x.com ", "spub", "epub", "sealed")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", id.Email)
	assert.NotEmpty(t, id.RcptID)
	assert.Equal(t, DefaultVersion, id.Version)

	other, err := s.Register(ctx, "b@x.com", "spub2", "epub2", "sealed2")
	require.NoError(t, err)
	assert.NotEqual(t, id.RcptID, other.RcptID)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "s", "e", "m")
	require.NoError(t, err)

	_, err = s.Register(ctx, "a@x.com", "s2", "e2", "m2")
	assert.ErrorIs(t, err, common.ErrorDuplicateEmail)
}

func TestService_Register_Validation(t *testing.T) {
	t.Parallel()

	s := NewService(NewMemoryRepository())
	ctx := context.Background()

	cases := []struct {
		name                     string
		email, sign, enc, sealed string
	}{
		{"empty email", "", "s", "e", "m"},
		{"not an email", "nope", "s", "e", "m"},
		{"missing sign key", "a@x.com", "", "e", "m"},
		{"missing enc key", "a@x.com", "s", "", "m"},
		{"missing sealed master", "a@x.com", "s", "e", ""},
	}
	for _, tc := range cases {
		_, err := s.Register(ctx, tc.email, tc.sign, tc.enc, tc.sealed)
		assert.ErrorIs(t, err, common.ErrorValidation, tc.name)
	}
}

func TestMemoryRepository_Lookups(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &Identity{Email: "a@x.com", RcptID: "H1", SignPub: "s"})
	require.NoError(t, err)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.RcptID, byEmail.RcptID)

	byRcpt, err := repo.GetByRcptID(ctx, "H1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byRcpt.Email)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByRcptID(ctx, "H2")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &Identity{Email: "a@x.com", RcptID: "H1", SignPub: "orig"})
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	got.SignPub = "mutated"

	again, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "orig", again.SignPub, "stored identity must be immutable")
}
