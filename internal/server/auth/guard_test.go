package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sealpost/internal/common"
	"github.com/dmitrijs2005/sealpost/internal/server/identity"
	"github.com/dmitrijs2005/sealpost/internal/token"
)

type guardFixture struct {
	guard *Guard
	repo  *identity.MemoryRepository
	priv  ed25519.PrivateKey
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	repo := identity.NewMemoryRepository()
	_, err = repo.Create(context.Background(), &identity.Identity{
		Email:   "a@x.com",
		SignPub: base64.StdEncoding.EncodeToString(pub),
		RcptID:  "H1",
	})
	require.NoError(t, err)

	return &guardFixture{
		guard: NewGuard(repo, NewReplayGuard(DefaultReplayTTLFloor), token.DefaultLeeway),
		repo:  repo,
		priv:  priv,
	}
}

func (f *guardFixture) mint(t *testing.T, mutate func(*token.Claims)) string {
	t.Helper()

	now := time.Now().Unix()
	claims := token.Claims{
		Subject:   "a@x.com",
		Act:       "send",
		IssuedAt:  now,
		ExpiresAt: now + 300,
		TokenID:   "jti-" + mustRandHex(t),
	}
	if mutate != nil {
		mutate(&claims)
	}
	compact, err := token.Sign(claims, "a@x.com", f.priv)
	require.NoError(t, err)
	return compact
}

func mustRandHex(t *testing.T) string {
	t.Helper()
	s, err := common.MakeRandHexString(8)
	require.NoError(t, err)
	return s
}

func TestGuard_Authenticate_Success(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, nil)

	id, tok, err := f.guard.Authenticate(context.Background(), "Bearer "+compact, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, "H1", id.RcptID)
	assert.Equal(t, "send", tok.Claims.Act)
}

func TestGuard_BearerSchemeCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, nil)

	_, _, err := f.guard.Authenticate(context.Background(), "bearer "+compact, "a@x.com")
	require.NoError(t, err)
}

func TestGuard_MissingBearer(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		_, _, err := f.guard.Authenticate(context.Background(), header, "a@x.com")
		assert.ErrorIs(t, err, common.ErrMissingBearerToken, "header %q", header)
	}
}

func TestGuard_ReplayedToken(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, nil)
	ctx := context.Background()

	_, _, err := f.guard.AuthenticateToken(ctx, compact, "a@x.com")
	require.NoError(t, err)

	_, _, err = f.guard.AuthenticateToken(ctx, compact, "a@x.com")
	assert.ErrorIs(t, err, common.ErrReplayDetected)
}

func TestGuard_ExpiredToken_RegardlessOfSignature(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, func(c *token.Claims) {
		c.IssuedAt = time.Now().Unix() - 3600
		c.ExpiresAt = time.Now().Unix() - 600
	})

	_, _, err := f.guard.AuthenticateToken(context.Background(), compact, "a@x.com")
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGuard_MissingTimeClaims(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, func(c *token.Claims) {
		c.IssuedAt = 0
		c.ExpiresAt = 0
	})

	_, _, err := f.guard.AuthenticateToken(context.Background(), compact, "a@x.com")
	assert.ErrorIs(t, err, common.ErrMissingTimeClaims)
}

func TestGuard_MissingTokenID(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, func(c *token.Claims) { c.TokenID = "" })

	_, _, err := f.guard.AuthenticateToken(context.Background(), compact, "a@x.com")
	assert.ErrorIs(t, err, common.ErrMissingTokenID)
}

func TestGuard_IdentityMismatch(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, nil)
	ctx := context.Background()

	_, _, err := f.guard.AuthenticateToken(ctx, compact, "b@x.com")
	assert.ErrorIs(t, err, common.ErrIdentityMismatch)

	_, _, err = f.guard.AuthenticateToken(ctx, compact, "")
	assert.ErrorIs(t, err, common.ErrIdentityMismatch)
}

func TestGuard_EmailComparisonIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	compact := f.mint(t, nil)

	// Token says a@x.com, header says A@X.COM; the store lookup uses the
	// claimed form, which is not registered under that exact key.
	_, _, err := f.guard.AuthenticateToken(context.Background(), compact, "A@X.COM")
	assert.ErrorIs(t, err, common.ErrUnknownIdentity)
}

func TestGuard_UnknownIdentity(t *testing.T) {
	t.Parallel()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	f := newGuardFixture(t)
	now := time.Now().Unix()
	compact, err := token.Sign(token.Claims{
		Subject:   "ghost@x.com",
		IssuedAt:  now,
		ExpiresAt: now + 300,
		TokenID:   "jti-ghost",
	}, "ghost@x.com", priv)
	require.NoError(t, err)

	_, _, err = f.guard.AuthenticateToken(context.Background(), compact, "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrUnknownIdentity)
}

func TestGuard_AlgNoneRejectedBeforeVerification(t *testing.T) {
	t.Parallel()

	// The registered identity carries an undecodable signing key: if the
	// pipeline ever reached signature verification, the error would be
	// ErrKeyDecode rather than ErrUnsupportedAlgorithm.
	repo := identity.NewMemoryRepository()
	_, err := repo.Create(context.Background(), &identity.Identity{
		Email:   "a@x.com",
		SignPub: "not-a-key",
		RcptID:  "H1",
	})
	require.NoError(t, err)
	guard := NewGuard(repo, NewReplayGuard(0), 0)

	now := time.Now().Unix()
	compact := encodeUnsigned(t, `{"alg":"none"}`, now)

	_, _, err = guard.AuthenticateToken(context.Background(), compact, "a@x.com")
	assert.ErrorIs(t, err, common.ErrUnsupportedAlgorithm)
}

func encodeUnsigned(t *testing.T, headerJSON string, now int64) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(headerJSON))
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(
		`{"sub":"a@x.com","act":"send","iat":%d,"exp":%d,"jti":"j1"}`, now, now+300)))
	sig := base64.RawURLEncoding.EncodeToString([]byte("junk"))
	return header + "." + payload + "." + sig
}

func TestGuard_ForgedTokenDoesNotBurnVictimJTI(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	ctx := context.Background()

	// Attacker signs with their own key but copies the victim's jti.
	_, attackerPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	now := time.Now().Unix()
	claims := token.Claims{
		Subject:   "a@x.com",
		Act:       "send",
		IssuedAt:  now,
		ExpiresAt: now + 300,
		TokenID:   "victim-jti",
	}
	forged, err := token.Sign(claims, "a@x.com", attackerPriv)
	require.NoError(t, err)

	_, _, err = f.guard.AuthenticateToken(ctx, forged, "a@x.com")
	require.ErrorIs(t, err, common.ErrBadSignature)

	// The legitimate token with the same jti must still be accepted:
	// signature verification happens before the replay record is written.
	legit, err := token.Sign(claims, "a@x.com", f.priv)
	require.NoError(t, err)
	_, _, err = f.guard.AuthenticateToken(ctx, legit, "a@x.com")
	require.NoError(t, err)
}

func TestGuard_ConcurrentSameJTI_ExactlyOneVerified(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t)
	ctx := context.Background()

	compact := f.mint(t, func(c *token.Claims) { c.TokenID = "contended-jti" })

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.guard.AuthenticateToken(ctx, compact, "a@x.com")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, replayed int
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, common.ErrReplayDetected)
			replayed++
		}
	}
	assert.Equal(t, 1, ok, "exactly one attempt must verify")
	assert.Equal(t, workers-1, replayed)
}
