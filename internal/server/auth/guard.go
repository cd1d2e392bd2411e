// Package auth is the composition root of the token pipeline: bearer
// extraction, codec parse, algorithm and identity checks, freshness,
// signature verification and the anti-replay record. Handlers get back a
// verified identity plus the decoded token, and stay responsible for
// checking the act claim themselves, because intent is endpoint-specific.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealpost/internal/common"
	"github.com/dmitrijs2005/sealpost/internal/server/identity"
	"github.com/dmitrijs2005/sealpost/internal/token"
)

const bearerPrefix = "Bearer "

// IdentityLookup is the slice of the identity store the guard needs.
type IdentityLookup interface {
	GetByEmail(ctx context.Context, email string) (*identity.Identity, error)
}

// Guard runs the authentication pipeline. It holds no per-request state;
// every call is a single pass ending in a verified identity or a sentinel
// rejection from the common package.
type Guard struct {
	identities IdentityLookup
	replay     *ReplayGuard
	leeway     time.Duration
}

func NewGuard(identities IdentityLookup, replay *ReplayGuard, leeway time.Duration) *Guard {
	if leeway <= 0 {
		leeway = token.DefaultLeeway
	}
	return &Guard{identities: identities, replay: replay, leeway: leeway}
}

// ExtractBearer pulls the compact token out of an Authorization header
// value. The scheme prefix is matched case-insensitively.
func ExtractBearer(authorization string) (string, error) {
	if len(authorization) <= len(bearerPrefix) ||
		!strings.EqualFold(authorization[:len(bearerPrefix)], bearerPrefix) {
		return "", common.ErrMissingBearerToken
	}
	compact := strings.TrimSpace(authorization[len(bearerPrefix):])
	if compact == "" {
		return "", common.ErrMissingBearerToken
	}
	return compact, nil
}

// Authenticate verifies an Authorization header plus the separately claimed
// email (e.g. the X-User-Email header).
func (g *Guard) Authenticate(ctx context.Context, authorization, claimedEmail string) (*identity.Identity, *token.Token, error) {
	compact, err := ExtractBearer(authorization)
	if err != nil {
		return nil, nil, err
	}
	return g.AuthenticateToken(ctx, compact, claimedEmail)
}

// AuthenticateToken is the same pipeline without the header extraction
// step; the realtime channel handshake passes the compact token directly.
//
// Cheap structural checks run before any store or crypto work. The replay
// record is written only after the signature has been verified, so a forged
// token carrying someone else's future jti cannot poison the cache and deny
// the legitimate token.
func (g *Guard) AuthenticateToken(ctx context.Context, compact, claimedEmail string) (*identity.Identity, *token.Token, error) {
	tok, err := token.Parse(compact)
	if err != nil {
		return nil, nil, err
	}

	if tok.Header.Alg != token.AlgEdDSA {
		return nil, nil, common.ErrUnsupportedAlgorithm
	}

	tokenEmail, ok := tok.Identity()
	claimed := strings.TrimSpace(claimedEmail)
	if !ok || claimed == "" {
		return nil, nil, common.ErrIdentityMismatch
	}
	if !strings.EqualFold(claimed, tokenEmail) {
		return nil, nil, common.ErrIdentityMismatch
	}

	id, err := g.identities.GetByEmail(ctx, claimed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrUnknownIdentity
		}
		return nil, nil, err
	}

	now, err := token.VerifyTimes(tok.Claims.IssuedAt, tok.Claims.ExpiresAt, g.leeway)
	if err != nil {
		return nil, nil, err
	}

	if err := VerifySignature(id.SignPub, tok.SigningInput, tok.Signature); err != nil {
		return nil, nil, err
	}

	if err := g.replay.CheckAndRecord(tok.Claims.TokenID, now, tok.Claims.ExpiresAt); err != nil {
		return nil, nil, err
	}

	return id, tok, nil
}
