// Package common defines shared constants and sentinel errors used across
// client and server layers of sealpost. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorDuplicateEmail = errors.New("email is already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Token shape and claim errors. All are terminal rejections of the
	// current request; nothing here is retryable.
	ErrMalformedToken       = errors.New("malformed token")
	ErrUnsupportedAlgorithm = errors.New("unsupported token algorithm")
	ErrMissingBearerToken   = errors.New("missing bearer token")
	ErrMissingTimeClaims    = errors.New("missing iat/exp claims")
	ErrMissingTokenID       = errors.New("missing jti claim")

	// Token lifecycle errors.
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token issued in the future")
	ErrReplayDetected   = errors.New("token replay detected")

	// Identity errors.
	ErrIdentityMismatch = errors.New("identity mismatch")
	ErrUnknownIdentity  = errors.New("unknown identity")

	// ErrKeyDecode means a stored verification key the server itself cannot
	// parse: server-side data corruption, not attacker input. Surfaced to
	// operators distinctly, collapsed to a generic rejection externally.
	ErrKeyDecode    = errors.New("stored key decode error")
	ErrBadSignature = errors.New("bad token signature")

	// Request-level errors raised by handlers around the auth guard.
	ErrInvalidAct       = errors.New("invalid act claim for this operation")
	ErrUnknownRecipient = errors.New("unknown recipient")
	ErrForbidden        = errors.New("forbidden")
)
