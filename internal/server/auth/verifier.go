package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

// decodeKeyB64 accepts a stored verification key in standard or URL-safe
// base64, padded or not. Registration stores keys verbatim, so the server
// must not assume which form a client used.
func decodeKeyB64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	trimmed := strings.TrimRight(s, "=")
	if b, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
		return b, nil
	}
	if b, err := base64.RawURLEncoding.DecodeString(trimmed); err == nil {
		return b, nil
	}
	return nil, common.ErrKeyDecode
}

// VerifySignature checks the Ed25519 signature over the signed byte range
// using the identity's stored key. An undecodable or wrongly sized key is
// common.ErrKeyDecode (server-side data problem); a failed verification is
// common.ErrBadSignature.
func VerifySignature(storedKeyB64 string, signingInput, signature []byte) error {
	keyBytes, err := decodeKeyB64(storedKeyB64)
	if err != nil {
		return err
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: got %d key bytes", common.ErrKeyDecode, len(keyBytes))
	}

	method := jwt.SigningMethodEdDSA
	if err := method.Verify(string(signingInput), signature, ed25519.PublicKey(keyBytes)); err != nil {
		return common.ErrBadSignature
	}
	return nil
}
