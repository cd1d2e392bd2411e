// Package token implements the compact signed-token format used by the
// relay: three dot-separated base64url segments (header, payload,
// signature). Parsing keeps the original encoded segments so the signed
// byte range is exactly what the client produced; it is never rebuilt by
// re-encoding the parsed JSON.
package token

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/sealpost/internal/common"
)

// AlgEdDSA is the only signature algorithm the relay accepts.
const AlgEdDSA = "EdDSA"

// Header is the decoded first segment of a compact token.
type Header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid,omitempty"`
	Typ string `json:"typ,omitempty"`
}

// Claims is the decoded second segment. Act carries the intent the token
// was minted for ("login", "send", "ws.open", ...); RcptID is only set on
// channel-open tokens.
type Claims struct {
	Subject   string `json:"sub,omitempty"`
	Act       string `json:"act,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	TokenID   string `json:"jti,omitempty"`
	RcptID    string `json:"rcpt_id,omitempty"`
}

// jwt.Claims implementation, so Claims can be signed with jwt.NewWithClaims.

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)              { return "", nil }
func (c Claims) GetSubject() (string, error)             { return c.Subject, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// Token is the full parse result. SigningInput is the ASCII byte range
// "header_b64.payload_b64" taken verbatim from the compact form.
type Token struct {
	Header       Header
	Claims       Claims
	Signature    []byte
	SigningInput []byte
}

// Identity resolves the identity the token asserts: the header kid when
// present, otherwise the payload subject. The second return is false when
// neither is set.
func (t *Token) Identity() (string, bool) {
	if v := strings.TrimSpace(t.Header.Kid); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(t.Claims.Subject); v != "" {
		return v, true
	}
	return "", false
}

// Parse splits and decodes a compact token. Any shape problem (wrong
// number of segments, bad base64url, non-object JSON) is reported as
// common.ErrMalformedToken.
func Parse(compact string) (*Token, error) {
	parser := jwt.NewParser()

	_, parts, err := parser.ParseUnverified(compact, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	}

	headerBytes, err := parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header segment: %v", common.ErrMalformedToken, err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: header json: %v", common.ErrMalformedToken, err)
	}

	claimBytes, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload segment: %v", common.ErrMalformedToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(claimBytes, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload json: %v", common.ErrMalformedToken, err)
	}

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %v", common.ErrMalformedToken, err)
	}

	return &Token{
		Header:       header,
		Claims:       claims,
		Signature:    sig,
		SigningInput: []byte(parts[0] + "." + parts[1]),
	}, nil
}

// Sign mints a compact EdDSA token with the given claims. kid goes into the
// header so the server can resolve the identity without touching the payload.
func Sign(claims Claims, kid string, priv ed25519.PrivateKey) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	if kid != "" {
		t.Header["kid"] = kid
	}
	return t.SignedString(priv)
}
