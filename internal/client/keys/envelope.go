package keys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/box"
)

// Sealed is the ciphertext half of a relay envelope: an ephemeral sender
// public key, the box nonce and the box ciphertext, all base64.
type Sealed struct {
	EphPubB64 string
	NonceB64  string
	CTB64     string
}

// SealEnvelope encrypts plaintext to the recipient's messaging public key
// with a one-shot ephemeral X25519 keypair. The ephemeral private key is
// discarded on return, so only the recipient can ever open the box.
func SealEnvelope(plaintext []byte, rcptEncPubB64 string) (*Sealed, error) {
	rcptPub, err := DecodeB64To32(rcptEncPubB64)
	if err != nil {
		return nil, fmt.Errorf("recipient key: %w", err)
	}

	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	ct := box.Seal(nil, plaintext, &nonce, &rcptPub, ephPriv)

	return &Sealed{
		EphPubB64: EncodeB64(ephPub[:]),
		NonceB64:  EncodeB64(nonce[:]),
		CTB64:     EncodeB64(ct),
	}, nil
}

// OpenEnvelope decrypts a received envelope with the recipient's messaging
// private key.
func OpenEnvelope(s *Sealed, ks *KeySet) ([]byte, error) {
	ephPub, err := DecodeB64To32(s.EphPubB64)
	if err != nil {
		return nil, fmt.Errorf("ephemeral key: %w", err)
	}
	nonceBytes, err := DecodeB64(s.NonceB64)
	if err != nil || len(nonceBytes) != 24 {
		return nil, fmt.Errorf("bad nonce")
	}
	ct, err := DecodeB64(s.CTB64)
	if err != nil {
		return nil, fmt.Errorf("bad ciphertext encoding")
	}

	var nonce [24]byte
	copy(nonce[:], nonceBytes)

	plaintext, ok := box.Open(nil, ct, &nonce, &ephPub, &ks.EncPriv)
	if !ok {
		return nil, fmt.Errorf("envelope does not open with this key")
	}
	return plaintext, nil
}

// EncodeB64 encodes key material the way the relay ecosystem exchanges it:
// URL-safe base64 without padding.
func EncodeB64(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeB64 accepts both base64 alphabets, padded or not.
func DecodeB64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	trimmed := strings.TrimRight(s, "=")
	if b, err := base64.RawStdEncoding.DecodeString(trimmed); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(trimmed)
}

// DecodeB64To32 decodes a base64 value that must be exactly 32 bytes.
func DecodeB64To32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := DecodeB64(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
