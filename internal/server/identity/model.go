package identity

import "time"

// DefaultVersion records the key-derivation scheme the client used when the
// identity was registered. Clients rely on it to re-derive keys on login.
const DefaultVersion = "v1;a2id:t=3,m=64;hkdf:v1"

// Identity is a registered participant. All key material is opaque base64
// produced on the client; the server never decodes anything except the
// signing key, and only to verify token signatures. Identities are
// immutable after creation.
type Identity struct {
	Email        string
	SignPub      string // Ed25519 verification key, base64 (either alphabet)
	EncPub       string // X25519 public key, base64
	SealedMaster string // master secret sealed to the deterministic X25519 key
	Version      string
	RcptID       string // opaque server-generated recipient handle
	CreatedAt    time.Time
}
