// Package keys implements the client-side key hierarchy. A master secret is
// stretched from the password with Argon2id, then HKDF-SHA256 expands it
// into an Ed25519 signing seed and an X25519 encryption seed. Two parallel
// hierarchies exist: the deterministic one, re-derivable from email and
// password on any device, and the random messaging one, whose master is
// kept on the server sealed to the deterministic encryption key.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/box"
)

// Argon2id parameters; mirrored in the scheme version string stored with
// each identity, so they must not change without a version bump.
const (
	argonTime      = 3
	argonMemoryKiB = 64 * 1024
	argonThreads   = 4
	masterLen      = 32
)

const hkdfSalt = "hkdf-salt:v1"

// HKDF info labels. The deterministic and the random hierarchies use
// distinct labels so their keys can never collide.
const (
	infoSignDet  = "ed25519-seed:v1"
	infoEncDet   = "x25519-seed:v1"
	infoSignRand = "ed25519-seed:rand:v1"
	infoEncRand  = "x25519-seed:rand:v1"
)

const MinPasswordLen = 12

// KeySet is one derived keypair family: signing plus encryption.
type KeySet struct {
	SignPriv ed25519.PrivateKey
	SignPub  ed25519.PublicKey
	EncPriv  [32]byte
	EncPub   [32]byte
}

// EmailSalt derives the deterministic Argon2 salt from the normalized
// email: sha256(lowercase(trim(email))) truncated to 16 bytes.
func EmailSalt(email string) []byte {
	norm := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(norm))
	return sum[:16]
}

func stretch(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemoryKiB, argonThreads, masterLen)
}

func hkdf32(master []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, []byte(hkdfSalt), []byte(info))
	out := make([]byte, 32)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}

func keySetFromMaster(master []byte, signInfo, encInfo string) (*KeySet, error) {
	signSeed, err := hkdf32(master, signInfo)
	if err != nil {
		return nil, err
	}
	encSeed, err := hkdf32(master, encInfo)
	if err != nil {
		return nil, err
	}

	ks := &KeySet{}
	ks.SignPriv = ed25519.NewKeyFromSeed(signSeed)
	ks.SignPub = ks.SignPriv.Public().(ed25519.PublicKey)

	copy(ks.EncPriv[:], encSeed)
	pub, err := curve25519.X25519(ks.EncPriv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("x25519 public key: %w", err)
	}
	copy(ks.EncPub[:], pub)

	return ks, nil
}

// DeriveDeterministic rebuilds the deterministic hierarchy from email and
// password. The same inputs always yield the same keys, which is what lets
// a user log in from a fresh device.
func DeriveDeterministic(email string, password []byte) (*KeySet, error) {
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	master := stretch(password, EmailSalt(email))
	return keySetFromMaster(master, infoSignDet, infoEncDet)
}

// DeriveRandom creates a fresh random messaging hierarchy for registration.
// It returns the master secret alongside the keys; the caller seals the
// master to the deterministic encryption key and stores it on the server.
func DeriveRandom() ([]byte, *KeySet, error) {
	ikm := make([]byte, 32)
	salt := make([]byte, 16)
	if _, err := rand.Read(ikm); err != nil {
		return nil, nil, err
	}
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}

	master := stretch(ikm, salt)
	ks, err := keySetFromMaster(master, infoSignRand, infoEncRand)
	if err != nil {
		return nil, nil, err
	}
	return master, ks, nil
}

// RuntimeFromMaster rebuilds the messaging keys from an unsealed master.
func RuntimeFromMaster(master []byte) (*KeySet, error) {
	return keySetFromMaster(master, infoSignRand, infoEncRand)
}

// SealMaster seals the messaging master to the deterministic encryption
// key with an anonymous box, so only a holder of the password-derived keys
// can recover it.
func SealMaster(master []byte, detEncPub [32]byte) (string, error) {
	sealed, err := box.SealAnonymous(nil, master, &detEncPub, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("seal master: %w", err)
	}
	return EncodeB64(sealed), nil
}

// OpenMaster recovers the messaging master using the deterministic keys.
// Failure almost always means wrong credentials.
func OpenMaster(sealedB64 string, det *KeySet) ([]byte, error) {
	sealed, err := DecodeB64(sealedB64)
	if err != nil {
		return nil, fmt.Errorf("sealed master: %w", err)
	}
	master, ok := box.OpenAnonymous(nil, sealed, &det.EncPub, &det.EncPriv)
	if !ok {
		return nil, fmt.Errorf("failed to open sealed master (wrong credentials?)")
	}
	return master, nil
}
