package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery"

func TestEmailSalt(t *testing.T) {
	s1 := EmailSalt("Alice@Example.COM")
	s2 := EmailSalt("  alice@example.com  ")
	assert.Equal(t, s1, s2)
	assert.Len(t, s1, 16)

	assert.NotEqual(t, s1, EmailSalt("bob@example.com"))
}

func TestDeriveDeterministic_Stable(t *testing.T) {
	if testing.Short() {
		t.Skip("argon2 derivation is slow")
	}

	a, err := DeriveDeterministic("alice@example.com", []byte(testPassword))
	require.NoError(t, err)
	b, err := DeriveDeterministic("alice@example.com", []byte(testPassword))
	require.NoError(t, err)

	assert.Equal(t, a.SignPub, b.SignPub)
	assert.Equal(t, a.EncPub, b.EncPub)

	c, err := DeriveDeterministic("alice@example.com", []byte(testPassword+"x"))
	require.NoError(t, err)
	assert.NotEqual(t, a.SignPub, c.SignPub)
}

func TestDeriveDeterministic_ShortPassword(t *testing.T) {
	_, err := DeriveDeterministic("alice@example.com", []byte("short"))
	assert.Error(t, err)
}

func TestKeySet_SignAndEncryptDiffer(t *testing.T) {
	if testing.Short() {
		t.Skip("argon2 derivation is slow")
	}

	ks, err := DeriveDeterministic("alice@example.com", []byte(testPassword))
	require.NoError(t, err)

	msg := []byte("hello")
	sig := ed25519.Sign(ks.SignPriv, msg)
	assert.True(t, ed25519.Verify(ks.SignPub, msg, sig))

	assert.NotEqual(t, ks.SignPub, ed25519.PublicKey(ks.EncPub[:]))
}

func TestSealOpenMaster(t *testing.T) {
	if testing.Short() {
		t.Skip("argon2 derivation is slow")
	}

	det, err := DeriveDeterministic("alice@example.com", []byte(testPassword))
	require.NoError(t, err)

	master := make([]byte, 32)
	_, err = rand.Read(master)
	require.NoError(t, err)

	sealed, err := SealMaster(master, det.EncPub)
	require.NoError(t, err)

	opened, err := OpenMaster(sealed, det)
	require.NoError(t, err)
	assert.Equal(t, master, opened)

	// a different password yields keys that cannot open the master
	other, err := DeriveDeterministic("alice@example.com", []byte(testPassword+"x"))
	require.NoError(t, err)
	_, err = OpenMaster(sealed, other)
	assert.Error(t, err)
}

func TestRuntimeFromMaster_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("argon2 derivation is slow")
	}

	master, ks, err := DeriveRandom()
	require.NoError(t, err)

	again, err := RuntimeFromMaster(master)
	require.NoError(t, err)
	assert.Equal(t, ks.SignPub, again.SignPub)
	assert.Equal(t, ks.EncPub, again.EncPub)
}

func TestSealOpenEnvelope(t *testing.T) {
	if testing.Short() {
		t.Skip("argon2 derivation is slow")
	}

	_, rcpt, err := DeriveRandom()
	require.NoError(t, err)

	plaintext := []byte("the pump house at midnight")
	sealed, err := SealEnvelope(plaintext, EncodeB64(rcpt.EncPub[:]))
	require.NoError(t, err)

	opened, err := OpenEnvelope(sealed, rcpt)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	// anyone else fails
	_, eavesdropper, err := DeriveRandom()
	require.NoError(t, err)
	_, err = OpenEnvelope(sealed, eavesdropper)
	assert.Error(t, err)
}

func TestDecodeB64_BothAlphabets(t *testing.T) {
	raw := []byte{0xfb, 0xef, 0xff, 0x01, 0x02}

	std := "++//AQI="
	url := "--__AQI"

	b, err := DecodeB64(std)
	require.NoError(t, err)
	assert.Equal(t, raw, b)

	b, err = DecodeB64(url)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
}
