package utils

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredentialEncryptor_RequiresSecret(t *testing.T) {
	for _, secret := range []string{"", "   "} {
		_, err := NewCredentialEncryptor(secret)
		assert.ErrorIs(t, err, ErrMissingEncryptionKey)
	}
}

func TestEncrypt_EnvelopeFormat(t *testing.T) {
	enc, err := NewCredentialEncryptor("unit-test-secret")
	require.NoError(t, err)
	plaintext := `{"projectId":"p","serviceAccountKey":"k"}`

	envelope, err := enc.Encrypt(plaintext)
	require.NoError(t, err)

	ivHex, ctHex, ok := strings.Cut(envelope, ":")
	require.True(t, ok)
	iv, err := hex.DecodeString(ivHex)
	require.NoError(t, err)
	assert.Len(t, iv, 16)
	ct, err := hex.DecodeString(ctHex)
	require.NoError(t, err)
	assert.Zero(t, len(ct)%16)
	assert.NotContains(t, envelope, "projectId")
	assert.NotEqual(t, plaintext, envelope)
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	enc, err := NewCredentialEncryptor("unit-test-secret")
	require.NoError(t, err)

	a, err := enc.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := enc.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	ivA, _, _ := strings.Cut(a, ":")
	ivB, _, _ := strings.Cut(b, ":")
	assert.NotEqual(t, ivA, ivB)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	enc, err := NewCredentialEncryptor("unit-test-secret")
	require.NoError(t, err)

	for _, plaintext := range []string{"", "x", strings.Repeat("a", 16), `{"accessKey":"AKIA","secretKey":"s","region":"eu-west-1"}`} {
		envelope, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		got, err := enc.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestDecrypt_WrongSecretFailsOrDiffers(t *testing.T) {
	enc, _ := NewCredentialEncryptor("secret-a")
	other, _ := NewCredentialEncryptor("secret-b")

	envelope, err := enc.Encrypt("top secret credentials payload")
	require.NoError(t, err)

	got, err := other.Decrypt(envelope)
	if err == nil {
		assert.NotEqual(t, "top secret credentials payload", got)
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	enc, _ := NewCredentialEncryptor("unit-test-secret")
	tests := []string{
		"no-separator",
		"zz:00",
		"0011:" + strings.Repeat("00", 16),
		strings.Repeat("00", 16) + ":abc",
		strings.Repeat("00", 16) + ":",
	}
	for _, envelope := range tests {
		_, err := enc.Decrypt(envelope)
		assert.ErrorIs(t, err, ErrMalformedEnvelope, envelope)
	}
}

func TestEncrypt_UsesInjectedRandomness(t *testing.T) {
	enc, _ := NewCredentialEncryptor("unit-test-secret")
	enc.rand = bytes.NewReader(bytes.Repeat([]byte{0xAB}, 16))

	envelope, err := enc.Encrypt("p")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(envelope, strings.Repeat("ab", 16)+":"))
}

func TestPKCS7(t *testing.T) {
	padded := pkcs7Pad([]byte("abc"), 16)
	assert.Len(t, padded, 16)
	out, err := pkcs7Unpad(padded, 16)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)

	full := pkcs7Pad(bytes.Repeat([]byte("a"), 16), 16)
	assert.Len(t, full, 32)

	bad := append(bytes.Repeat([]byte{1}, 15), 3)
	_, err = pkcs7Unpad(bad, 16)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}
