package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrMissingEncryptionKey = errors.New("encryption key is required")
	ErrMalformedEnvelope    = errors.New("malformed credential envelope")
)

// hkdfInfo binds derived keys to this use; changing it orphans stored envelopes.
const hkdfInfo = "greenledger/cloud-credentials/aes-256-cbc/v1"

// CredentialEncryptor seals credential blobs with AES-256-CBC under a key derived
// from the process secret. Envelopes look like "ivHex:cipherHex".
type CredentialEncryptor struct {
	key  []byte
	rand io.Reader
}

func NewCredentialEncryptor(secret string) (*CredentialEncryptor, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingEncryptionKey
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &CredentialEncryptor{key: key, rand: rand.Reader}, nil
}

// Encrypt pads plaintext with PKCS#7 and encrypts it under a fresh random IV.
func (e *CredentialEncryptor) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(e.rand, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt opens an envelope produced by Encrypt with the same secret.
func (e *CredentialEncryptor) Decrypt(envelope string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(envelope, ":")
	if !ok {
		return "", ErrMalformedEnvelope
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedEnvelope
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformedEnvelope
	}
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrMalformedEnvelope
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, ErrMalformedEnvelope
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, ErrMalformedEnvelope
		}
	}
	return b[:len(b)-n], nil
}
