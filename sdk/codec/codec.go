// Package codec implements the symmetric AEAD codec used to protect secrets
// and subscription URLs carried in profile/rule-provider/sub-logs URLs.
package codec

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// keySize is the normalized AEAD key length.
const keySize = 32

// nonceSize is the ChaCha20-Poly1305 nonce length.
const nonceSize = chacha20poly1305.NonceSize

// Error kinds returned by Encrypt/Decrypt. Callers match with errors.Is.
var (
	// ErrBadFormat is returned when an encrypted string does not contain
	// exactly one colon separating the base64 nonce from the ciphertext.
	ErrBadFormat = errors.New("codec: bad format, expected \"nonce:ciphertext\"")
	// ErrBase64 is returned when either half fails base64 decoding.
	ErrBase64 = errors.New("codec: invalid base64")
	// ErrAead is returned when AEAD authentication fails, e.g. wrong key
	// or tampered ciphertext.
	ErrAead = errors.New("codec: aead authentication failed")
)

// normalizeKey zero-pads or truncates key to exactly 32 bytes.
func normalizeKey(key []byte) [keySize]byte {
	var normalized [keySize]byte
	n := len(key)
	if n > keySize {
		n = keySize
	}
	copy(normalized[:n], key[:n])
	return normalized
}

// Encrypt encrypts plaintext under key, returning
// base64(nonce) + ":" + base64(ciphertext). A fresh random nonce is drawn
// per call.
func Encrypt(key []byte, plaintext string) (string, error) {
	normalized := normalizeKey(key)
	aead, err := chacha20poly1305.New(normalized[:])
	if err != nil {
		return "", fmt.Errorf("codec: init aead: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("codec: read nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(nonce) + ":" + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt, or returns a wrapped ErrBadFormat, ErrBase64, or
// ErrAead. Decryption never returns partial output.
func Decrypt(key []byte, encrypted string) (string, error) {
	parts := strings.Split(encrypted, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: got %d part(s)", ErrBadFormat, len(parts))
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", ErrBase64, err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrBase64, err)
	}
	if len(nonce) != nonceSize {
		return "", fmt.Errorf("%w: nonce length %d", ErrBadFormat, len(nonce))
	}

	normalized := normalizeKey(key)
	aead, err := chacha20poly1305.New(normalized[:])
	if err != nil {
		return "", fmt.Errorf("codec: init aead: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAead, err)
	}
	return string(plaintext), nil
}
