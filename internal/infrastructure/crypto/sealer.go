// Package crypto seals credential values at rest with ChaCha20-Poly1305.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealedPrefix tags sealed values so Open can pass unsealed values through.
const sealedPrefix = "enc:v1:"

var (
	ErrCorrupt = errors.New("sealed value is corrupt")
	ErrNoKey   = errors.New("sealed value found but no secrets key is configured")
)

// Sealer implements ports.SecretSealer. The zero value is not usable; build
// one with New or Plaintext.
type Sealer struct {
	aead cipher.AEAD
}

// New derives a 256-bit key from passphrase with HKDF-SHA256.
func New(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("crypto: empty secrets key")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(passphrase), []byte("backoffice"), []byte("client-credentials"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("crypto: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Plaintext returns a sealer that stores values as given. It exists for
// development setups without a secrets key.
func Plaintext() *Sealer {
	return &Sealer{}
}

// Keyed reports whether values are actually encrypted.
func (s *Sealer) Keyed() bool { return s.aead != nil }

// Seal encrypts plaintext. Empty values stay empty.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" || s.aead == nil {
		return plaintext, nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix
// are returned unchanged.
func (s *Sealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return sealed, nil
	}
	if s.aead == nil {
		return "", ErrNoKey
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", ErrCorrupt
	}
	nonce, ct := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrCorrupt
	}
	return string(plain), nil
}
