package persistence

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealInfo = "vitalmotion session slots v1"

// PassphraseSealer encrypts slot files with XChaCha20-Poly1305 under a key
// derived from a passphrase.
type PassphraseSealer struct {
	key []byte
}

// NewPassphraseSealer derives the sealing key. An empty passphrase is rejected.
func NewPassphraseSealer(passphrase string) (*PassphraseSealer, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(sealInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &PassphraseSealer{key: key}, nil
}

// Seal returns nonce || ciphertext.
func (s *PassphraseSealer) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(sealInfo)), nil
}

// Open reverses Seal.
func (s *PassphraseSealer) Open(sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("sealed data too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, []byte(sealInfo))
}
