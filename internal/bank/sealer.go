package bank

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var (
	ErrSecretMissing = errors.New("the access token secret must be set")
	ErrSealBroken    = errors.New("the sealed access token cannot be opened")
)

// Sealer encrypts access tokens so that they are never stored in plain text.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the key for sealing from the secret.
func NewSealer(secret string) (Sealer, error) {
	if secret == "" {
		return Sealer{}, ErrSecretMissing
	}

	return Sealer{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal encrypts and authenticates the plain text. The result is base64 encoded
// and starts with the random nonce.
func (s Sealer) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value sealed with the same secret.
func (s Sealer) Open(sealed string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrSealBroken
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])

	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealBroken
	}

	return string(plain), nil
}
