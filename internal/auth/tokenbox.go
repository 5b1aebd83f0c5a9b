package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// TokenBox seals GitHub access tokens before they are written to the database
// and opens them again when the dashboard needs to call GitHub.
//
// It uses NaCl secretbox (XSalsa20-Poly1305): every sealed value carries its
// own random nonce and an authenticator, so a tampered or foreign value fails
// to open instead of decrypting to garbage.
//
// The 32-byte key is derived from the server secret with HKDF-SHA256, so no
// second secret has to be configured.
type TokenBox struct {
	key [32]byte
}

// NewTokenBox derives the sealing key from secret.
func NewTokenBox(secret string) (*TokenBox, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token box secret must be at least 16 characters")
	}

	box := &TokenBox{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("mydevjourney github token"))
	if _, err := io.ReadFull(kdf, box.key[:]); err != nil {
		return nil, fmt.Errorf("auth: deriving token key: %w", err)
	}
	return box, nil
}

// Seal encrypts plaintext and returns it base64-encoded (nonce || box).
// The empty string seals to the empty string.
func (b *TokenBox) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("auth: generating nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (b *TokenBox) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("auth: decoding sealed token: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("auth: sealed token too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", errors.New("auth: sealed token failed authentication")
	}
	return string(plain), nil
}
