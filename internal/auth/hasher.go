// Package auth provides credential hashing, session tokens, reset tokens
// and the orchestration of the authentication flows.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Hasher produces and verifies one-way password digests.
type Hasher interface {
	// Hash returns a salted digest of the plaintext password.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches the stored digest.
	Verify(plaintext, digest string) bool
}

// BcryptHasher implements Hasher with bcrypt. Each digest carries its own
// random salt, so hashing the same password twice yields different digests.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt digest of plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest.
// Any comparison failure, including a malformed digest, is a mismatch.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
