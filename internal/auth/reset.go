package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// resetTokenBytes is the entropy of a reset token. 32 bytes (256 bits),
// never truncated.
const resetTokenBytes = 32

// GenerateResetToken returns a new opaque reset token and the hash under
// which it is persisted. Only the hash ever reaches the database; the
// plaintext token exists solely for delivery to the user.
func GenerateResetToken() (token, tokenHash string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(b)
	return token, HashResetToken(token), nil
}

// HashResetToken returns the storage hash for a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
