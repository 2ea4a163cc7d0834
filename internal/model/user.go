// Package model defines the domain models.
package model

import "time"

// User is a registered storefront account.
// PasswordHash is a bcrypt digest; plaintext passwords are never stored.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetToken is the persisted record of an outstanding reset flow.
// Only the SHA-256 hash of the opaque token is stored; the plaintext token
// exists only in the email sent to the user.
type PasswordResetToken struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
