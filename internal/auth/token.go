package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mkondo/ludo/internal/model"
)

// TokenConfig configures session token issuance and validation.
// Secret must be non-empty; config.Load enforces that at startup.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Claims is the session token claim set: subject is the user ID, plus
// username and email alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenManager issues and validates signed session tokens (HS256 JWT).
// Tokens are stateless: they are invalidated only by expiry.
type TokenManager struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{config: config, now: time.Now}
}

// Issue creates a signed token for the user. ID, Username and Email must
// all be non-empty.
func (m *TokenManager) Issue(user *model.User) (string, error) {
	if user == nil || user.ID == "" || user.Username == "" || user.Email == "" {
		return "", fmt.Errorf("cannot issue token: user identity is incomplete")
	}

	issuedAt := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.config.TTL)),
		},
		Name:  user.Username,
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.config.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer, audience and expiry (zero leeway)
// and returns the claim set. The error carries the failure reason rather
// than collapsing every failure into a bare false.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.config.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Valid reports whether the token passes full validation.
// Introspection endpoint convenience; internal callers use Validate to
// keep the failure reason.
func (m *TokenManager) Valid(tokenString string) bool {
	_, err := m.Validate(tokenString)
	return err == nil
}

// UserIDFromToken returns the subject claim after FULL validation.
// Claims are never extracted from an unverified token.
func (m *TokenManager) UserIDFromToken(tokenString string) (string, error) {
	claims, err := m.Validate(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject claim")
	}
	return claims.Subject, nil
}
