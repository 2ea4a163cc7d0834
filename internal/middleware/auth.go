// Package middleware provides the HTTP middleware chain.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// contextKey is a type-safe key for values stored in a request context.
type contextKey string

// userIDContextKey carries the authenticated user ID.
var userIDContextKey = contextKey("user_id")

// TokenValidator resolves a bearer token to a user ID.
// The token is fully validated (signature, issuer, audience, expiry)
// before the subject is trusted.
type TokenValidator interface {
	UserIDFromToken(token string) (string, error)
}

// NewAuthMiddleware returns middleware that reads the Authorization
// bearer token, validates it, and injects the authenticated user ID into
// the request context. Unauthenticated requests get 401.
func NewAuthMiddleware(tokens TokenValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			userID, err := tokens.UserIDFromToken(token)
			if err != nil {
				// Invalid and expired tokens are indistinguishable to the
				// caller; the reason stays out of the response.
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// UserIDFromContext returns the authenticated user ID from the request
// context. Only valid on requests that passed the auth middleware.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID injects a user ID into a context.
// Used in tests and non-middleware context construction.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
