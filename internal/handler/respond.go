// Package handler provides the HTTP handlers and routing.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mkondo/ludo/internal/middleware"
	"github.com/mkondo/ludo/internal/model"
)

// maxBodyBytes caps request bodies; the API carries no uploads.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. The body size is capped
// and unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeData writes a success envelope.
func writeData(w http.ResponseWriter, statusCode int, message string, data any) {
	middleware.WriteEnvelope(w, statusCode, middleware.ResponseEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeBadRequest writes a single-message 400 without a field list.
func writeBadRequest(w http.ResponseWriter, message string) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "BAD_REQUEST",
		Message:  message,
		Category: model.CategoryValidation,
	})
}

// handleServiceError folds service-layer errors into HTTP responses.
// Domain errors map by category; everything else is logged server-side
// and answered with the generic 500, never with internal error text.
func handleServiceError(w http.ResponseWriter, err error) {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		middleware.WriteValidationErrors(w, verrs)
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, statusForCategory(apiErr.Category), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// statusForCategory maps an error category to an HTTP status.
func statusForCategory(category string) int {
	switch category {
	case model.CategoryAuth:
		return http.StatusUnauthorized
	case model.CategoryValidation:
		return http.StatusBadRequest
	case model.CategoryNotFound:
		return http.StatusNotFound
	case model.CategoryConflict:
		return http.StatusConflict
	case model.CategoryForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// requireUserID fetches the authenticated user ID or writes a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return "", false
	}
	return userID, true
}

// --- shared response DTOs ---

// publicUserResponse is a user as seen by other users: no email.
type publicUserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

// privateUserResponse is the caller's own account, email included.
type privateUserResponse struct {
	publicUserResponse
	Email string `json:"email"`
}

func toPublicUser(u *model.User) publicUserResponse {
	return publicUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt.Format(timeFormat),
	}
}

func toPrivateUser(u *model.User) privateUserResponse {
	return privateUserResponse{
		publicUserResponse: toPublicUser(u),
		Email:              u.Email,
	}
}

func toPublicUsers(users []*model.User) []publicUserResponse {
	out := make([]publicUserResponse, len(users))
	for i, u := range users {
		out[i] = toPublicUser(u)
	}
	return out
}

// timeFormat is the wire format for timestamps.
const timeFormat = "2006-01-02T15:04:05.999999999Z07:00" // RFC 3339 with nanoseconds
