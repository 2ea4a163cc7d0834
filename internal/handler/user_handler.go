package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/user"
)

// UserServiceInterface is the service surface the user handler needs.
type UserServiceInterface interface {
	Profile(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in user.UpdateProfileInput) (*model.User, error)
	Search(ctx context.Context, q string) ([]*model.User, error)
}

// UserHandler serves the profile endpoints.
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// GetProfile returns a public profile.
// GET /api/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	u, err := h.service.Profile(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toPublicUser(u))
}

// Search finds users by username substring.
// GET /api/users?q=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toPublicUsers(users))
}

// UpdateMe applies a partial update to the caller's profile.
// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, user.UpdateProfileInput{
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "profile updated", toPrivateUser(u))
}
