package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkondo/ludo/internal/model"
)

// SocialServiceInterface is the service surface the social handler needs.
type SocialServiceInterface interface {
	SendRequest(ctx context.Context, requesterID, addresseeID string) (*model.Friendship, error)
	Accept(ctx context.Context, userID, requestID string) (*model.Friendship, error)
	Decline(ctx context.Context, userID, requestID string) error
	Unfriend(ctx context.Context, userID, otherID string) error
	Friends(ctx context.Context, userID string) ([]*model.User, error)
	IncomingRequests(ctx context.Context, userID string) ([]*model.Friendship, error)
}

// SocialHandler serves the friendship endpoints.
type SocialHandler struct {
	service SocialServiceInterface
}

// NewSocialHandler creates a SocialHandler.
func NewSocialHandler(service SocialServiceInterface) *SocialHandler {
	return &SocialHandler{service: service}
}

type friendshipResponse struct {
	ID          string `json:"id"`
	RequesterID string `json:"requester_id"`
	AddresseeID string `json:"addressee_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toFriendshipResponse(f *model.Friendship) friendshipResponse {
	return friendshipResponse{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      string(f.Status),
		CreatedAt:   f.CreatedAt.Format(timeFormat),
	}
}

// SendRequest creates a pending friend request.
// POST /api/friends/requests
func (h *SocialHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		AddresseeID string `json:"addressee_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.AddresseeID == "" {
		writeBadRequest(w, "addressee_id is required")
		return
	}

	f, err := h.service.SendRequest(r.Context(), userID, req.AddresseeID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "friend request sent", toFriendshipResponse(f))
}

// ListIncoming returns pending requests addressed to the caller.
// GET /api/friends/requests
func (h *SocialHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	requests, err := h.service.IncomingRequests(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]friendshipResponse, len(requests))
	for i, f := range requests {
		resp[i] = toFriendshipResponse(f)
	}
	writeData(w, http.StatusOK, "", resp)
}

// Accept answers a pending request positively.
// POST /api/friends/requests/{id}/accept
func (h *SocialHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	f, err := h.service.Accept(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "friend request accepted", toFriendshipResponse(f))
}

// Decline answers a pending request negatively.
// POST /api/friends/requests/{id}/decline
func (h *SocialHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Decline(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFriends returns the caller's friends.
// GET /api/friends
func (h *SocialHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	friends, err := h.service.Friends(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toPublicUsers(friends))
}

// Unfriend removes an accepted friendship.
// DELETE /api/friends/{userID}
func (h *SocialHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Unfriend(r.Context(), userID, chi.URLParam(r, "userID")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
