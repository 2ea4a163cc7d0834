package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkondo/ludo/internal/community"
	"github.com/mkondo/ludo/internal/model"
)

// CommunityServiceInterface is the service surface the community handler
// needs.
type CommunityServiceInterface interface {
	CreatePost(ctx context.Context, authorID, title, bodyHTML string) (*model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context, cursor string, limit int) (*community.Page, error)
	DeletePost(ctx context.Context, userID, postID string) error
}

// CommunityHandler serves the community post endpoints.
type CommunityHandler struct {
	service CommunityServiceInterface
}

// NewCommunityHandler creates a CommunityHandler.
func NewCommunityHandler(service CommunityServiceInterface) *CommunityHandler {
	return &CommunityHandler{service: service}
}

type postResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Title     string `json:"title"`
	BodyHTML  string `json:"body_html"`
	CreatedAt string `json:"created_at"`
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		BodyHTML:  p.BodyHTML,
		CreatedAt: p.CreatedAt.Format(timeFormat),
	}
}

// Create stores a new post by the caller.
// POST /api/posts
func (h *CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Title    string `json:"title"`
		BodyHTML string `json:"body_html"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, req.Title, req.BodyHTML)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "post created", toPostResponse(post))
}

// List returns a page of posts, newest first.
// GET /api/posts?cursor=&limit=
func (h *CommunityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	page, err := h.service.ListPosts(r.Context(), q.Get("cursor"), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	posts := make([]postResponse, len(page.Posts))
	for i, p := range page.Posts {
		posts[i] = toPostResponse(p)
	}
	writeData(w, http.StatusOK, "", struct {
		Posts      []postResponse `json:"posts"`
		NextCursor string         `json:"next_cursor,omitempty"`
	}{
		Posts:      posts,
		NextCursor: page.NextCursor,
	})
}

// Get returns one post.
// GET /api/posts/{id}
func (h *CommunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toPostResponse(post))
}

// Delete removes the caller's own post.
// DELETE /api/posts/{id}
func (h *CommunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
