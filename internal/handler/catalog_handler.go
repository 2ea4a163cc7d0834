package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkondo/ludo/internal/catalog"
	"github.com/mkondo/ludo/internal/model"
)

// CatalogServiceInterface is the service surface the catalog handler needs.
type CatalogServiceInterface interface {
	List(ctx context.Context, in catalog.ListInput) (*catalog.Page, error)
	Get(ctx context.Context, id string) (*model.Game, error)
}

// CatalogHandler serves the game catalog endpoints.
type CatalogHandler struct {
	service CatalogServiceInterface
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(service CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type gameResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre"`
	PriceCents  int    `json:"price_cents"`
	CoverURL    string `json:"cover_url,omitempty"`
	ReleasedAt  string `json:"released_at,omitempty"`
}

func toGameResponse(g *model.Game) gameResponse {
	resp := gameResponse{
		ID:          g.ID,
		Slug:        g.Slug,
		Title:       g.Title,
		Description: g.Description,
		Genre:       g.Genre,
		PriceCents:  g.PriceCents,
		CoverURL:    g.CoverURL,
	}
	if g.ReleasedAt != nil {
		resp.ReleasedAt = g.ReleasedAt.Format(timeFormat)
	}
	return resp
}

func toGameResponses(games []*model.Game) []gameResponse {
	out := make([]gameResponse, len(games))
	for i, g := range games {
		out[i] = toGameResponse(g)
	}
	return out
}

// List returns a page of catalog entries.
// GET /api/games?genre=&q=&cursor=&limit=
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
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

	page, err := h.service.List(r.Context(), catalog.ListInput{
		Genre:  q.Get("genre"),
		Query:  q.Get("q"),
		Cursor: q.Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", struct {
		Games      []gameResponse `json:"games"`
		NextCursor string         `json:"next_cursor,omitempty"`
	}{
		Games:      toGameResponses(page.Games),
		NextCursor: page.NextCursor,
	})
}

// Get returns one catalog entry.
// GET /api/games/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toGameResponse(game))
}
