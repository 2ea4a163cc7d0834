package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkondo/ludo/internal/commerce"
	"github.com/mkondo/ludo/internal/model"
)

// CommerceServiceInterface is the service surface the commerce handler needs.
type CommerceServiceInterface interface {
	ViewCart(ctx context.Context, userID string) (*commerce.CartView, error)
	AddToCart(ctx context.Context, userID, gameID string) error
	RemoveFromCart(ctx context.Context, userID, gameID string) error
	Wishlist(ctx context.Context, userID string) ([]*model.Game, error)
	AddToWishlist(ctx context.Context, userID, gameID string) error
	RemoveFromWishlist(ctx context.Context, userID, gameID string) error
	Checkout(ctx context.Context, userID string) (*model.Order, error)
	Library(ctx context.Context, userID string) ([]commerce.LibraryItem, error)
	Orders(ctx context.Context, userID string) ([]*model.Order, error)
}

// CommerceHandler serves the cart, wishlist, checkout and library
// endpoints.
type CommerceHandler struct {
	service CommerceServiceInterface
}

// NewCommerceHandler creates a CommerceHandler.
func NewCommerceHandler(service CommerceServiceInterface) *CommerceHandler {
	return &CommerceHandler{service: service}
}

type cartLineResponse struct {
	Game    gameResponse `json:"game"`
	AddedAt string       `json:"added_at"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	TotalCents int                `json:"total_cents"`
}

type orderResponse struct {
	ID         string   `json:"id"`
	TotalCents int      `json:"total_cents"`
	GameIDs    []string `json:"game_ids"`
	CreatedAt  string   `json:"created_at"`
}

func toOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		ID:         o.ID,
		TotalCents: o.TotalCents,
		GameIDs:    o.GameIDs,
		CreatedAt:  o.CreatedAt.Format(timeFormat),
	}
}

// gameIDRequest is the body of cart/wishlist additions.
type gameIDRequest struct {
	GameID string `json:"game_id"`
}

// ViewCart returns the caller's cart.
// GET /api/cart
func (h *CommerceHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.service.ViewCart(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := cartResponse{Lines: []cartLineResponse{}, TotalCents: view.TotalCents}
	for _, line := range view.Lines {
		resp.Lines = append(resp.Lines, cartLineResponse{
			Game:    toGameResponse(line.Game),
			AddedAt: line.AddedAt.Format(timeFormat),
		})
	}
	writeData(w, http.StatusOK, "", resp)
}

// AddToCart puts a game in the caller's cart.
// POST /api/cart/items
func (h *CommerceHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req gameIDRequest
	if err := decodeJSON(r, &req); err != nil || req.GameID == "" {
		writeBadRequest(w, "game_id is required")
		return
	}

	if err := h.service.AddToCart(r.Context(), userID, req.GameID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "added to cart", nil)
}

// RemoveFromCart takes a game out of the caller's cart.
// DELETE /api/cart/items/{gameID}
func (h *CommerceHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFromCart(r.Context(), userID, chi.URLParam(r, "gameID")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout converts the cart into an order and library entries.
// POST /api/cart/checkout
func (h *CommerceHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "checkout complete", toOrderResponse(order))
}

// ViewWishlist returns the caller's wishlist.
// GET /api/wishlist
func (h *CommerceHandler) ViewWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	games, err := h.service.Wishlist(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toGameResponses(games))
}

// AddToWishlist puts a game on the caller's wishlist.
// POST /api/wishlist
func (h *CommerceHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req gameIDRequest
	if err := decodeJSON(r, &req); err != nil || req.GameID == "" {
		writeBadRequest(w, "game_id is required")
		return
	}

	if err := h.service.AddToWishlist(r.Context(), userID, req.GameID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "added to wishlist", nil)
}

// RemoveFromWishlist takes a game off the caller's wishlist.
// DELETE /api/wishlist/{gameID}
func (h *CommerceHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFromWishlist(r.Context(), userID, chi.URLParam(r, "gameID")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ViewLibrary returns the caller's owned games.
// GET /api/library
func (h *CommerceHandler) ViewLibrary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.service.Library(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]cartLineResponse, len(items))
	for i, item := range items {
		resp[i] = cartLineResponse{
			Game:    toGameResponse(item.Game),
			AddedAt: item.AddedAt.Format(timeFormat),
		}
	}
	writeData(w, http.StatusOK, "", resp)
}

// ListOrders returns the caller's order history.
// GET /api/orders
func (h *CommerceHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.Orders(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeData(w, http.StatusOK, "", resp)
}
