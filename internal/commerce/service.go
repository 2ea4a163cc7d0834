// Package commerce provides the cart, wishlist, checkout and library
// domain logic.
package commerce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

// Metrics receives checkout events. A nil Metrics is a no-op.
type Metrics interface {
	RecordCheckout(totalCents int)
}

// Service is the commerce service layer. Checkout has no payment step;
// the order records what was bought and the catalog total at that moment.
type Service struct {
	cartRepo     repository.CartRepository
	wishlistRepo repository.WishlistRepository
	libraryRepo  repository.LibraryRepository
	orderRepo    repository.OrderRepository
	gameRepo     repository.GameRepository
	metrics      Metrics

	now func() time.Time
}

// NewService creates a new Service instance. metrics may be nil.
func NewService(
	cartRepo repository.CartRepository,
	wishlistRepo repository.WishlistRepository,
	libraryRepo repository.LibraryRepository,
	orderRepo repository.OrderRepository,
	gameRepo repository.GameRepository,
	metrics Metrics,
) *Service {
	return &Service{
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		libraryRepo:  libraryRepo,
		orderRepo:    orderRepo,
		gameRepo:     gameRepo,
		metrics:      metrics,
		now:          time.Now,
	}
}

// CartLine is one cart entry joined with its catalog data.
type CartLine struct {
	Game    *model.Game
	AddedAt time.Time
}

// CartView is the user's cart with the running catalog total.
type CartView struct {
	Lines      []CartLine
	TotalCents int
}

// ViewCart returns the user's cart joined with catalog data.
// Games removed from the catalog since they were added are skipped.
func (s *Service) ViewCart(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := &CartView{Lines: []CartLine{}}
	if len(items) == 0 {
		return view, nil
	}

	games, err := s.gamesByID(ctx, items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		game, ok := games[item.GameID]
		if !ok {
			continue
		}
		view.Lines = append(view.Lines, CartLine{Game: game, AddedAt: item.AddedAt})
		view.TotalCents += game.PriceCents
	}
	return view, nil
}

// AddToCart puts a game in the user's cart.
// Owned games and duplicates are conflicts.
func (s *Service) AddToCart(ctx context.Context, userID, gameID string) error {
	if err := s.checkAddable(ctx, userID, gameID); err != nil {
		return err
	}

	item := &model.CartItem{UserID: userID, GameID: gameID, AddedAt: s.now().UTC()}
	if err := s.cartRepo.Add(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return model.NewAlreadyInCartError()
		}
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

// RemoveFromCart takes a game out of the user's cart.
// Removing an absent item succeeds silently.
func (s *Service) RemoveFromCart(ctx context.Context, userID, gameID string) error {
	if err := s.cartRepo.Remove(ctx, userID, gameID); err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

// Wishlist returns the user's wishlist joined with catalog data.
func (s *Service) Wishlist(ctx context.Context, userID string) ([]*model.Game, error) {
	items, err := s.wishlistRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}
	if len(items) == 0 {
		return []*model.Game{}, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.GameID
	}
	byID, err := s.gameMap(ctx, ids)
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(items))
	for _, item := range items {
		if game, ok := byID[item.GameID]; ok {
			games = append(games, game)
		}
	}
	return games, nil
}

// AddToWishlist puts a game on the user's wishlist.
// Owned games and duplicates are conflicts.
func (s *Service) AddToWishlist(ctx context.Context, userID, gameID string) error {
	if err := s.checkAddable(ctx, userID, gameID); err != nil {
		return err
	}

	item := &model.WishlistItem{UserID: userID, GameID: gameID, AddedAt: s.now().UTC()}
	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return model.NewAlreadyWishlistedError()
		}
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

// RemoveFromWishlist takes a game off the user's wishlist.
// Removing an absent item succeeds silently.
func (s *Service) RemoveFromWishlist(ctx context.Context, userID, gameID string) error {
	if err := s.wishlistRepo.Remove(ctx, userID, gameID); err != nil {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

// Checkout converts the user's cart into an order and library entries
// atomically, then returns the order. The total is computed from catalog
// prices at checkout time.
func (s *Service) Checkout(ctx context.Context, userID string) (*model.Order, error) {
	items, err := s.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, model.NewCartEmptyError()
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.GameID
	}

	byID, err := s.gameMap(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, model.NewGameNotFoundError(id)
		}
	}

	owned, err := s.libraryRepo.OwnedGameIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if len(owned) > 0 {
		return nil, model.NewAlreadyOwnedError()
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		GameIDs:   ids,
		CreatedAt: now,
	}
	entries := make([]*model.LibraryEntry, len(ids))
	for i, id := range ids {
		order.TotalCents += byID[id].PriceCents
		entries[i] = &model.LibraryEntry{
			UserID:  userID,
			GameID:  id,
			OrderID: order.ID,
			AddedAt: now,
		}
	}

	if err := s.orderRepo.CreateCheckout(ctx, order, entries); err != nil {
		// A concurrent checkout of the same game loses to the library's
		// primary key.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewAlreadyOwnedError()
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCheckout(order.TotalCents)
	}
	return order, nil
}

// LibraryItem is one owned game with its acquisition time.
type LibraryItem struct {
	Game    *model.Game
	AddedAt time.Time
}

// Library returns the user's owned games, newest first.
func (s *Service) Library(ctx context.Context, userID string) ([]LibraryItem, error) {
	entries, err := s.libraryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	if len(entries) == 0 {
		return []LibraryItem{}, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.GameID
	}
	byID, err := s.gameMap(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]LibraryItem, 0, len(entries))
	for _, e := range entries {
		if game, ok := byID[e.GameID]; ok {
			items = append(items, LibraryItem{Game: game, AddedAt: e.AddedAt})
		}
	}
	return items, nil
}

// Orders returns the user's orders, newest first.
func (s *Service) Orders(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// checkAddable verifies the game exists and the user does not own it yet.
func (s *Service) checkAddable(ctx context.Context, userID, gameID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}
	if game == nil {
		return model.NewGameNotFoundError(gameID)
	}

	owns, err := s.libraryRepo.Owns(ctx, userID, gameID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if owns {
		return model.NewAlreadyOwnedError()
	}
	return nil
}

func (s *Service) gamesByID(ctx context.Context, items []*model.CartItem) (map[string]*model.Game, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.GameID
	}
	return s.gameMap(ctx, ids)
}

func (s *Service) gameMap(ctx context.Context, ids []string) (map[string]*model.Game, error) {
	games, err := s.gameRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	byID := make(map[string]*model.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return byID, nil
}
