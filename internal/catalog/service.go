// Package catalog provides the game catalog domain logic.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the catalog service layer: listing and lookup only.
// Catalog entries are seeded by migrations or operators; there is no
// public write surface.
type Service struct {
	gameRepo repository.GameRepository
}

// NewService creates a new Service instance.
func NewService(gameRepo repository.GameRepository) *Service {
	return &Service{gameRepo: gameRepo}
}

// ListInput narrows a catalog listing. Cursor is an opaque value taken
// from a previous page's NextCursor, empty for the first page.
type ListInput struct {
	Genre  string
	Query  string
	Cursor string
	Limit  int
}

// Page is one page of catalog results. NextCursor is empty on the last page.
type Page struct {
	Games      []*model.Game
	NextCursor string
}

// List returns games newest first, filtered by genre and title substring,
// with cursor pagination.
func (s *Service) List(ctx context.Context, in ListInput) (*Page, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := repository.GameFilter{
		Genre: in.Genre,
		Query: in.Query,
		Limit: limit,
	}
	if in.Cursor != "" {
		cursor, cursorID, err := decodeCursor(in.Cursor)
		if err != nil {
			return nil, model.ValidationErrors{}.Add("cursor", "invalid cursor")
		}
		filter.Cursor = cursor
		filter.CursorID = cursorID
	}

	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	page := &Page{Games: games}
	if len(games) == limit {
		last := games[len(games)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// encodeCursor packs the boundary row's (created_at, id) into the opaque
// cursor. The id tie-breaks rows that share a timestamp.
func encodeCursor(t time.Time, id string) string {
	return t.Format(time.RFC3339Nano) + "," + id
}

func decodeCursor(s string) (time.Time, string, error) {
	ts, id, ok := strings.Cut(s, ",")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("cursor is missing the row id")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("cursor timestamp is malformed: %w", err)
	}
	return t, id, nil
}

// Get returns the game with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if game == nil {
		return nil, model.NewGameNotFoundError(id)
	}
	return game, nil
}
