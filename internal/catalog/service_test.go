package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

type mockGameRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Game, error)
	listFn     func(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error)
}

func (m *mockGameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockGameRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Game, error) {
	return nil, nil
}
func (m *mockGameRepo) List(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}
func (m *mockGameRepo) Create(ctx context.Context, game *model.Game) error { return nil }

var _ repository.GameRepository = (*mockGameRepo)(nil)

func gamesOfLen(n int) []*model.Game {
	games := make([]*model.Game, n)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range games {
		games[i] = &model.Game{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return games
}

func TestService_List_Defaults(t *testing.T) {
	var gotFilter repository.GameFilter
	repo := &mockGameRepo{
		listFn: func(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
			gotFilter = filter
			return gamesOfLen(3), nil
		},
	}
	svc := NewService(repo)

	page, err := svc.List(context.Background(), ListInput{Genre: "rpg", Query: "elden"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if gotFilter.Limit != defaultPageSize {
		t.Errorf("limit = %d, want default %d", gotFilter.Limit, defaultPageSize)
	}
	if gotFilter.Genre != "rpg" || gotFilter.Query != "elden" {
		t.Errorf("filter not passed through: %+v", gotFilter)
	}
	if !gotFilter.Cursor.IsZero() {
		t.Errorf("cursor should be zero for the first page, got %v", gotFilter.Cursor)
	}
	if page.NextCursor != "" {
		t.Errorf("partial page must have empty NextCursor, got %q", page.NextCursor)
	}
}

func TestService_List_LimitCapped(t *testing.T) {
	var gotLimit int
	repo := &mockGameRepo{
		listFn: func(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
			gotLimit = filter.Limit
			return nil, nil
		},
	}
	svc := NewService(repo)

	if _, err := svc.List(context.Background(), ListInput{Limit: 10000}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if gotLimit != maxPageSize {
		t.Errorf("limit = %d, want cap %d", gotLimit, maxPageSize)
	}
}

func TestService_List_FullPageHasNextCursor(t *testing.T) {
	repo := &mockGameRepo{
		listFn: func(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
			return gamesOfLen(filter.Limit), nil
		},
	}
	svc := NewService(repo)

	page, err := svc.List(context.Background(), ListInput{Limit: 5})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.NextCursor == "" {
		t.Fatal("full page must carry a NextCursor")
	}

	last := page.Games[len(page.Games)-1]
	want := last.CreatedAt.Format(time.RFC3339Nano) + "," + last.ID
	if page.NextCursor != want {
		t.Errorf("NextCursor = %q, want %q", page.NextCursor, want)
	}
}

func TestService_List_CursorRoundTrip(t *testing.T) {
	var gotFilter repository.GameFilter
	repo := &mockGameRepo{
		listFn: func(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	svc := NewService(repo)

	cursor := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	_, err := svc.List(context.Background(), ListInput{Cursor: encodeCursor(cursor, "game-42")})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !gotFilter.Cursor.Equal(cursor) {
		t.Errorf("cursor = %v, want %v", gotFilter.Cursor, cursor)
	}
	if gotFilter.CursorID != "game-42" {
		t.Errorf("cursor ID = %q, want game-42", gotFilter.CursorID)
	}
}

// The boundary row's id rides in the cursor so rows that share its
// timestamp are not skipped on the next page.
func TestService_List_NextCursorCarriesBoundaryID(t *testing.T) {
	sameTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var gotFilter repository.GameFilter
	repo := &mockGameRepo{
		listFn: func(ctx context.Context, filter repository.GameFilter) ([]*model.Game, error) {
			gotFilter = filter
			games := make([]*model.Game, filter.Limit)
			for i := range games {
				games[i] = &model.Game{ID: fmt.Sprintf("game-%d", i), CreatedAt: sameTime}
			}
			return games, nil
		},
	}
	svc := NewService(repo)

	page, err := svc.List(context.Background(), ListInput{Limit: 2})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if _, err := svc.List(context.Background(), ListInput{Limit: 2, Cursor: page.NextCursor}); err != nil {
		t.Fatalf("List with NextCursor returned error: %v", err)
	}
	if !gotFilter.Cursor.Equal(sameTime) {
		t.Errorf("cursor = %v, want the shared timestamp %v", gotFilter.Cursor, sameTime)
	}
	if gotFilter.CursorID != "game-1" {
		t.Errorf("cursor ID = %q, want the boundary row's id game-1", gotFilter.CursorID)
	}
}

func TestService_List_InvalidCursor(t *testing.T) {
	svc := NewService(&mockGameRepo{})

	for _, cursor := range []string{"not-a-time", "not-a-time,game-1", "2025-06-01T12:00:00Z"} {
		_, err := svc.List(context.Background(), ListInput{Cursor: cursor})
		var verrs model.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("cursor %q: expected ValidationErrors, got %T: %v", cursor, err, err)
		}
		if verrs[0].Field != "cursor" {
			t.Errorf("cursor %q: failing field = %q, want cursor", cursor, verrs[0].Field)
		}
	}
}

func TestService_Get(t *testing.T) {
	repo := &mockGameRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Game, error) {
			return &model.Game{ID: id, Title: "Hollow Knight"}, nil
		},
	}
	svc := NewService(repo)

	game, err := svc.Get(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if game.Title != "Hollow Knight" {
		t.Errorf("Title = %q", game.Title)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockGameRepo{})

	_, err := svc.Get(context.Background(), "nope")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeGameNotFound {
		t.Errorf("error code = %q, want GAME_NOT_FOUND", apiErr.Code)
	}
}
