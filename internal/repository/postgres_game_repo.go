package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mkondo/ludo/internal/model"
)

// PostgresGameRepo is the PostgreSQL-backed catalog repository.
type PostgresGameRepo struct {
	db *sql.DB
}

// NewPostgresGameRepo creates a PostgresGameRepo.
func NewPostgresGameRepo(db *sql.DB) *PostgresGameRepo {
	return &PostgresGameRepo{db: db}
}

const gameColumns = `id, slug, title, description, genre, price_cents, cover_url, released_at, created_at`

func scanGame(row interface{ Scan(...any) error }) (*model.Game, error) {
	game := &model.Game{}
	var releasedAt sql.NullTime
	err := row.Scan(
		&game.ID, &game.Slug, &game.Title, &game.Description, &game.Genre,
		&game.PriceCents, &game.CoverURL, &releasedAt, &game.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if releasedAt.Valid {
		game.ReleasedAt = &releasedAt.Time
	}
	return game, nil
}

// FindByID returns the game with the given ID, or nil if absent.
func (r *PostgresGameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	game, err := scanGame(r.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find game by ID: %w", err)
	}
	return game, nil
}

// FindByIDs returns the games matching ids.
func (r *PostgresGameRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find games by IDs: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// List returns games matching the filter, newest first.
func (r *PostgresGameRepo) List(ctx context.Context, filter GameFilter) ([]*model.Game, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	cursor := filter.Cursor
	cursorID := filter.CursorID
	if cursor.IsZero() {
		// Far-future sentinel so the first page starts from the newest row.
		cursor = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
		cursorID = ""
	}

	// Row comparison on (created_at, id) so rows sharing the boundary
	// timestamp are not skipped between pages.
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games
		 WHERE (created_at, id) < ($1, $2)
		   AND ($3 = '' OR genre = $3)
		   AND ($4 = '' OR title ILIKE '%' || $4 || '%')
		 ORDER BY created_at DESC, id DESC
		 LIMIT $5`,
		cursor, cursorID, filter.Genre, filter.Query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()
	return collectGames(rows)
}

// Create inserts a catalog entry.
func (r *PostgresGameRepo) Create(ctx context.Context, game *model.Game) error {
	var releasedAt sql.NullTime
	if game.ReleasedAt != nil {
		releasedAt = sql.NullTime{Time: *game.ReleasedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO games (id, slug, title, description, genre, price_cents, cover_url, released_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		game.ID, game.Slug, game.Title, game.Description, game.Genre,
		game.PriceCents, game.CoverURL, releasedAt, game.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func collectGames(rows *sql.Rows) ([]*model.Game, error) {
	var games []*model.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

// compile-time interface check
var _ GameRepository = (*PostgresGameRepo)(nil)
