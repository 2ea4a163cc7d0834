package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkondo/ludo/internal/model"
)

// PostgresPostRepo is the PostgreSQL-backed community post repository.
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo creates a PostgresPostRepo.
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// FindByID returns the post with the given ID, or nil if absent.
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, title, body_html, created_at FROM posts WHERE id = $1`,
		id,
	).Scan(&post.ID, &post.AuthorID, &post.Title, &post.BodyHTML, &post.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	return post, nil
}

// List returns posts newest first with cursor pagination.
func (r *PostgresPostRepo) List(ctx context.Context, cursor time.Time, cursorID string, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	if cursor.IsZero() {
		cursor = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
		cursorID = ""
	}

	// Row comparison on (created_at, id) so rows sharing the boundary
	// timestamp are not skipped between pages.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author_id, title, body_html, created_at FROM posts
		 WHERE (created_at, id) < ($1, $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		cursor, cursorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post := &model.Post{}
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Title, &post.BodyHTML, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}
	return posts, nil
}

// Create inserts a post.
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, body_html, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.AuthorID, post.Title, post.BodyHTML, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Delete removes a post.
func (r *PostgresPostRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
