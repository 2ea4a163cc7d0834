package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkondo/ludo/internal/model"
)

// PostgresFriendshipRepo is the PostgreSQL-backed friendship repository.
type PostgresFriendshipRepo struct {
	db *sql.DB
}

// NewPostgresFriendshipRepo creates a PostgresFriendshipRepo.
func NewPostgresFriendshipRepo(db *sql.DB) *PostgresFriendshipRepo {
	return &PostgresFriendshipRepo{db: db}
}

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at`

func scanFriendship(row interface{ Scan(...any) error }) (*model.Friendship, error) {
	f := &model.Friendship{}
	err := row.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FindByID returns the edge with the given ID, or nil if absent.
func (r *PostgresFriendshipRepo) FindByID(ctx context.Context, id string) (*model.Friendship, error) {
	f, err := scanFriendship(r.db.QueryRowContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find friendship by ID: %w", err)
	}
	return f, nil
}

// FindByPair returns the edge between two users in either direction.
func (r *PostgresFriendshipRepo) FindByPair(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	f, err := scanFriendship(r.db.QueryRowContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE (requester_id = $1 AND addressee_id = $2)
		    OR (requester_id = $2 AND addressee_id = $1)`,
		userA, userB,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find friendship by pair: %w", err)
	}
	return f, nil
}

// Create inserts a pending edge.
func (r *PostgresFriendshipRepo) Create(ctx context.Context, f *model.Friendship) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO friendships (id, requester_id, addressee_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert friendship: %w", err)
	}
	return nil
}

// UpdateStatus transitions an edge's status.
func (r *PostgresFriendshipRepo) UpdateStatus(ctx context.Context, id string, status model.FriendshipStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE friendships SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update friendship status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("friendship not found: %s", id)
	}
	return nil
}

// Delete removes an edge.
func (r *PostgresFriendshipRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	return nil
}

// ListFriends returns the users connected to userID by accepted edges.
func (r *PostgresFriendshipRepo) ListFriends(ctx context.Context, userID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.password_hash, u.bio, u.avatar_url, u.created_at, u.updated_at
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		 WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = 'accepted'
		 ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friend row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend rows: %w", err)
	}
	return users, nil
}

// ListIncomingPending returns pending requests addressed to userID.
func (r *PostgresFriendshipRepo) ListIncomingPending(ctx context.Context, userID string) ([]*model.Friendship, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE addressee_id = $1 AND status = 'pending'
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.Friendship
	for rows.Next() {
		f, err := scanFriendship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan friendship row: %w", err)
		}
		requests = append(requests, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friendship rows: %w", err)
	}
	return requests, nil
}

// compile-time interface check
var _ FriendshipRepository = (*PostgresFriendshipRepo)(nil)
