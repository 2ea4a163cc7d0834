package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkondo/ludo/internal/model"
)

// PostgresResetTokenRepo is the PostgreSQL-backed reset token repository.
type PostgresResetTokenRepo struct {
	db *sql.DB
}

// NewPostgresResetTokenRepo creates a PostgresResetTokenRepo.
func NewPostgresResetTokenRepo(db *sql.DB) *PostgresResetTokenRepo {
	return &PostgresResetTokenRepo{db: db}
}

// Create inserts a reset token record.
func (r *PostgresResetTokenRepo) Create(ctx context.Context, token *model.PasswordResetToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.TokenHash, token.UserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}
	return nil
}

// FindByHash returns the token record, or nil if absent.
func (r *PostgresResetTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	token := &model.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, created_at
		 FROM password_reset_tokens WHERE token_hash = $1`,
		tokenHash,
	).Scan(&token.TokenHash, &token.UserID, &token.ExpiresAt, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}
	return token, nil
}

// DeleteByHash removes a single token (consumption).
func (r *PostgresResetTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE token_hash = $1`, tokenHash,
	)
	if err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	return nil
}

// DeleteByUserID removes every outstanding token for a user.
func (r *PostgresResetTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_reset_tokens WHERE user_id = $1`, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete reset tokens for user: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ResetTokenRepository = (*PostgresResetTokenRepo)(nil)
