// Package cleanup provides the expired reset-token purge job.
// Password reset tokens expire after 24 hours; consumed tokens are
// deleted immediately, so only abandoned flows accumulate. The job runs
// daily and is idempotent.
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor abstracts ExecContext so the job accepts *sql.DB or *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CleanupJob deletes password reset tokens past their expiry.
type CleanupJob struct {
	db     Executor
	logger *slog.Logger
}

// NewCleanupJob creates a CleanupJob.
func NewCleanupJob(db Executor, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		db:     db,
		logger: logger,
	}
}

// Run deletes every reset token whose expires_at has passed.
// Idempotent: no matching rows is not an error.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	query := `DELETE FROM password_reset_tokens WHERE expires_at < now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		j.logger.Error("reset token cleanup failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to run reset token cleanup: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("failed to read deleted row count",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to read deleted row count: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("reset token cleanup finished",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
