package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/mkondo/ludo/internal/model"
)

// PostgresLibraryRepo is the PostgreSQL-backed library repository.
type PostgresLibraryRepo struct {
	db *sql.DB
}

// NewPostgresLibraryRepo creates a PostgresLibraryRepo.
func NewPostgresLibraryRepo(db *sql.DB) *PostgresLibraryRepo {
	return &PostgresLibraryRepo{db: db}
}

// ListByUserID returns the user's library entries, newest first.
func (r *PostgresLibraryRepo) ListByUserID(ctx context.Context, userID string) ([]*model.LibraryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, game_id, order_id, added_at
		 FROM library_entries WHERE user_id = $1
		 ORDER BY added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list library entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.LibraryEntry
	for rows.Next() {
		entry := &model.LibraryEntry{}
		if err := rows.Scan(&entry.UserID, &entry.GameID, &entry.OrderID, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate library entries: %w", err)
	}
	return entries, nil
}

// Owns reports whether the user owns the given game.
func (r *PostgresLibraryRepo) Owns(ctx context.Context, userID, gameID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM library_entries WHERE user_id = $1 AND game_id = $2)`,
		userID, gameID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return exists, nil
}

// OwnedGameIDs returns the subset of gameIDs the user already owns.
func (r *PostgresLibraryRepo) OwnedGameIDs(ctx context.Context, userID string, gameIDs []string) ([]string, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id FROM library_entries WHERE user_id = $1 AND game_id = ANY($2)`,
		userID, pq.Array(gameIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to check owned games: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owned game ID: %w", err)
		}
		owned = append(owned, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owned game IDs: %w", err)
	}
	return owned, nil
}

// PostgresCartRepo is the PostgreSQL-backed cart repository.
type PostgresCartRepo struct {
	db *sql.DB
}

// NewPostgresCartRepo creates a PostgresCartRepo.
func NewPostgresCartRepo(db *sql.DB) *PostgresCartRepo {
	return &PostgresCartRepo{db: db}
}

// ListByUserID returns the user's cart items, newest first.
func (r *PostgresCartRepo) ListByUserID(ctx context.Context, userID string) ([]*model.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, game_id, added_at FROM cart_items
		 WHERE user_id = $1 ORDER BY added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []*model.CartItem
	for rows.Next() {
		item := &model.CartItem{}
		if err := rows.Scan(&item.UserID, &item.GameID, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return items, nil
}

// Add inserts a cart item.
func (r *PostgresCartRepo) Add(ctx context.Context, item *model.CartItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, game_id, added_at) VALUES ($1, $2, $3)`,
		item.UserID, item.GameID, item.AddedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert cart item: %w", err)
	}
	return nil
}

// Remove deletes a cart item.
func (r *PostgresCartRepo) Remove(ctx context.Context, userID, gameID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND game_id = $2`,
		userID, gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// PostgresWishlistRepo is the PostgreSQL-backed wishlist repository.
type PostgresWishlistRepo struct {
	db *sql.DB
}

// NewPostgresWishlistRepo creates a PostgresWishlistRepo.
func NewPostgresWishlistRepo(db *sql.DB) *PostgresWishlistRepo {
	return &PostgresWishlistRepo{db: db}
}

// ListByUserID returns the user's wishlist items, newest first.
func (r *PostgresWishlistRepo) ListByUserID(ctx context.Context, userID string) ([]*model.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, game_id, added_at FROM wishlist_items
		 WHERE user_id = $1 ORDER BY added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	var items []*model.WishlistItem
	for rows.Next() {
		item := &model.WishlistItem{}
		if err := rows.Scan(&item.UserID, &item.GameID, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishlist items: %w", err)
	}
	return items, nil
}

// Add inserts a wishlist item.
func (r *PostgresWishlistRepo) Add(ctx context.Context, item *model.WishlistItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, game_id, added_at) VALUES ($1, $2, $3)`,
		item.UserID, item.GameID, item.AddedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert wishlist item: %w", err)
	}
	return nil
}

// Remove deletes a wishlist item.
func (r *PostgresWishlistRepo) Remove(ctx context.Context, userID, gameID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND game_id = $2`,
		userID, gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

// PostgresOrderRepo is the PostgreSQL-backed order repository.
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo creates a PostgresOrderRepo.
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// CreateCheckout atomically inserts the order and its library entries and
// clears the user's cart.
func (r *PostgresOrderRepo) CreateCheckout(ctx context.Context, order *model.Order, entries []*model.LibraryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total_cents, created_at) VALUES ($1, $2, $3, $4)`,
		order.ID, order.UserID, order.TotalCents, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, entry := range entries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO library_entries (user_id, game_id, order_id, added_at)
			 VALUES ($1, $2, $3, $4)`,
			entry.UserID, entry.GameID, entry.OrderID, entry.AddedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateKey
			}
			return fmt.Errorf("failed to insert library entry: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`, order.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByUserID returns the user's orders, newest first.
func (r *PostgresOrderRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total_cents, o.created_at,
		        COALESCE(array_agg(l.game_id) FILTER (WHERE l.game_id IS NOT NULL), '{}')
		 FROM orders o
		 LEFT JOIN library_entries l ON l.order_id = o.id
		 WHERE o.user_id = $1
		 GROUP BY o.id
		 ORDER BY o.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order := &model.Order{}
		if err := rows.Scan(&order.ID, &order.UserID, &order.TotalCents, &order.CreatedAt, pq.Array(&order.GameIDs)); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// compile-time interface checks
var (
	_ LibraryRepository  = (*PostgresLibraryRepo)(nil)
	_ CartRepository     = (*PostgresCartRepo)(nil)
	_ WishlistRepository = (*PostgresWishlistRepo)(nil)
	_ OrderRepository    = (*PostgresOrderRepo)(nil)
)
