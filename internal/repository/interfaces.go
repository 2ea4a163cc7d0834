// Package repository defines the persistence interfaces.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mkondo/ludo/internal/model"
)

// Duplicate-key sentinels. Postgres repositories translate unique_violation
// errors into these so the service layer never inspects driver errors.
// The unique indexes are the authoritative guard against check-then-create
// races; application-level existence checks are advisory only.
var (
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateKey      = errors.New("duplicate key")
)

// UserRepository persists user accounts.
// Email arguments must already be normalized (trimmed, lowercased);
// username lookups are case-insensitive.
type UserRepository interface {
	// FindByID returns the user with the given ID, or nil if absent.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns the user with the given normalized email, or nil.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername returns the user with the given username
	// (case-insensitive), or nil.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// SearchByUsername returns up to limit users whose username contains q.
	SearchByUsername(ctx context.Context, q string, limit int) ([]*model.User, error)

	// Create inserts a new user. Returns ErrDuplicateEmail or
	// ErrDuplicateUsername when a unique index rejects the row.
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateProfile updates bio and avatar URL.
	UpdateProfile(ctx context.Context, id, bio, avatarURL string) error
}

// ResetTokenRepository persists password-reset tokens, keyed by token hash.
type ResetTokenRepository interface {
	// Create inserts a reset token record.
	Create(ctx context.Context, token *model.PasswordResetToken) error

	// FindByHash returns the token record, or nil if absent.
	// Expiry is NOT checked here; callers decide.
	FindByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)

	// DeleteByHash removes a single token (consumption).
	DeleteByHash(ctx context.Context, tokenHash string) error

	// DeleteByUserID removes every outstanding token for a user, so a new
	// request invalidates prior ones.
	DeleteByUserID(ctx context.Context, userID string) error
}

// GameFilter narrows catalog listings. Pagination cursors are the
// (created_at, id) pair of the previous page's last row, so rows that
// share a timestamp are never skipped across a page boundary.
type GameFilter struct {
	Genre    string    // exact genre, empty for all
	Query    string    // case-insensitive title substring, empty for all
	Cursor   time.Time // created_at of the boundary row, zero for first page
	CursorID string    // id of the boundary row, tie-break for equal timestamps
	Limit    int
}

// GameRepository persists catalog entries.
type GameRepository interface {
	// FindByID returns the game with the given ID, or nil if absent.
	FindByID(ctx context.Context, id string) (*model.Game, error)

	// FindByIDs returns the games matching ids, in no particular order.
	// Missing IDs are silently absent from the result.
	FindByIDs(ctx context.Context, ids []string) ([]*model.Game, error)

	// List returns games matching the filter, newest first, cursor-paginated.
	List(ctx context.Context, filter GameFilter) ([]*model.Game, error)

	// Create inserts a catalog entry.
	Create(ctx context.Context, game *model.Game) error
}

// LibraryRepository persists game ownership.
type LibraryRepository interface {
	// ListByUserID returns the user's library entries, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*model.LibraryEntry, error)

	// Owns reports whether the user owns the given game.
	Owns(ctx context.Context, userID, gameID string) (bool, error)

	// OwnedGameIDs returns the subset of gameIDs the user already owns.
	OwnedGameIDs(ctx context.Context, userID string, gameIDs []string) ([]string, error)
}

// CartRepository persists cart contents.
type CartRepository interface {
	// ListByUserID returns the user's cart items, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*model.CartItem, error)

	// Add inserts a cart item. Returns ErrDuplicateKey if already present.
	Add(ctx context.Context, item *model.CartItem) error

	// Remove deletes a cart item. Removing an absent item is not an error.
	Remove(ctx context.Context, userID, gameID string) error
}

// WishlistRepository persists wishlist contents.
type WishlistRepository interface {
	// ListByUserID returns the user's wishlist items, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*model.WishlistItem, error)

	// Add inserts a wishlist item. Returns ErrDuplicateKey if already present.
	Add(ctx context.Context, item *model.WishlistItem) error

	// Remove deletes a wishlist item. Removing an absent item is not an error.
	Remove(ctx context.Context, userID, gameID string) error
}

// OrderRepository persists completed checkouts.
type OrderRepository interface {
	// CreateCheckout atomically inserts the order and its library entries
	// and clears the user's cart, in one transaction.
	CreateCheckout(ctx context.Context, order *model.Order, entries []*model.LibraryEntry) error

	// ListByUserID returns the user's orders, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*model.Order, error)
}

// FriendshipRepository persists friendship edges.
type FriendshipRepository interface {
	// FindByID returns the edge with the given ID, or nil if absent.
	FindByID(ctx context.Context, id string) (*model.Friendship, error)

	// FindByPair returns the edge between two users in either direction,
	// or nil if absent.
	FindByPair(ctx context.Context, userA, userB string) (*model.Friendship, error)

	// Create inserts a pending edge. Returns ErrDuplicateKey when an edge
	// for the pair already exists.
	Create(ctx context.Context, f *model.Friendship) error

	// UpdateStatus transitions an edge's status.
	UpdateStatus(ctx context.Context, id string, status model.FriendshipStatus, updatedAt time.Time) error

	// Delete removes an edge (decline or unfriend).
	Delete(ctx context.Context, id string) error

	// ListFriends returns the users connected to userID by accepted edges.
	ListFriends(ctx context.Context, userID string) ([]*model.User, error)

	// ListIncomingPending returns pending requests addressed to userID.
	ListIncomingPending(ctx context.Context, userID string) ([]*model.Friendship, error)
}

// PostRepository persists community posts.
type PostRepository interface {
	// FindByID returns the post with the given ID, or nil if absent.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// List returns posts newest first with cursor pagination. The cursor
	// is the (created_at, id) pair of the previous page's last row; a
	// zero cursor time starts from the newest post.
	List(ctx context.Context, cursor time.Time, cursorID string, limit int) ([]*model.Post, error)

	// Create inserts a post.
	Create(ctx context.Context, post *model.Post) error

	// Delete removes a post.
	Delete(ctx context.Context, id string) error
}
