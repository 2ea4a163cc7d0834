package model

import "time"

// CartItem is a game sitting in a user's cart.
type CartItem struct {
	UserID  string
	GameID  string
	AddedAt time.Time
}

// WishlistItem is a game on a user's wishlist.
type WishlistItem struct {
	UserID  string
	GameID  string
	AddedAt time.Time
}

// LibraryEntry records game ownership, created at checkout.
type LibraryEntry struct {
	UserID  string
	GameID  string
	OrderID string
	AddedAt time.Time
}

// Order is a completed checkout. Payment processing is out of scope;
// the order records what was bought and the catalog total at that moment.
type Order struct {
	ID         string
	UserID     string
	TotalCents int
	GameIDs    []string
	CreatedAt  time.Time
}
