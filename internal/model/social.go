package model

import "time"

// FriendshipStatus is the state of a friendship edge.
type FriendshipStatus string

const (
	// FriendshipPending means the request has not been answered yet.
	FriendshipPending FriendshipStatus = "pending"
	// FriendshipAccepted means both users are friends.
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship is a directed request that becomes a symmetric edge once
// accepted. At most one edge exists per user pair regardless of direction.
type Friendship struct {
	ID          string
	RequesterID string
	AddresseeID string
	Status      FriendshipStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Post is a community post. BodyHTML is sanitized before storage.
type Post struct {
	ID        string
	AuthorID  string
	Title     string
	BodyHTML  string
	CreatedAt time.Time
}
