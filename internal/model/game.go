package model

import "time"

// Game is a catalog entry.
type Game struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Genre       string
	PriceCents  int
	CoverURL    string
	ReleasedAt  *time.Time
	CreatedAt   time.Time
}
