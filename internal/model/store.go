package model

import "time"

// Store represents a row in the `stores` table. OwnerID is a weak
// reference to users.id and may be nil.
type Store struct {
	ID        uint64
	Name      string
	Email     string
	Address   string
	OwnerID   *uint64
	CreatedAt time.Time
}

// StoreView is a store together with its derived rating aggregates.
// UserRating is only set when the listing was requested on behalf of a
// viewer who has rated the store.
type StoreView struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	OwnerID       *uint64   `json:"ownerId"`
	CreatedAt     time.Time `json:"createdAt"`
	AverageRating float64   `json:"averageRating"`
	RatingCount   int64     `json:"ratingCount"`
	UserRating    *int      `json:"userRating,omitempty"`
}

// Rater is one user who rated an owner's store.
type Rater struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	RatingValue int    `json:"ratingValue"`
}

// Dashboard is the owner's view of their store.
type Dashboard struct {
	Store         StoreView `json:"store"`
	AverageRating float64   `json:"averageRating"`
	Raters        []Rater   `json:"raters"`
}

// Stats holds global row counts for the admin overview.
type Stats struct {
	UserCount   int64 `json:"userCount"`
	StoreCount  int64 `json:"storeCount"`
	RatingCount int64 `json:"ratingCount"`
}
