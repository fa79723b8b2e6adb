package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating models a row in the `ratings` table. (UserID, StoreID) is unique.
type Rating struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	StoreID   uint64    `json:"storeId"`
	Value     int       `json:"ratingValue"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidRating reports whether v is within the 1 to 5 star range.
func ValidRating(v int) bool { return v >= MinRating && v <= MaxRating }
