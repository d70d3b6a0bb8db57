package domain

import (
	"time"
)

// Rating bounds for reviews that carry a rating.
const (
	RatingMin = 1
	RatingMax = 5
)

// Review represents a user's review of a game. Rating is optional: a nil
// Rating means the review is text-only and does not contribute to the
// game's aggregate rating.
type Review struct {
	ID        string    `json:"id"`
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rated reports whether the review carries a rating.
func (r *Review) Rated() bool {
	return r.Rating != nil
}

// IsValidRating reports whether the given rating pointer is acceptable:
// either absent or within [RatingMin, RatingMax].
func IsValidRating(rating *int) bool {
	if rating == nil {
		return true
	}
	return *rating >= RatingMin && *rating <= RatingMax
}
