package domain

import (
	"time"
)

// Game represents an entry in the games catalog. AverageRating and
// TotalRatings are denormalized aggregates maintained by the rating
// recomputation after every rating-bearing review change.
type Game struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	Platform      string     `json:"platform"`
	Genre         string     `json:"genre"`
	CoverURL      string     `json:"cover_url,omitempty"`
	Upcoming      bool       `json:"upcoming"`
	AverageRating float64    `json:"average_rating"`
	TotalRatings  int        `json:"total_ratings"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RatingSummary holds the aggregate rating state for a game, computed
// over all reviews that carry a rating.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// Platform constants.
const (
	PlatformPC          = "pc"
	PlatformPlayStation = "playstation"
	PlatformXbox        = "xbox"
	PlatformSwitch      = "switch"
	PlatformMobile      = "mobile"
)

// IsValidPlatform reports whether the given platform is a known value.
func IsValidPlatform(platform string) bool {
	switch platform {
	case PlatformPC, PlatformPlayStation, PlatformXbox, PlatformSwitch, PlatformMobile:
		return true
	}
	return false
}

// ValidPlatforms returns the list of accepted platform values.
func ValidPlatforms() []string {
	return []string{PlatformPC, PlatformPlayStation, PlatformXbox, PlatformSwitch, PlatformMobile}
}
