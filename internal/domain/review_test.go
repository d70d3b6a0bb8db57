package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Rating Validation Tests
// ============================================================================

func TestIsValidRating_NilIsValid(t *testing.T) {
	assert.True(t, IsValidRating(nil))
}

func TestIsValidRating_InRange(t *testing.T) {
	for r := RatingMin; r <= RatingMax; r++ {
		rating := r
		assert.True(t, IsValidRating(&rating), "expected %d to be valid", r)
	}
}

func TestIsValidRating_OutOfRange(t *testing.T) {
	for _, r := range []int{0, -1, 6, 100} {
		rating := r
		assert.False(t, IsValidRating(&rating), "expected %d to be invalid", r)
	}
}

// ============================================================================
// Review Struct Tests
// ============================================================================

func TestReview_Rated(t *testing.T) {
	rating := 4
	rated := Review{Rating: &rating}
	assert.True(t, rated.Rated())

	textOnly := Review{}
	assert.False(t, textOnly.Rated())
}

func TestReview_NilRatingOmitted(t *testing.T) {
	rv := Review{GameID: "game-1", UserID: "user-1", Body: "great"}
	assert.Nil(t, rv.Rating)
}

// ============================================================================
// Game Struct Tests
// ============================================================================

func TestGame_SlugField(t *testing.T) {
	g := Game{Title: "Test Game", Slug: "test-game"}
	assert.Equal(t, "test-game", g.Slug)
	assert.Equal(t, "Test Game", g.Title)
}

func TestGame_ZeroRatingState(t *testing.T) {
	g := Game{}
	assert.Zero(t, g.AverageRating)
	assert.Zero(t, g.TotalRatings)
	assert.Nil(t, g.ReleaseDate)
}
