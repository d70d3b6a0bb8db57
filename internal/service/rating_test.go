package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/domain"
)

func newTestAggregator(games *mockGameRepository, reviews *mockReviewRepository) *RatingAggregator {
	logger := newTestLogger()
	return NewRatingAggregator(games, reviews, newTestProducer(), logger)
}

func TestRecompute_RoundsToOneDecimal(t *testing.T) {
	games := new(mockGameRepository)
	reviews := new(mockReviewRepository)
	agg := newTestAggregator(games, reviews)
	ctx := context.Background()

	// Ratings 5, 3 and a text-only review: average over the two rated ones.
	reviews.On("GetRatingSummary", ctx, "game-1").
		Return(&domain.RatingSummary{AverageRating: 4.0, TotalRatings: 2}, nil)
	games.On("UpdateRating", ctx, "game-1",
		&domain.RatingSummary{AverageRating: 4.0, TotalRatings: 2}).Return(nil)

	summary, err := agg.Recompute(ctx, "game-1")

	require.NoError(t, err)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.Equal(t, 2, summary.TotalRatings)

	games.AssertExpectations(t)
	reviews.AssertExpectations(t)
}

func TestRecompute_RoundsRepeatingFraction(t *testing.T) {
	games := new(mockGameRepository)
	reviews := new(mockReviewRepository)
	agg := newTestAggregator(games, reviews)
	ctx := context.Background()

	// Ratings 5, 4, 4 average to 4.333..., stored as 4.3.
	reviews.On("GetRatingSummary", ctx, "game-1").
		Return(&domain.RatingSummary{AverageRating: 4.333333333333333, TotalRatings: 3}, nil)
	games.On("UpdateRating", ctx, "game-1",
		&domain.RatingSummary{AverageRating: 4.3, TotalRatings: 3}).Return(nil)

	summary, err := agg.Recompute(ctx, "game-1")

	require.NoError(t, err)
	assert.Equal(t, 4.3, summary.AverageRating)
	assert.Equal(t, 3, summary.TotalRatings)

	games.AssertExpectations(t)
}

func TestRecompute_NoRatedReviews(t *testing.T) {
	games := new(mockGameRepository)
	reviews := new(mockReviewRepository)
	agg := newTestAggregator(games, reviews)
	ctx := context.Background()

	reviews.On("GetRatingSummary", ctx, "game-1").
		Return(&domain.RatingSummary{AverageRating: 0, TotalRatings: 0}, nil)
	games.On("UpdateRating", ctx, "game-1",
		&domain.RatingSummary{AverageRating: 0, TotalRatings: 0}).Return(nil)

	summary, err := agg.Recompute(ctx, "game-1")

	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalRatings)

	games.AssertExpectations(t)
}

func TestRecompute_Idempotent(t *testing.T) {
	games := new(mockGameRepository)
	reviews := new(mockReviewRepository)
	agg := newTestAggregator(games, reviews)
	ctx := context.Background()

	reviews.On("GetRatingSummary", ctx, "game-1").
		Return(&domain.RatingSummary{AverageRating: 3.5, TotalRatings: 4}, nil).Twice()
	games.On("UpdateRating", ctx, "game-1", mock.Anything).Return(nil).Twice()

	first, err := agg.Recompute(ctx, "game-1")
	require.NoError(t, err)

	second, err := agg.Recompute(ctx, "game-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	reviews.AssertExpectations(t)
	games.AssertExpectations(t)
}

func TestRecompute_SummaryReadFails(t *testing.T) {
	games := new(mockGameRepository)
	reviews := new(mockReviewRepository)
	agg := newTestAggregator(games, reviews)
	ctx := context.Background()

	reviews.On("GetRatingSummary", ctx, "game-1").
		Return(nil, errors.New("read timeout"))

	summary, err := agg.Recompute(ctx, "game-1")

	assert.Nil(t, summary)
	assert.Error(t, err)

	games.AssertNotCalled(t, "UpdateRating", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecompute_AggregateWriteFails(t *testing.T) {
	games := new(mockGameRepository)
	reviews := new(mockReviewRepository)
	agg := newTestAggregator(games, reviews)
	ctx := context.Background()

	reviews.On("GetRatingSummary", ctx, "game-1").
		Return(&domain.RatingSummary{AverageRating: 4.0, TotalRatings: 2}, nil)
	games.On("UpdateRating", ctx, "game-1", mock.Anything).
		Return(errors.New("write timeout"))

	summary, err := agg.Recompute(ctx, "game-1")

	assert.Nil(t, summary)
	assert.Error(t, err)

	games.AssertExpectations(t)
}
