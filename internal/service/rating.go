package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/internal/event"
	"github.com/gamevault/gamevault/internal/repository"
)

// RatingAggregator recomputes a game's denormalized rating aggregate from
// its reviews. The aggregate is always derived from the full set of rated
// reviews, never adjusted incrementally, so a recompute converges to the
// correct value even after a previously missed update.
type RatingAggregator struct {
	games    repository.GameRepository
	reviews  repository.ReviewRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewRatingAggregator creates a new rating aggregator.
func NewRatingAggregator(
	games repository.GameRepository,
	reviews repository.ReviewRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *RatingAggregator {
	return &RatingAggregator{
		games:    games,
		reviews:  reviews,
		producer: producer,
		logger:   logger,
	}
}

// Recompute recalculates the rating aggregate for the given game over all
// of its rated reviews and persists it on the game row. A game with no
// rated reviews gets average 0 and count 0. The stored average is rounded
// to one decimal place.
func (a *RatingAggregator) Recompute(ctx context.Context, gameID string) (*domain.RatingSummary, error) {
	summary, err := a.reviews.GetRatingSummary(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("compute rating summary: %w", err)
	}

	summary.AverageRating = roundAverage(summary.AverageRating)

	if err := a.games.UpdateRating(ctx, gameID, summary); err != nil {
		return nil, fmt.Errorf("store rating summary: %w", err)
	}

	if err := a.producer.PublishRatingUpdated(ctx, gameID, summary); err != nil {
		a.logger.ErrorContext(ctx, "failed to publish game.rating.updated event",
			slog.String("game_id", gameID),
			slog.String("error", err.Error()),
		)
		// Do not fail the recompute if event publishing fails.
	}

	a.logger.InfoContext(ctx, "game rating recomputed",
		slog.String("game_id", gameID),
		slog.Float64("average_rating", summary.AverageRating),
		slog.Int("total_ratings", summary.TotalRatings),
	)

	return summary, nil
}

// roundAverage rounds a rating average to one decimal place, the precision
// stored on the game row and exposed to clients.
func roundAverage(avg float64) float64 {
	return math.Round(avg*10) / 10
}
