package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/internal/event"
	"github.com/gamevault/gamevault/internal/repository"
	apperrors "github.com/gamevault/gamevault/pkg/errors"
)

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	GameID string
	UserID string
	Body   string
	Rating *int
}

// UpdateReviewInput holds the replacement state for a review. An update
// always replaces both body and rating; a nil rating clears it.
type UpdateReviewInput struct {
	Body   string
	Rating *int
}

// ReviewListResult contains a game's reviews and its rating summary.
type ReviewListResult struct {
	Reviews    []domain.Review       `json:"reviews"`
	Summary    *domain.RatingSummary `json:"summary"`
	TotalCount int                   `json:"total_count"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
}

// ReviewService implements the business logic for review operations. Every
// mutation that touches a rating triggers a recompute of the game's rating
// aggregate after the mutation is durably committed.
type ReviewService struct {
	reviews         repository.ReviewRepository
	games           repository.GameRepository
	aggregator      *RatingAggregator
	producer        *event.Producer
	logger          *slog.Logger
	strictRecompute bool
}

// NewReviewService creates a new review service. When strictRecompute is
// true, a failed rating recompute fails the mutation that triggered it;
// otherwise the failure is logged and the stored aggregate is left stale
// until the next successful recompute.
func NewReviewService(
	reviews repository.ReviewRepository,
	games repository.GameRepository,
	aggregator *RatingAggregator,
	producer *event.Producer,
	logger *slog.Logger,
	strictRecompute bool,
) *ReviewService {
	return &ReviewService{
		reviews:         reviews,
		games:           games,
		aggregator:      aggregator,
		producer:        producer,
		logger:          logger,
		strictRecompute: strictRecompute,
	}
}

// validateContent enforces the review content invariant: at least one of
// body and rating must be present, and a present rating must be in range.
func validateContent(body string, rating *int) error {
	if strings.TrimSpace(body) == "" && rating == nil {
		return apperrors.InvalidInput("review must have a body or a rating")
	}
	if !domain.IsValidRating(rating) {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.RatingMin, domain.RatingMax))
	}
	return nil
}

// CreateReview creates a new review for a game.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, error) {
	if input.GameID == "" {
		return nil, apperrors.InvalidInput("game_id is required")
	}
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if err := validateContent(input.Body, input.Rating); err != nil {
		return nil, err
	}

	exists, err := s.games.Exists(ctx, input.GameID)
	if err != nil {
		return nil, fmt.Errorf("check game exists: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("game", input.GameID)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		GameID:    input.GameID,
		UserID:    input.UserID,
		Body:      input.Body,
		Rating:    input.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("game_id", review.GameID),
		slog.String("user_id", review.UserID),
		slog.Bool("rated", review.Rated()),
	)

	if review.Rated() {
		if err := s.recomputeAfter(ctx, review.GameID); err != nil {
			return nil, err
		}
	}

	return review, nil
}

// GetReview retrieves a review by its ID.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}
	return review, nil
}

// ListReviews returns paginated reviews for a game, newest first, along
// with the game's current rating summary.
func (s *ReviewService) ListReviews(ctx context.Context, gameID string, page, perPage int) (*ReviewListResult, error) {
	page, perPage = clampPage(page, perPage)

	reviews, total, err := s.reviews.ListByGame(ctx, gameID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	summary, err := s.reviews.GetRatingSummary(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get rating summary: %w", err)
	}
	// Present the same precision as the stored aggregate.
	summary.AverageRating = roundAverage(summary.AverageRating)

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	return &ReviewListResult{
		Reviews:    reviews,
		Summary:    summary,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// ListUserReviews returns paginated reviews written by a user, newest first.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	page, perPage = clampPage(page, perPage)

	reviews, total, err := s.reviews.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list user reviews: %w", err)
	}
	return reviews, total, nil
}

// UpdateReview replaces the body and rating of an existing review. Only
// the owner may edit a review, moderators included. A recompute runs only
// when the stored rating actually changed, clearing or setting it counts
// as a change.
func (s *ReviewService) UpdateReview(ctx context.Context, id, requesterID string, input *UpdateReviewInput) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	if review.UserID != requesterID {
		return nil, apperrors.Forbidden("only the review owner may edit it")
	}

	if err := validateContent(input.Body, input.Rating); err != nil {
		return nil, err
	}

	ratingChanged := !ratingsEqual(review.Rating, input.Rating)

	review.Body = input.Body
	review.Rating = input.Rating
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if err := s.producer.PublishReviewUpdated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("game_id", review.GameID),
		slog.Bool("rating_changed", ratingChanged),
	)

	if ratingChanged {
		if err := s.recomputeAfter(ctx, review.GameID); err != nil {
			return nil, err
		}
	}

	return review, nil
}

// DeleteReview removes a review. The owner may delete their own review;
// admins and moderators may delete any review. A recompute runs only when
// the deleted review carried a rating.
func (s *ReviewService) DeleteReview(ctx context.Context, id, requesterID string, isAdmin bool) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if review.UserID != requesterID && !isAdmin {
		return apperrors.Forbidden("only the review owner or a moderator may delete it")
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if err := s.producer.PublishReviewDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", review.ID),
		slog.String("game_id", review.GameID),
		slog.Bool("was_rated", review.Rated()),
	)

	if review.Rated() {
		if err := s.recomputeAfter(ctx, review.GameID); err != nil {
			return err
		}
	}

	return nil
}

// recomputeAfter refreshes a game's rating aggregate after a committed
// review mutation. The mutation is never rolled back: in lenient mode a
// recompute failure is only logged and the aggregate stays stale until the
// next recompute, in strict mode the failure is returned to the caller.
func (s *ReviewService) recomputeAfter(ctx context.Context, gameID string) error {
	if _, err := s.aggregator.Recompute(ctx, gameID); err != nil {
		if s.strictRecompute {
			return fmt.Errorf("recompute rating: %w", err)
		}
		s.logger.ErrorContext(ctx, "rating recompute failed, aggregate left stale",
			slog.String("game_id", gameID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// ratingsEqual compares two optional ratings.
func ratingsEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// clampPage normalizes pagination parameters.
func clampPage(page, perPage int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
