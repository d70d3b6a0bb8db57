package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/pkg/database"
	apperrors "github.com/gamevault/gamevault/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, game_id, user_id, body, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.GameID,
		review.UserID,
		review.Body,
		review.Rating,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT id, game_id, user_id, body, rating, created_at, updated_at
		FROM reviews
		WHERE id = $1`

	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.GameID,
		&rv.UserID,
		&rv.Body,
		&rv.Rating,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

// ListByGame returns paginated reviews for a given game along with the total count.
func (r *ReviewRepository) ListByGame(ctx context.Context, gameID string, page, perPage int) ([]domain.Review, int, error) {
	query := `
		SELECT id, game_id, user_id, body, rating, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE game_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.listReviews(ctx, query, gameID, page, perPage)
}

// ListByUser returns paginated reviews written by a user along with the total count.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error) {
	query := `
		SELECT id, game_id, user_id, body, rating, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.listReviews(ctx, query, userID, page, perPage)
}

// Update replaces the body and rating of an existing review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET body = $1, rating = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query,
		review.Body,
		review.Rating,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review from the database by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM reviews WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

// GetRatingSummary computes the aggregate over all rated reviews of a game.
// Text-only reviews (rating IS NULL) are excluded from both the average and
// the count. The range predicate also screens out any out-of-range value
// that predates the CHECK constraint.
func (r *ReviewRepository) GetRatingSummary(ctx context.Context, gameID string) (*domain.RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(rating)
		FROM reviews
		WHERE game_id = $1 AND rating BETWEEN 1 AND 5`

	var summary domain.RatingSummary

	err := r.pool.QueryRow(ctx, query, gameID).Scan(
		&summary.AverageRating,
		&summary.TotalRatings,
	)
	if err != nil {
		return nil, fmt.Errorf("get rating summary: %w", err)
	}

	return &summary, nil
}

// listReviews executes a paginated review query with a single key argument.
func (r *ReviewRepository) listReviews(ctx context.Context, query, key string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	rows, err := r.pool.Query(ctx, query, key, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review

		if err := rows.Scan(
			&rv.ID,
			&rv.GameID,
			&rv.UserID,
			&rv.Body,
			&rv.Rating,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}
