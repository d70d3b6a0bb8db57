package postgres

import (
	"context"
	"fmt"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/pkg/database"
	apperrors "github.com/gamevault/gamevault/pkg/errors"
)

// FavoriteRepository implements repository.FavoriteRepository using PostgreSQL.
type FavoriteRepository struct {
	pool database.DBTX
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(pool database.DBTX) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Add marks a game as favorited by the user.
// Uses ON CONFLICT DO NOTHING for idempotent behavior.
func (r *FavoriteRepository) Add(ctx context.Context, userID, gameID string) error {
	query := `
		INSERT INTO favorites (user_id, game_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, game_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, userID, gameID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	return nil
}

// Remove deletes a favorite.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, gameID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND game_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, gameID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", gameID)
	}

	return nil
}

// ListByUser returns the games the user has favorited, newest favorite first,
// along with the total count.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Game, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT g.id, g.title, g.slug, g.description, g.release_date, g.platform, g.genre,
		       g.cover_url, g.upcoming, g.average_rating, g.total_ratings, g.created_at, g.updated_at,
		       count(*) OVER() AS total_count
		FROM favorites f
		JOIN games g ON g.id = f.game_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var (
		games      []domain.Game
		totalCount int
	)

	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(
			&g.ID,
			&g.Title,
			&g.Slug,
			&g.Description,
			&g.ReleaseDate,
			&g.Platform,
			&g.Genre,
			&g.CoverURL,
			&g.Upcoming,
			&g.AverageRating,
			&g.TotalRatings,
			&g.CreatedAt,
			&g.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan favorite row: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate favorite rows: %w", err)
	}

	if games == nil {
		games = []domain.Game{}
	}

	return games, totalCount, nil
}

// Exists checks whether the user has favorited the game.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, gameID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND game_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, gameID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check favorite exists: %w", err)
	}

	return exists, nil
}
