package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/internal/repository"
	"github.com/gamevault/gamevault/pkg/database"
	apperrors "github.com/gamevault/gamevault/pkg/errors"
)

const gameColumns = `id, title, slug, description, release_date, platform, genre, cover_url, upcoming, average_rating, total_ratings, created_at, updated_at`

// GameRepository implements repository.GameRepository using PostgreSQL.
type GameRepository struct {
	pool database.DBTX
}

// NewGameRepository creates a new PostgreSQL-backed game repository.
func NewGameRepository(pool database.DBTX) *GameRepository {
	return &GameRepository{pool: pool}
}

// Create inserts a new game into the database.
func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	query := `
		INSERT INTO games (id, title, slug, description, release_date, platform, genre, cover_url, upcoming, average_rating, total_ratings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		g.ID,
		g.Title,
		g.Slug,
		g.Description,
		g.ReleaseDate,
		g.Platform,
		g.Genre,
		g.CoverURL,
		g.Upcoming,
		g.AverageRating,
		g.TotalRatings,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("game", "slug", g.Slug)
		}
		return fmt.Errorf("insert game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by its ID.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE id = $1`, gameColumns)
	return r.scanGame(ctx, query, id)
}

// GetBySlug retrieves a game by its slug.
func (r *GameRepository) GetBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE slug = $1`, gameColumns)
	return r.scanGame(ctx, query, slug)
}

// List returns games matching the given filter with the total count.
func (r *GameRepository) List(ctx context.Context, filter repository.GameFilter) ([]domain.Game, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Platform != nil {
		conditions = append(conditions, fmt.Sprintf("platform = $%d", argIndex))
		args = append(args, *filter.Platform)
		argIndex++
	}

	if filter.Genre != nil {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argIndex))
		args = append(args, *filter.Genre)
		argIndex++
	}

	if filter.Upcoming != nil {
		conditions = append(conditions, fmt.Sprintf("upcoming = $%d", argIndex))
		args = append(args, *filter.Upcoming)
		argIndex++
	}

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("average_rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM games
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		gameColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
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
			return nil, 0, fmt.Errorf("scan game row: %w", err)
		}

		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate game rows: %w", err)
	}

	if games == nil {
		games = []domain.Game{}
	}

	return games, totalCount, nil
}

// Update modifies an existing game in the database. The rating aggregate
// is not touched here; UpdateRating owns those columns.
func (r *GameRepository) Update(ctx context.Context, g *domain.Game) error {
	g.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE games
		SET title = $1, slug = $2, description = $3, release_date = $4, platform = $5,
		    genre = $6, cover_url = $7, upcoming = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		g.Title,
		g.Slug,
		g.Description,
		g.ReleaseDate,
		g.Platform,
		g.Genre,
		g.CoverURL,
		g.Upcoming,
		g.UpdatedAt,
		g.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("game", "slug", g.Slug)
		}
		return fmt.Errorf("update game: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("game", g.ID)
	}

	return nil
}

// UpdateRating overwrites the denormalized rating aggregate of a game.
func (r *GameRepository) UpdateRating(ctx context.Context, id string, summary *domain.RatingSummary) error {
	query := `
		UPDATE games
		SET average_rating = $1, total_ratings = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query,
		summary.AverageRating,
		summary.TotalRatings,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update game rating: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("game", id)
	}

	return nil
}

// Exists reports whether a game with the given ID is present.
func (r *GameRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM games WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check game exists: %w", err)
	}
	return exists, nil
}

// Delete removes a game from the database by its ID. Reviews and
// favorites are removed by ON DELETE CASCADE.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM games WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("game", id)
	}

	return nil
}

// scanGame is a helper that executes a query expected to return a single game row.
func (r *GameRepository) scanGame(ctx context.Context, query string, args ...any) (*domain.Game, error) {
	var g domain.Game

	err := r.pool.QueryRow(ctx, query, args...).Scan(
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
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}

	return &g, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
