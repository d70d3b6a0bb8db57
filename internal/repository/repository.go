package repository

import (
	"context"

	"github.com/gamevault/gamevault/internal/domain"
)

// GameFilter defines filter criteria for listing games.
type GameFilter struct {
	Platform  *string
	Genre     *string
	Upcoming  *bool
	Search    *string
	MinRating *float64
	Page      int
	PerPage   int
}

// GameRepository defines the interface for game persistence operations.
type GameRepository interface {
	// Create inserts a new game into the store.
	Create(ctx context.Context, game *domain.Game) error

	// GetByID retrieves a game by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Game, error)

	// GetBySlug retrieves a game by its URL-friendly slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Game, error)

	// List returns games matching the given filter along with the total count.
	List(ctx context.Context, filter GameFilter) ([]domain.Game, int, error)

	// Update modifies an existing game in the store.
	Update(ctx context.Context, game *domain.Game) error

	// UpdateRating overwrites the denormalized rating aggregate of a game.
	UpdateRating(ctx context.Context, id string, summary *domain.RatingSummary) error

	// Exists reports whether a game with the given ID is present.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes a game from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review into the store.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByGame returns paginated reviews for a game, newest first,
	// along with the total count.
	ListByGame(ctx context.Context, gameID string, page, perPage int) ([]domain.Review, int, error)

	// ListByUser returns paginated reviews written by a user along with
	// the total count.
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Review, int, error)

	// Update modifies an existing review in the store.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// GetRatingSummary computes the aggregate rating over all rated
	// reviews of a game.
	GetRatingSummary(ctx context.Context, gameID string) (*domain.RatingSummary, error)
}

// FavoriteRepository defines the interface for favorite persistence operations.
type FavoriteRepository interface {
	// Add marks a game as favorited by a user. Adding an existing
	// favorite is a no-op.
	Add(ctx context.Context, userID, gameID string) error

	// Remove deletes a favorite. Returns ErrNotFound if absent.
	Remove(ctx context.Context, userID, gameID string) error

	// ListByUser returns the games favorited by a user, newest first,
	// along with the total count.
	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.Game, int, error)

	// Exists reports whether the user has favorited the game.
	Exists(ctx context.Context, userID, gameID string) (bool, error)
}
