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
	"github.com/gamevault/gamevault/pkg/slug"
)

// GameService implements the business logic for catalog operations.
type GameService struct {
	repo     repository.GameRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewGameService creates a new game service.
func NewGameService(repo repository.GameRepository, producer *event.Producer, logger *slog.Logger) *GameService {
	return &GameService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateGameInput holds the parameters for creating a game.
type CreateGameInput struct {
	Title       string
	Description string
	ReleaseDate *time.Time
	Platform    string
	Genre       string
	Upcoming    *bool
}

// UpdateGameInput holds the parameters for updating a game.
type UpdateGameInput struct {
	Title       *string
	Description *string
	ReleaseDate *time.Time
	Platform    *string
	Genre       *string
	Upcoming    *bool
}

// CreateGame creates a new catalog entry. New games start with an empty
// rating aggregate until the first rated review arrives.
func (s *GameService) CreateGame(ctx context.Context, input *CreateGameInput) (*domain.Game, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("game title is required")
	}
	if input.Platform != "" && !domain.IsValidPlatform(input.Platform) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid platform %q, must be one of: %s", input.Platform, strings.Join(domain.ValidPlatforms(), ", ")))
	}

	now := time.Now().UTC()

	// When the caller does not set the flag, a game with a release date
	// still in the future counts as upcoming.
	upcoming := input.ReleaseDate != nil && input.ReleaseDate.After(now)
	if input.Upcoming != nil {
		upcoming = *input.Upcoming
	}

	game := &domain.Game{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug.Generate(input.Title),
		Description: input.Description,
		ReleaseDate: input.ReleaseDate,
		Platform:    input.Platform,
		Genre:       input.Genre,
		Upcoming:    upcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	if err := s.producer.PublishGameCreated(ctx, game); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.created event",
			slog.String("game_id", game.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "game created",
		slog.String("game_id", game.ID),
		slog.String("slug", game.Slug),
	)

	return game, nil
}

// GetGame retrieves a game by its ID.
func (s *GameService) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game by id: %w", err)
	}
	return game, nil
}

// GetGameBySlug retrieves a game by its slug.
func (s *GameService) GetGameBySlug(ctx context.Context, gameSlug string) (*domain.Game, error) {
	game, err := s.repo.GetBySlug(ctx, gameSlug)
	if err != nil {
		return nil, fmt.Errorf("get game by slug: %w", err)
	}
	return game, nil
}

// ListGames returns a filtered, paginated list of games.
func (s *GameService) ListGames(ctx context.Context, filter repository.GameFilter) ([]domain.Game, int, error) {
	filter.Page, filter.PerPage = clampPage(filter.Page, filter.PerPage)

	games, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}

	return games, total, nil
}

// UpdateGame applies partial updates to an existing game. Changing the
// title regenerates the slug. Rating aggregates are never touched here,
// they belong to the rating recompute path.
func (s *GameService) UpdateGame(ctx context.Context, id string, input *UpdateGameInput) (*domain.Game, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game for update: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.InvalidInput("game title must not be empty")
		}
		game.Title = strings.TrimSpace(*input.Title)
		game.Slug = slug.Generate(*input.Title)
	}

	if input.Description != nil {
		game.Description = *input.Description
	}

	if input.ReleaseDate != nil {
		game.ReleaseDate = input.ReleaseDate
	}

	if input.Platform != nil {
		if !domain.IsValidPlatform(*input.Platform) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid platform %q, must be one of: %s", *input.Platform, strings.Join(domain.ValidPlatforms(), ", ")))
		}
		game.Platform = *input.Platform
	}

	if input.Genre != nil {
		game.Genre = *input.Genre
	}

	if input.Upcoming != nil {
		game.Upcoming = *input.Upcoming
	}

	if err := s.repo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	if err := s.producer.PublishGameUpdated(ctx, game); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.updated event",
			slog.String("game_id", game.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "game updated",
		slog.String("game_id", game.ID),
		slog.String("slug", game.Slug),
	)

	return game, nil
}

// SetCoverURL stores the public URL of an uploaded cover image on the game.
func (s *GameService) SetCoverURL(ctx context.Context, id, coverURL string) (*domain.Game, error) {
	game, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game for cover update: %w", err)
	}

	game.CoverURL = coverURL
	if err := s.repo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("update game cover: %w", err)
	}

	s.logger.InfoContext(ctx, "game cover updated",
		slog.String("game_id", game.ID),
		slog.String("cover_url", coverURL),
	)

	return game, nil
}

// DeleteGame removes a game and, through the schema's cascade, all of its
// reviews and favorites.
func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	// Verify the game exists before deleting.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get game for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}

	if err := s.producer.PublishGameDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish game.deleted event",
			slog.String("game_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "game deleted",
		slog.String("game_id", id),
	)

	return nil
}
