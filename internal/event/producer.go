package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamevault/gamevault/internal/domain"
	pkgkafka "github.com/gamevault/gamevault/pkg/kafka"
)

// Kafka topics for catalog and review domain events.
var (
	TopicGameCreated       = pkgkafka.Topic("game", "created")
	TopicGameUpdated       = pkgkafka.Topic("game", "updated")
	TopicGameDeleted       = pkgkafka.Topic("game", "deleted")
	TopicGameRatingUpdated = pkgkafka.Topic("game", "rating.updated")
	TopicReviewCreated     = pkgkafka.Topic("review", "created")
	TopicReviewUpdated     = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted     = pkgkafka.Topic("review", "deleted")
)

// Aggregate type constants.
const (
	AggregateTypeGame   = "game"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this service.
const Source = "gamevault-api"

// GameData is the payload for game.created and game.updated events.
type GameData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Platform    string `json:"platform"`
	Genre       string `json:"genre"`
	Upcoming    bool   `json:"upcoming"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// GameDeletedData is the payload for a game.deleted event.
type GameDeletedData struct {
	ID string `json:"id"`
}

// RatingUpdatedData is the payload for a game.rating.updated event,
// carrying the freshly recomputed aggregate.
type RatingUpdatedData struct {
	GameID        string  `json:"game_id"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int     `json:"total_ratings"`
}

// ReviewData is the payload for review lifecycle events.
type ReviewData struct {
	ID     string `json:"id"`
	GameID string `json:"game_id"`
	UserID string `json:"user_id"`
	Rating *int   `json:"rating,omitempty"`
}

// Producer publishes catalog and review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func gameData(game *domain.Game) GameData {
	data := GameData{
		ID:       game.ID,
		Title:    game.Title,
		Slug:     game.Slug,
		Platform: game.Platform,
		Genre:    game.Genre,
		Upcoming: game.Upcoming,
	}
	if game.ReleaseDate != nil {
		data.ReleaseDate = game.ReleaseDate.Format("2006-01-02")
	}
	return data
}

// PublishGameCreated publishes a game.created event.
func (p *Producer) PublishGameCreated(ctx context.Context, game *domain.Game) error {
	return p.publish(ctx, TopicGameCreated, game.ID, AggregateTypeGame, gameData(game))
}

// PublishGameUpdated publishes a game.updated event.
func (p *Producer) PublishGameUpdated(ctx context.Context, game *domain.Game) error {
	return p.publish(ctx, TopicGameUpdated, game.ID, AggregateTypeGame, gameData(game))
}

// PublishGameDeleted publishes a game.deleted event.
func (p *Producer) PublishGameDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicGameDeleted, id, AggregateTypeGame, GameDeletedData{ID: id})
}

// PublishRatingUpdated publishes a game.rating.updated event with the
// recomputed aggregate.
func (p *Producer) PublishRatingUpdated(ctx context.Context, gameID string, summary *domain.RatingSummary) error {
	data := RatingUpdatedData{
		GameID:        gameID,
		AverageRating: summary.AverageRating,
		TotalRatings:  summary.TotalRatings,
	}
	return p.publish(ctx, TopicGameRatingUpdated, gameID, AggregateTypeGame, data)
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, review.ID, AggregateTypeReview, reviewData(review))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewDeleted, review.ID, AggregateTypeReview, reviewData(review))
}

func reviewData(review *domain.Review) ReviewData {
	return ReviewData{
		ID:     review.ID,
		GameID: review.GameID,
		UserID: review.UserID,
		Rating: review.Rating,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
