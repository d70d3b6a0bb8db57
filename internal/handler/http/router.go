package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamevault/gamevault/internal/auth"
	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/internal/repository"
	"github.com/gamevault/gamevault/internal/service"
	"github.com/gamevault/gamevault/internal/storage"
	"github.com/gamevault/gamevault/pkg/health"
	"github.com/gamevault/gamevault/pkg/middleware"
)

// NewRouter creates a chi router with all catalog, review, and favorite
// routes registered. Reads are public; writes require a valid access token,
// and catalog writes additionally require the admin role.
func NewRouter(
	gameService *service.GameService,
	reviewService *service.ReviewService,
	favoriteRepo repository.FavoriteRepository,
	gameRepo repository.GameRepository,
	covers storage.Storage,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("gamevault"))
	r.Use(middleware.Tracing("gamevault"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	gameHandler := NewGameHandler(gameService, covers, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)
	favoriteHandler := NewFavoriteHandler(favoriteRepo, gameRepo, logger)

	// Public catalog reads
	r.Route("/api/v1/games", func(r chi.Router) {
		r.Get("/", gameHandler.ListGames)
		r.Get("/{idOrSlug}", gameHandler.GetGame)
		r.Get("/{gameId}/reviews", reviewHandler.ListReviews)

		// Review submission (any authenticated user)
		r.With(middleware.Auth(tokenValidator), ContentTypeJSON).
			Post("/{gameId}/reviews", reviewHandler.CreateReview)

		// Catalog management (admin only)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.With(ContentTypeJSON).Post("/", gameHandler.CreateGame)
			r.With(ContentTypeJSON).Put("/{id}", gameHandler.UpdateGame)
			r.Delete("/{id}", gameHandler.DeleteGame)
			r.Post("/{id}/cover", gameHandler.UploadCover)
		})
	})

	// Review mutations (owner or admin checks happen in the service)
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.With(ContentTypeJSON).Put("/{id}", reviewHandler.UpdateReview)
		r.Delete("/{id}", reviewHandler.DeleteReview)
	})

	// Per-user endpoints
	r.Route("/api/v1/users/me", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/reviews", reviewHandler.ListMyReviews)

		r.Get("/favorites", favoriteHandler.List)
		r.Post("/favorites/{gameId}", favoriteHandler.Add)
		r.Delete("/favorites/{gameId}", favoriteHandler.Remove)
		r.Get("/favorites/{gameId}", favoriteHandler.Exists)
	})

	return r
}
