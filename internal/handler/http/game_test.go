package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/internal/event"
	"github.com/gamevault/gamevault/internal/repository"
	"github.com/gamevault/gamevault/internal/service"
	"github.com/gamevault/gamevault/internal/storage/memory"
	apperrors "github.com/gamevault/gamevault/pkg/errors"
	"github.com/gamevault/gamevault/pkg/httputil"
	pkgkafka "github.com/gamevault/gamevault/pkg/kafka"
	"github.com/gamevault/gamevault/pkg/middleware"
)

// =============================================================================
// Mock GameRepository
// =============================================================================

type mockGameRepo struct {
	mock.Mock
}

func (m *mockGameRepo) Create(ctx context.Context, game *domain.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *mockGameRepo) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *mockGameRepo) GetBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *mockGameRepo) List(ctx context.Context, filter repository.GameFilter) ([]domain.Game, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Game), args.Int(1), args.Error(2)
}

func (m *mockGameRepo) Update(ctx context.Context, game *domain.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *mockGameRepo) UpdateRating(ctx context.Context, id string, summary *domain.RatingSummary) error {
	args := m.Called(ctx, id, summary)
	return args.Error(0)
}

func (m *mockGameRepo) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockGameRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

const (
	testGameID = "550e8400-e29b-41d4-a716-446655440001"
	testUserID = "770e8400-e29b-41d4-a716-446655440002"
)

func gameTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func gameTestEventProducer() *event.Producer {
	logger := gameTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func gameTestService(repo *mockGameRepo) *service.GameService {
	return service.NewGameService(repo, gameTestEventProducer(), gameTestLogger())
}

func gameTestHandler(repo *mockGameRepo) *GameHandler {
	svc := gameTestService(repo)
	covers := memory.New("http://localhost:8080")
	return NewGameHandler(svc, covers, gameTestLogger())
}

// adminValidator accepts any token as the admin user.
func adminValidator(token string) (*middleware.Claims, error) {
	return &middleware.Claims{UserID: testUserID, Email: "admin@example.com", Role: domain.RoleAdmin}, nil
}

// userValidator accepts any token as a regular user.
func userValidator(token string) (*middleware.Claims, error) {
	return &middleware.Claims{UserID: testUserID, Email: "player@example.com", Role: domain.RoleUser}, nil
}

// moderatorValidator accepts any token as a moderator.
func moderatorValidator(token string) (*middleware.Claims, error) {
	return &middleware.Claims{UserID: testUserID, Email: "mod@example.com", Role: domain.RoleModerator}, nil
}

func gameRouter(handler *GameHandler, validator middleware.TokenValidator) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/games", func(r chi.Router) {
		r.Get("/", handler.ListGames)
		r.Get("/{idOrSlug}", handler.GetGame)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/", handler.CreateGame)
			r.Put("/{id}", handler.UpdateGame)
			r.Delete("/{id}", handler.DeleteGame)
			r.Post("/{id}/cover", handler.UploadCover)
		})
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleGame() *domain.Game {
	now := time.Now().UTC()
	return &domain.Game{
		ID:            testGameID,
		Title:         "Hollow Depths",
		Slug:          "hollow-depths",
		Description:   "A subterranean action platformer",
		Platform:      domain.PlatformPC,
		Genre:         "metroidvania",
		AverageRating: 4.3,
		TotalRatings:  17,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// =============================================================================
// GET /api/v1/games - ListGames
// =============================================================================

func TestListGames_OK(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("List", mock.Anything, mock.AnythingOfType("repository.GameFilter")).
		Return([]domain.Game{*sampleGame()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games?platform=pc&min_rating=4", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestListGames_InvalidPlatform(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games?platform=dreamcast", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestListGames_InvalidMinRating(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games?min_rating=11", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// GET /api/v1/games/{idOrSlug} - GetGame
// =============================================================================

func TestGetGame_ByID(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetByID", mock.Anything, testGameID).Return(sampleGame(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/"+testGameID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetGame_BySlug(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetBySlug", mock.Anything, "hollow-depths").Return(sampleGame(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/hollow-depths", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetGame_NotFound(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetBySlug", mock.Anything, "missing-game").Return(nil, apperrors.NotFound("game", "missing-game"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/missing-game", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// POST /api/v1/games - CreateGame
// =============================================================================

func TestCreateGame_Created(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Game")).Return(nil)

	b, _ := json.Marshal(CreateGameRequest{
		Title:    "Hollow Depths",
		Platform: domain.PlatformPC,
		Genre:    "metroidvania",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertExpectations(t)
}

func TestCreateGame_Unauthorized(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	b, _ := json.Marshal(CreateGameRequest{Title: "Hollow Depths"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateGame_ForbiddenForNonAdmin(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), userValidator)

	b, _ := json.Marshal(CreateGameRequest{Title: "Hollow Depths"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateGame_ValidationError(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	// Missing required title.
	b, _ := json.Marshal(CreateGameRequest{Platform: domain.PlatformPC})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCreateGame_InvalidJSON(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestCreateGame_ReleaseDateParsing(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(g *domain.Game) bool {
		return g.ReleaseDate != nil && g.ReleaseDate.Format("2006-01-02") == "2026-03-12"
	})).Return(nil)

	body := `{"title":"Starfall Vale","release_date":"2026-03-12","upcoming":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

// =============================================================================
// PUT /api/v1/games/{id} - UpdateGame
// =============================================================================

func TestUpdateGame_OK(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetByID", mock.Anything, testGameID).Return(sampleGame(), nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Game")).Return(nil)

	title := "Hollow Depths: Definitive Edition"
	b, _ := json.Marshal(UpdateGameRequest{Title: &title})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/games/"+testGameID, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpdateGame_InvalidUUID(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	b, _ := json.Marshal(UpdateGameRequest{})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/games/not-a-uuid", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// POST /api/v1/games/{id}/cover - UploadCover
// =============================================================================

func TestUploadCover_OK(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetByID", mock.Anything, testGameID).Return(sampleGame(), nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(g *domain.Game) bool {
		return strings.HasSuffix(g.CoverURL, "/cover.png")
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/"+testGameID+"/cover", strings.NewReader("fake-png-bytes"))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUploadCover_UnsupportedType(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/"+testGameID+"/cover", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// =============================================================================
// DELETE /api/v1/games/{id} - DeleteGame
// =============================================================================

func TestDeleteGame_OK(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetByID", mock.Anything, testGameID).Return(sampleGame(), nil)
	repo.On("Delete", mock.Anything, testGameID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/games/"+testGameID, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteGame_NotFound(t *testing.T) {
	repo := new(mockGameRepo)
	router := gameRouter(gameTestHandler(repo), adminValidator)

	repo.On("GetByID", mock.Anything, testGameID).Return(nil, apperrors.NotFound("game", testGameID))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/games/"+testGameID, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
