package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gamevault/gamevault/internal/domain"
	"github.com/gamevault/gamevault/internal/repository"
	"github.com/gamevault/gamevault/internal/service"
	"github.com/gamevault/gamevault/internal/storage"
	"github.com/gamevault/gamevault/pkg/httputil"
	"github.com/gamevault/gamevault/pkg/validator"
)

// maxCoverSize limits cover image uploads to 5MB.
const maxCoverSize = 5 << 20

// allowedCoverTypes lists the accepted cover image content types.
var allowedCoverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// GameHandler handles HTTP requests for catalog endpoints.
type GameHandler struct {
	service *service.GameService
	covers  storage.Storage
	logger  *slog.Logger
}

// NewGameHandler creates a new game HTTP handler.
func NewGameHandler(svc *service.GameService, covers storage.Storage, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		service: svc,
		covers:  covers,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateGameRequest is the JSON request body for creating a game.
type CreateGameRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=500"`
	Description string `json:"description"`
	ReleaseDate *Date  `json:"release_date"`
	Platform    string `json:"platform" validate:"omitempty,oneof=pc playstation xbox switch mobile"`
	Genre       string `json:"genre" validate:"omitempty,max=100"`
	Upcoming    *bool  `json:"upcoming"`
}

// UpdateGameRequest is the JSON request body for updating a game.
type UpdateGameRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description"`
	ReleaseDate *Date   `json:"release_date"`
	Platform    *string `json:"platform" validate:"omitempty,oneof=pc playstation xbox switch mobile"`
	Genre       *string `json:"genre" validate:"omitempty,max=100"`
	Upcoming    *bool   `json:"upcoming"`
}

// Date unmarshals a bare "2006-01-02" JSON string.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("release_date must be in YYYY-MM-DD format: %w", err)
	}
	d.Time = t
	return nil
}

// --- Handlers ---

// ListGames handles GET /api/v1/games
// @Summary List all games
// @Description Returns paginated list of games with optional filtering
// @Tags games
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Param platform query string false "Filter by platform" Enums(pc,playstation,xbox,switch,mobile)
// @Param genre query string false "Filter by genre"
// @Param upcoming query bool false "Filter by upcoming flag"
// @Param search query string false "Full-text search query"
// @Param min_rating query number false "Minimum average rating"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	filter := repository.GameFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("platform"); v != "" {
		if !domain.IsValidPlatform(v) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "platform must be one of: " + strings.Join(domain.ValidPlatforms(), ", ")},
			})
			return
		}
		filter.Platform = &v
	}
	if v := r.URL.Query().Get("genre"); v != "" {
		filter.Genre = &v
	}
	if v := r.URL.Query().Get("upcoming"); v != "" {
		upcoming, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "upcoming must be a boolean"},
			})
			return
		}
		filter.Upcoming = &upcoming
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > 5 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_rating must be a number between 0 and 5"},
			})
			return
		}
		filter.MinRating = &rating
	}

	games, total, err := h.service.ListGames(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(games, total, filter.Page, filter.PerPage))
}

// GetGame handles GET /api/v1/games/{idOrSlug}
// It accepts both a UUID (game ID) and a slug for lookup.
// @Summary Get game by ID or slug
// @Description Returns a game. Accepts both UUID and URL slug.
// @Tags games
// @Produce json
// @Param idOrSlug path string true "Game UUID or URL slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/games/{idOrSlug} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "game id or slug is required"},
		})
		return
	}

	var (
		game *domain.Game
		err  error
	)

	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		game, err = h.service.GetGame(r.Context(), idOrSlug)
	} else {
		game, err = h.service.GetGameBySlug(r.Context(), idOrSlug)
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: game})
}

// CreateGame handles POST /api/v1/games
// @Summary Create a game
// @Description Creates a new game in the catalog (admin only)
// @Tags games
// @Accept json
// @Produce json
// @Param request body CreateGameRequest true "Game to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateGameInput{
		Title:       req.Title,
		Description: req.Description,
		Platform:    req.Platform,
		Genre:       req.Genre,
		Upcoming:    req.Upcoming,
	}
	if req.ReleaseDate != nil {
		input.ReleaseDate = &req.ReleaseDate.Time
	}

	game, err := h.service.CreateGame(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: game})
}

// UpdateGame handles PUT /api/v1/games/{id}
// @Summary Update a game
// @Description Partially updates a game — all fields are optional (admin only)
// @Tags games
// @Accept json
// @Produce json
// @Param id path string true "Game UUID"
// @Param request body UpdateGameRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/games/{id} [put]
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateGameInput{
		Title:       req.Title,
		Description: req.Description,
		Platform:    req.Platform,
		Genre:       req.Genre,
		Upcoming:    req.Upcoming,
	}
	if req.ReleaseDate != nil {
		input.ReleaseDate = &req.ReleaseDate.Time
	}

	game, err := h.service.UpdateGame(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: game})
}

// UploadCover handles POST /api/v1/games/{id}/cover
// @Summary Upload a cover image
// @Description Stores a cover image for the game and records its URL (admin only)
// @Tags games
// @Accept image/jpeg,image/png,image/webp
// @Produce json
// @Param id path string true "Game UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/games/{id}/cover [post]
func (h *GameHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	ext, allowed := allowedCoverTypes[contentType]
	if !allowed {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "content type must be image/jpeg, image/png, or image/webp"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverSize)

	key := path.Join(id.String(), "cover"+ext)
	result, err := h.covers.Upload(r.Context(), &storage.UploadInput{
		Key:         key,
		ContentType: contentType,
		Size:        r.ContentLength,
		Data:        r.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	game, err := h.service.SetCoverURL(r.Context(), id.String(), result.URL)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: game})
}

// DeleteGame handles DELETE /api/v1/games/{id}
// @Summary Delete a game
// @Description Deletes a game and cascades its reviews and favorites (admin only)
// @Tags games
// @Produce json
// @Param id path string true "Game UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/games/{id} [delete]
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteGame(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
