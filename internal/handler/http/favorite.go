package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamevault/gamevault/internal/repository"
	apperrors "github.com/gamevault/gamevault/pkg/errors"
	"github.com/gamevault/gamevault/pkg/httputil"
	"github.com/gamevault/gamevault/pkg/middleware"
	"github.com/gamevault/gamevault/pkg/pagination"
)

// FavoriteHandler handles HTTP requests for favorite endpoints. Favorites
// are a thin membership set, so the handler talks to the repositories
// directly without a service in between.
type FavoriteHandler struct {
	favorites repository.FavoriteRepository
	games     repository.GameRepository
	logger    *slog.Logger
}

// NewFavoriteHandler creates a new favorite HTTP handler.
func NewFavoriteHandler(favorites repository.FavoriteRepository, games repository.GameRepository, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		games:     games,
		logger:    logger,
	}
}

// FavoriteExistsResponse indicates whether a game is favorited.
type FavoriteExistsResponse struct {
	Exists bool `json:"exists"`
}

// Add handles POST /api/v1/users/me/favorites/{gameId}
// Adding a game twice is a no-op.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	gameID, ok := httputil.ParseUUID(w, chi.URLParam(r, "gameId"))
	if !ok {
		return
	}

	exists, err := h.games.Exists(r.Context(), gameID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !exists {
		httputil.WriteError(w, r, apperrors.NotFound("game", gameID.String()), h.logger)
		return
	}

	if err := h.favorites.Add(r.Context(), userID, gameID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"game_id": gameID.String(), "status": "added"},
	})
}

// Remove handles DELETE /api/v1/users/me/favorites/{gameId}
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	gameID, ok := httputil.ParseUUID(w, chi.URLParam(r, "gameId"))
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, gameID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"game_id": gameID.String(), "status": "removed"},
	})
}

// List handles GET /api/v1/users/me/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	page := pagination.FromRequest(r)

	games, total, err := h.favorites.ListByUser(r.Context(), userID, page.Page, page.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(games, total, page.Page, page.PerPage))
}

// Exists handles GET /api/v1/users/me/favorites/{gameId}
func (h *FavoriteHandler) Exists(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	gameID, ok := httputil.ParseUUID(w, chi.URLParam(r, "gameId"))
	if !ok {
		return
	}

	exists, err := h.favorites.Exists(r.Context(), userID, gameID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: FavoriteExistsResponse{Exists: exists},
	})
}
