package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/model"
	"github.com/sakif/cinefav/internal/service"
)

// FavoritesHandler serves the authenticated user's favorite movies. Every
// mutating route answers with the full, sorted list of imdb ids.
//
//	GET    /user/me/movies            → 200 ["tt...", ...]
//	POST   /user/me/movies            → 201 ["tt...", ...]
//	DELETE /user/me/movies/{imdbID}   → 200 ["tt...", ...]
//	POST   /user/me/movies/annotate   → 200 listing with "favorite": true on matches
type FavoritesHandler struct {
	directory *service.Directory
	logger    *slog.Logger
}

func NewFavoritesHandler(directory *service.Directory, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{directory: directory, logger: logger}
}

type addFavoriteRequest struct {
	MovieID string `json:"imdb_id"`
}

func (h *FavoritesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeFavorites(w, r, user, http.StatusOK)
}

func (h *FavoritesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req addFavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if blank(req.MovieID) {
		WriteError(w, apperror.MissingFields(model.MovieIDKey))
		return
	}

	if err := h.directory.AddFavorite(r.Context(), user, req.MovieID); err != nil {
		h.logFailure("add favorite failed", err)
		WriteError(w, err)
		return
	}
	h.writeFavorites(w, r, user, http.StatusCreated)
}

func (h *FavoritesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.directory.RemoveFavorite(r.Context(), user, chi.URLParam(r, "imdbID")); err != nil {
		h.logFailure("remove favorite failed", err)
		WriteError(w, err)
		return
	}
	h.writeFavorites(w, r, user, http.StatusOK)
}

// HandleAnnotate takes an external movie listing (a JSON array of objects
// with an imdb_id) and returns it with the caller's favorites marked.
func (h *FavoritesHandler) HandleAnnotate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}

	var movies []model.Movie
	if err := decodeJSON(w, r, &movies); err != nil {
		WriteError(w, err)
		return
	}
	if movies == nil {
		movies = []model.Movie{}
	}

	annotated, err := h.directory.FilterFavorites(r.Context(), user, movies)
	if err != nil {
		h.logFailure("annotate failed", err)
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, annotated)
}

func (h *FavoritesHandler) writeFavorites(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	favorites, err := h.directory.Favorites(r.Context(), user)
	if err != nil {
		h.logFailure("list favorites failed", err)
		WriteError(w, err)
		return
	}
	writeJSON(w, status, favorites.Sorted())
}

func (h *FavoritesHandler) logFailure(msg string, err error) {
	if status, _ := statusFor(err); status == http.StatusInternalServerError {
		h.logger.Error(msg, slog.String("error", err.Error()))
	}
}
