package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/model"
	"github.com/sakif/cinefav/internal/repository"
)

// MaxMovieIDLength matches the imdb_movie_id column width.
const MaxMovieIDLength = 20

// FavoriteService owns the set of favorite movies of each user.
type FavoriteService struct {
	repo   repository.FavoriteRepository
	logger *slog.Logger
}

func NewFavoriteService(repo repository.FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, logger: logger}
}

// Add marks movieID as a favorite of the user. Adding the same movie again is
// a no-op: it never produces a second entry in List or FilterAnnotate.
func (s *FavoriteService) Add(ctx context.Context, userID int64, movieID string) error {
	movieID, err := validateMovieID(movieID)
	if err != nil {
		return err
	}

	if err := s.repo.AddFavorite(ctx, userID, movieID); err != nil {
		s.logger.Error("failed to add favorite",
			slog.Int64("userID", userID),
			slog.String("movieID", movieID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("adding favorite: %w", err)
	}

	s.logger.Debug("favorite added", slog.Int64("userID", userID), slog.String("movieID", movieID))
	return nil
}

// List returns the user's favorite movie ids as a set.
//
// The set is built from whatever the store returns, so duplicates are
// collapsed here even if a store ever lets a duplicate row through.
func (s *FavoriteService) List(ctx context.Context, userID int64) (model.MovieSet, error) {
	favorites, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return model.NewMovieSet(favorites), nil
}

// FilterAnnotate sets "favorite": true on every entry of movies whose imdb_id
// is one of the user's favorites and returns the same slice.
//
// Entries that are not favorites are left exactly as they were: no
// "favorite": false is added and their JSON is returned byte for byte.
// Order is preserved. The favorite set is loaded once, so the cost is one
// query plus one map lookup per movie.
func (s *FavoriteService) FilterAnnotate(ctx context.Context, userID int64, movies []model.Movie) ([]model.Movie, error) {
	favorites, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Annotate(favorites, movies), nil
}

// Annotate is the pure part of FilterAnnotate.
func Annotate(favorites model.MovieSet, movies []model.Movie) []model.Movie {
	for i := range movies {
		if id := movies[i].ID(); id != "" && favorites.Has(id) {
			movies[i].MarkFavorite()
		}
	}
	return movies
}

// Remove deletes a single favorite. Returns apperror.ErrNotFound if the user
// had not favorited movieID.
func (s *FavoriteService) Remove(ctx context.Context, userID int64, movieID string) error {
	movieID, err := validateMovieID(movieID)
	if err != nil {
		return err
	}

	removed, err := s.repo.RemoveFavorite(ctx, userID, movieID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if !removed {
		return apperror.NotFound("favorite movie", movieID)
	}
	return nil
}

func validateMovieID(movieID string) (string, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return "", apperror.ValidationFailed(model.MovieIDKey, "imdb_id is required")
	}
	if len(movieID) > MaxMovieIDLength {
		return "", apperror.ValidationFailed(model.MovieIDKey,
			fmt.Sprintf("imdb_id must be %d characters or less", MaxMovieIDLength))
	}
	return movieID, nil
}
