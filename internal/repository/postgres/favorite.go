package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/model"
	"github.com/sakif/cinefav/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

const foreignKeyViolation = "23503"

func (db *DB) AddFavorite(ctx context.Context, userID int64, movieID string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO favorite_movies (user_id, imdb_movie_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, imdb_movie_id) DO NOTHING`,
		userID, movieID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return apperror.NotFound("user", strconv.FormatInt(userID, 10))
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (db *DB) ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, user_id, imdb_movie_id, created_at
		FROM favorite_movies
		WHERE user_id = $1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

func (db *DB) RemoveFavorite(ctx context.Context, userID int64, movieID string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM favorite_movies WHERE user_id = $1 AND imdb_movie_id = $2`,
		userID, movieID,
	)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
