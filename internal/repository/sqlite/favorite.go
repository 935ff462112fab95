package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	modsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/model"
	"github.com/sakif/cinefav/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// AddFavorite records movieID as a favorite of userID. Re-adding an existing
// pair is a no-op thanks to the UNIQUE(user_id, imdb_movie_id) constraint.
// A userID with no user row fails the foreign key check and is reported as
// apperror.ErrNotFound.
func (db *DB) AddFavorite(ctx context.Context, userID int64, movieID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO favorite_movies (user_id, imdb_movie_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id, imdb_movie_id) DO NOTHING`,
		userID,
		movieID,
		time.Now().UTC(),
	)
	if err != nil {
		var sqliteErr *modsqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return apperror.NotFound("user", strconv.FormatInt(userID, 10))
		}
		return fmt.Errorf("sqlite: adding favorite %q for user %d: %w", movieID, userID, err)
	}
	return nil
}

// ListFavorites returns the user's favorites in insertion order.
func (db *DB) ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, imdb_movie_id, created_at
		 FROM favorite_movies WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.MovieID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}
	return favorites, nil
}

func (db *DB) RemoveFavorite(ctx context.Context, userID int64, movieID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorite_movies WHERE user_id = ? AND imdb_movie_id = ?`,
		userID, movieID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: removing favorite %q for user %d: %w", movieID, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	return n > 0, nil
}
