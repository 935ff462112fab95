// Package postgres implements the repository interfaces on PostgreSQL through
// a pgx connection pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of *pgxpool.Pool the repositories use.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// DB implements repository.UserRepository and repository.FavoriteRepository.
type DB struct {
	pool  Pool
	close func()
}

// Connect opens a pool for databaseURL, checks it with a ping and creates the schema.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	db := &DB{pool: pool, close: pool.Close}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}
	return db, nil
}

// New wraps an existing pool. The caller keeps ownership of it.
func New(pool Pool) *DB {
	return &DB{pool: pool, close: func() {}}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close releases the pool when it was opened by Connect.
func (db *DB) Close() error {
	db.close()
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			name          TEXT NOT NULL,
			email         VARCHAR(100) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	_, err = db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS favorite_movies (
			id            BIGSERIAL PRIMARY KEY,
			user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			imdb_movie_id VARCHAR(20) NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, imdb_movie_id)
		)`)
	if err != nil {
		return fmt.Errorf("create favorite_movies table: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_favorite_movies_imdb_movie_id ON favorite_movies (imdb_movie_id)`)
	if err != nil {
		return fmt.Errorf("create favorite_movies index: %w", err)
	}
	return nil
}
