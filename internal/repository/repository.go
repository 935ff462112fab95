// Package repository declares the persistence contracts the services depend on.
// Implementations live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/cinefav/internal/model"
)

// UserRepository stores user records. Email is unique across all users.
type UserRepository interface {
	// CreateOrGetUser inserts user unless its email is already taken. On insert
	// it fills ID and timestamps and reports created=true. When the email exists
	// (including when a concurrent insert won the race) it overwrites *user with
	// the stored row and reports created=false.
	CreateOrGetUser(ctx context.Context, user *model.User) (created bool, err error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// UpdateUser persists name and avatar changes.
	UpdateUser(ctx context.Context, user *model.User) error
	// DeleteUser removes the user and, through the foreign key, every favorite it owns.
	DeleteUser(ctx context.Context, id int64) error
}

// FavoriteRepository stores favorite movies scoped to one user.
// (user_id, movie_id) is unique; adding an existing pair is a no-op.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID int64, movieID string) error
	ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error)
	// RemoveFavorite reports whether a row was deleted.
	RemoveFavorite(ctx context.Context, userID int64, movieID string) (bool, error)
}

// Store is a complete persistence backend as the server owns it.
type Store interface {
	UserRepository
	FavoriteRepository
	Ping(ctx context.Context) error
	Close() error
}
