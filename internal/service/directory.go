// Package service contains the business logic of the account service.
//
//	Handler (HTTP) → Directory → UserRepository (DB)
//	                           ↘ PasswordService (bcrypt)
//	                           ↘ FavoriteService → FavoriteRepository (DB)
//	              → AuthService → Directory + TokenService (JWT)
//
// Services accept plain values and return domain errors from apperror; they
// know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/avatar"
	"github.com/sakif/cinefav/internal/model"
	"github.com/sakif/cinefav/internal/repository"
)

const (
	MaxNameLength  = 255
	MaxEmailLength = 100
)

// Directory finds and creates users by email and fronts the favorites of a
// user. It is the entry point handlers use for account data.
type Directory struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	favorites *FavoriteService
	logger    *slog.Logger
}

func NewDirectory(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	favorites *FavoriteService,
	logger *slog.Logger,
) *Directory {
	return &Directory{
		users:     users,
		passwords: passwords,
		favorites: favorites,
		logger:    logger,
	}
}

// Register returns the user registered under email, creating it if needed.
//
// When the email is already registered the existing user is returned
// unchanged with created=false. The supplied name, password and extra fields
// are ignored in that case and the password is NOT checked against the
// account; callers that hand out credentials must check it themselves.
//
// For a new user the password is hashed, extra is applied on top of the
// defaults (only allow-listed fields exist on model.UserUpdate) and a missing
// avatar is derived from the email.
func (d *Directory) Register(ctx context.Context, name, email, password string, extra model.UserUpdate) (*model.User, bool, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validateName(name); err != nil {
		return nil, false, err
	}
	if err := validateEmail(email); err != nil {
		return nil, false, err
	}

	existing, err := d.users.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, fmt.Errorf("looking up user by email: %w", err)
	}

	hash, err := d.passwords.Hash(password)
	if err != nil {
		return nil, false, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if extra.Name != nil {
		trimmed := strings.TrimSpace(*extra.Name)
		extra.Name = &trimmed
	}
	extra.Apply(user)
	if err := validateName(user.Name); err != nil {
		return nil, false, err
	}
	if user.AvatarURL == "" {
		user.AvatarURL = avatar.GravatarURL(email)
	}

	// A concurrent registration may have won since the lookup above; the
	// repository then hands back the winner and created is false.
	created, err := d.users.CreateOrGetUser(ctx, user)
	if err != nil {
		d.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("creating user: %w", err)
	}

	if created {
		d.logger.Info("user registered", slog.Int64("userID", user.ID))
	}
	return user, created, nil
}

// Login returns the user for email if password matches.
// Fails with apperror.ErrNotFound for an unknown email and
// apperror.ErrInvalidCredentials for a wrong password.
func (d *Directory) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := d.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	if err := d.CheckPassword(user, password); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckPassword verifies password against the user's stored hash.
func (d *Directory) CheckPassword(user *model.User, password string) error {
	if err := d.passwords.Verify(user.PasswordHash, password); err != nil {
		if !isInvalidCredentials(err) {
			d.logger.Error("stored password hash is unreadable",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return err
	}
	return nil
}

// Update applies the allow-listed fields to user and persists them.
func (d *Directory) Update(ctx context.Context, user *model.User, fields model.UserUpdate) (*model.User, error) {
	if fields.IsEmpty() {
		return user, nil
	}
	if fields.Name != nil {
		trimmed := strings.TrimSpace(*fields.Name)
		if err := validateName(trimmed); err != nil {
			return nil, err
		}
		fields.Name = &trimmed
	}

	updated := *user
	if !fields.Apply(&updated) {
		return user, nil
	}

	if err := d.users.UpdateUser(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	d.logger.Info("user updated", slog.Int64("userID", updated.ID))
	return &updated, nil
}

// Delete removes the user together with all of its favorites.
func (d *Directory) Delete(ctx context.Context, userID int64) error {
	if err := d.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	d.logger.Info("user deleted", slog.Int64("userID", userID))
	return nil
}

func (d *Directory) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return d.users.GetUserByEmail(ctx, strings.TrimSpace(email))
}

func (d *Directory) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return d.users.GetUserByID(ctx, id)
}

func (d *Directory) GetAll(ctx context.Context) ([]model.User, error) {
	users, err := d.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// AddFavorite adds movieID to the user's favorites.
func (d *Directory) AddFavorite(ctx context.Context, user *model.User, movieID string) error {
	return d.favorites.Add(ctx, user.ID, movieID)
}

// Favorites returns the user's favorite movie ids.
func (d *Directory) Favorites(ctx context.Context, user *model.User) (model.MovieSet, error) {
	return d.favorites.List(ctx, user.ID)
}

// FilterFavorites marks the user's favorites in an external movie listing.
func (d *Directory) FilterFavorites(ctx context.Context, user *model.User, movies []model.Movie) ([]model.Movie, error) {
	return d.favorites.FilterAnnotate(ctx, user.ID, movies)
}

// RemoveFavorite drops one movie from the user's favorites.
func (d *Directory) RemoveFavorite(ctx context.Context, user *model.User, movieID string) error {
	return d.favorites.Remove(ctx, user.ID, movieID)
}

func validateName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", MaxEmailLength))
	}
	if !strings.Contains(email, "@") {
		return apperror.ValidationFailed("email", "email is invalid")
	}
	return nil
}
