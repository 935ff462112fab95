package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/model"
)

// fakeStore is an in-memory UserRepository and FavoriteRepository. Unlike the
// real stores it keeps duplicate favorite rows, which lets tests check that
// the service collapses them.
type fakeStore struct {
	mu        sync.Mutex
	users     map[int64]*model.User
	byEmail   map[string]int64
	favorites []model.Favorite
	nextID    int64

	// set to simulate failures
	createErr error
	listErr   error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[int64]*model.User),
		byEmail: make(map[string]int64),
	}
}

func (f *fakeStore) CreateOrGetUser(_ context.Context, user *model.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return false, f.createErr
	}
	if id, ok := f.byEmail[user.Email]; ok {
		*user = *f.users[id]
		return false, nil
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	f.byEmail[user.Email] = user.ID
	return true, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
	}
	copied := *f.users[id]
	return &copied, nil
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", strconv.FormatInt(user.ID, 10))
	}
	user.UpdatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	delete(f.byEmail, u.Email)
	delete(f.users, id)
	kept := f.favorites[:0]
	for _, fav := range f.favorites {
		if fav.UserID != id {
			kept = append(kept, fav)
		}
	}
	f.favorites = kept
	return nil
}

func (f *fakeStore) AddFavorite(_ context.Context, userID int64, movieID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favorites = append(f.favorites, model.Favorite{
		ID: int64(len(f.favorites) + 1), UserID: userID, MovieID: movieID,
	})
	return nil
}

func (f *fakeStore) ListFavorites(_ context.Context, userID int64) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []model.Favorite{}
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (f *fakeStore) RemoveFavorite(_ context.Context, userID int64, movieID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	removed := false
	kept := f.favorites[:0]
	for _, fav := range f.favorites {
		if fav.UserID == userID && fav.MovieID == movieID {
			removed = true
			continue
		}
		kept = append(kept, fav)
	}
	f.favorites = kept
	return removed, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDirectory wires a Directory over store with the cheapest bcrypt cost.
func newTestDirectory(store *fakeStore) *Directory {
	logger := discardLogger()
	favorites := NewFavoriteService(store, logger)
	return NewDirectory(store, auth.NewPasswordServiceWithCost(4), favorites, logger)
}
