package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/model"
)

func newTestAuthService(t *testing.T, store *fakeStore) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(newTestDirectory(store), tokens, discardLogger()), tokens
}

func TestAuthRegister_IssuesTokenForNewUser(t *testing.T) {
	svc, tokens := newTestAuthService(t, newFakeStore())

	res, err := svc.Register(context.Background(), "Ada", "ada@example.com", "s3cret!", model.UserUpdate{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !res.Created {
		t.Error("expected Created=true")
	}

	userID, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != res.User.ID {
		t.Errorf("token subject = %d, want %d", userID, res.User.ID)
	}
}

func TestAuthRegister_RepeatWithSamePasswordActsAsLogin(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeStore())
	ctx := context.Background()

	first, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret!", model.UserUpdate{})
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	second, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret!", model.UserUpdate{})
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}

	if second.Created {
		t.Error("expected Created=false on repeat")
	}
	if second.User.ID != first.User.ID {
		t.Errorf("got user %d, want %d", second.User.ID, first.User.ID)
	}
}

func TestAuthRegister_RepeatWithOtherPasswordIsRejected(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret!", model.UserUpdate{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Register(ctx, "Mallory", "ada@example.com", "guess", model.UserUpdate{})
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if res != nil {
		t.Error("no token may be issued for someone else's account")
	}
}

func TestAuthLogin(t *testing.T) {
	svc, tokens := newTestAuthService(t, newFakeStore())
	ctx := context.Background()
	reg, err := svc.Register(ctx, "Ada", "ada@example.com", "s3cret!", model.UserUpdate{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(ctx, "ada@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Created {
		t.Error("login must not report Created")
	}
	if id, err := tokens.Verify(res.Token); err != nil || id != reg.User.ID {
		t.Errorf("Verify = (%d, %v), want (%d, nil)", id, err, reg.User.ID)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "nope"); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "bob@example.com", "s3cret!"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown email: expected ErrNotFound, got %v", err)
	}
}

func TestLoginOrRegisterGitHub(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestAuthService(t, store)
	ctx := context.Background()
	gh := &auth.GitHubUser{
		ID:        42,
		Login:     "octocat",
		Email:     "octo@example.com",
		AvatarURL: "https://avatars.githubusercontent.com/u/42",
	}

	first, err := svc.LoginOrRegisterGitHub(ctx, gh)
	if err != nil {
		t.Fatalf("first sign-in: %v", err)
	}
	if !first.Created {
		t.Error("expected first sign-in to create an account")
	}
	if first.User.Name != "octocat" || first.User.AvatarURL != gh.AvatarURL {
		t.Errorf("unexpected user: %+v", first.User)
	}

	second, err := svc.LoginOrRegisterGitHub(ctx, gh)
	if err != nil {
		t.Fatalf("second sign-in: %v", err)
	}
	if second.Created || second.User.ID != first.User.ID {
		t.Errorf("expected the same account back, got %+v", second)
	}
	if len(store.users) != 1 {
		t.Errorf("expected 1 stored user, got %d", len(store.users))
	}
}

func TestLoginOrRegisterGitHub_RequiresEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, newFakeStore())

	_, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 1, Login: "ghost"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
