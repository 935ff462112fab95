package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/model"
)

// AuthService turns successful registrations and logins into access tokens.
type AuthService struct {
	directory *Directory
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(directory *Directory, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		directory: directory,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the token issued for it.
// Created is true only when the call registered a new account.
type AuthResult struct {
	User    *model.User
	Token   string
	Created bool
}

// Register registers the user idempotently by email and issues a token.
//
// Directory.Register hands back an existing account for a taken email without
// looking at the password. A token for that account is only issued if the
// supplied password is the account's password, so repeating a registration
// acts like a login and never grants access to someone else's account.
func (s *AuthService) Register(ctx context.Context, name, email, password string, extra model.UserUpdate) (*AuthResult, error) {
	user, created, err := s.directory.Register(ctx, name, email, password, extra)
	if err != nil {
		return nil, err
	}

	if !created {
		if err := s.directory.CheckPassword(user, password); err != nil {
			return nil, err
		}
	}

	return s.issue(user, created)
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.directory.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return s.issue(user, false)
}

// LoginOrRegisterGitHub signs in the local account that owns the GitHub
// user's verified email, registering one on first sign-in. Accounts created
// this way get a random password nobody knows.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}
	if strings.TrimSpace(ghUser.Email) == "" {
		return nil, apperror.ValidationFailed("email", "GitHub account has no verified email")
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}

	extra := model.UserUpdate{}
	if ghUser.AvatarURL != "" {
		extra.AvatarURL = &ghUser.AvatarURL
	}

	user, created, err := s.directory.Register(ctx, ghUser.DisplayName(), ghUser.Email, password, extra)
	if err != nil {
		return nil, fmt.Errorf("service/auth: registering GitHub user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", ghUser.Login),
	)
	return s.issue(user, created)
}

func (s *AuthService) issue(user *model.User, created bool) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token, Created: created}, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("service/auth: generating password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
