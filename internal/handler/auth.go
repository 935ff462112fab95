package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/model"
	"github.com/sakif/cinefav/internal/service"
)

// UserHandler serves registration, login and the caller's own account.
//
//	POST   /user/register → 201 {access_token}
//	POST   /user/login    → 200 {access_token}
//	GET    /user/me       → 200 user
//	PATCH  /user/me       → 200 user
//	DELETE /user/me       → 204
type UserHandler struct {
	auth      *service.AuthService
	directory *service.Directory
	logger    *slog.Logger
}

func NewUserHandler(authService *service.AuthService, directory *service.Directory, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		auth:      authService,
		directory: directory,
		logger:    logger,
	}
}

type registerRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	AvatarURL *string `json:"avatar_url"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// HandleRegister registers a user and returns an access token.
//
// Registering an email that already exists with its correct password returns
// a token for that account with the same 201, so the status code does not
// tell callers whether the email was taken.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if blank(req.Name) || blank(req.Email) || req.Password == "" {
		WriteError(w, apperror.MissingFields("name", "email", "password"))
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password,
		model.UserUpdate{AvatarURL: req.AvatarURL})
	if err != nil {
		h.logFailure("register failed", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: res.Token})
}

// HandleLogin exchanges email and password for an access token.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if blank(req.Email) || req.Password == "" {
		WriteError(w, apperror.MissingFields("email", "password"))
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logFailure("login failed", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: res.Token})
}

// HandleMe returns the authenticated user.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe applies the allow-listed fields of the body to the
// authenticated user. Fields outside model.UserUpdate are dropped.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}

	var fields model.UserUpdate
	if err := decodeJSON(w, r, &fields); err != nil {
		WriteError(w, err)
		return
	}

	updated, err := h.directory.Update(r.Context(), user, fields)
	if err != nil {
		h.logFailure("update failed", err)
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteMe deletes the authenticated user and its favorites.
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.directory)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.directory.Delete(r.Context(), user.ID); err != nil {
		h.logFailure("delete failed", err)
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logFailure logs internal errors only. Expected failures such as a wrong
// password are the client's problem and would just be noise.
func (h *UserHandler) logFailure(msg string, err error) {
	if status, _ := statusFor(err); status == http.StatusInternalServerError {
		h.logger.Error(msg, slog.String("error", err.Error()))
	}
}

// currentUser loads the user whose id RequireAuth put in ctx. A valid token
// for an account that no longer exists is treated like an invalid token.
func currentUser(ctx context.Context, directory *service.Directory) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, apperror.TokenInvalid()
	}

	user, err := directory.GetByID(ctx, userID)
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusNotFound {
			return nil, apperror.TokenInvalid()
		}
		return nil, err
	}
	return user, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
