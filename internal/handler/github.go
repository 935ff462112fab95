package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/auth"
	"github.com/sakif/cinefav/internal/service"
)

const stateCookie = "oauth_state"

// GitHubAuthenticator runs the OAuth code flow. *auth.GitHubProvider
// implements it.
type GitHubAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// GitHubHandler signs users in with GitHub. The local account is found, or
// registered, by the GitHub account's verified email.
//
//	GET /auth/github/login    → 307 to GitHub
//	GET /auth/github/callback → 200 {access_token}
type GitHubHandler struct {
	github GitHubAuthenticator
	auth   *service.AuthService
	logger *slog.Logger
}

func NewGitHubHandler(github GitHubAuthenticator, authService *service.AuthService, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{
		github: github,
		auth:   authService,
		logger: logger,
	}
}

// HandleLogin stores a random state in a short-lived cookie and redirects
// the browser to GitHub. The callback only proceeds if GitHub hands the same
// state back.
func (h *GitHubHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback checks the state, exchanges the code and returns an access
// token for the linked account.
func (h *GitHubHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		h.logger.Warn("github callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "invalid OAuth state",
		})
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/auth/github",
		MaxAge: -1,
	})

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", errParam))
		WriteError(w, apperror.Forbidden("GitHub authorization was denied"))
		return
	}

	code := query.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "missing OAuth code",
			Field:   "code",
		})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "upstream_error",
			Message: "GitHub authentication failed",
		})
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		if status, _ := statusFor(err); status == http.StatusInternalServerError {
			h.logger.Error("github callback: sign-in failed",
				slog.Int64("githubID", ghUser.ID),
				slog.String("error", err.Error()),
			)
		}
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, tokenResponse{AccessToken: res.Token})
}
