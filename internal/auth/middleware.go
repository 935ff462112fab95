package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/cinefav/internal/apperror"
)

// contextKey is unexported so only this package can set or read the user id.
type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier is the part of TokenService the middleware needs.
type TokenVerifier interface {
	Verify(tokenStr string) (int64, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified user id in the request context for the handlers behind it.
//
// onError writes the rejection; the handler package passes its JSON error writer
// so 401 bodies look like every other error.
func RequireAuth(tokens TokenVerifier, onError func(http.ResponseWriter, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				onError(w, apperror.TokenInvalid())
				return
			}

			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				onError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or (0, false) for an
// anonymous request.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
