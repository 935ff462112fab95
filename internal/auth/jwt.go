// Package auth provides the credential primitives of the account service:
// bcrypt password hashing, signed access tokens and the HTTP middleware that
// turns a bearer token into a user id on the request context.
//
// Access tokens are HS256 JWTs:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Payload: {"iss":"cinefav","sub":"<user id>","iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
//
// Nothing is stored server-side. A token stays valid until it expires; there is
// no revocation list.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/cinefav/internal/apperror"
)

const (
	tokenIssuer = "cinefav"

	// DefaultTokenTTL is how long an issued access token stays valid.
	DefaultTokenTTL = 15 * time.Minute

	minSecretLength = 16
)

// TokenService issues and verifies access tokens. The secret and TTL are fixed
// at construction, so one instance is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must be at least 16
// characters; a non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of tokens issued by this service.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. The user id travels in the standard "sub" claim.
type claims struct {
	jwt.RegisteredClaims
}

// Issue signs a new access token for userID that expires TTL from now.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses tokenStr and returns the user id it was issued for.
//
// Every failure (malformed, wrong algorithm, bad signature, wrong issuer,
// expired, missing subject) returns apperror.ErrTokenInvalid with the same
// message, and never a partial user id.
func (s *TokenService) Verify(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, apperror.TokenInvalid()
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, apperror.TokenInvalid()
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, apperror.TokenInvalid()
	}

	return userID, nil
}
