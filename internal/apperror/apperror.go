// Package apperror defines the expected, user-triggerable failures of the
// account service. Each constructor wraps one sentinel so callers can test the
// kind with errors.Is and read the human-readable message with errors.As.
//
// Anything that is not an *AppError (a dropped database connection, a corrupt
// hash) is an internal failure and is reported to clients generically.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingFields reports that one or more mandatory request fields were absent.
// The message always lists the full set of mandatory fields.
func MissingFields(fields ...string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("mandatory fields: %s", strings.Join(fields, ", ")),
		Field:   strings.Join(fields, ","),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials is returned when a password does not match the stored hash.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "email/password combination is invalid",
	}
}

// TokenInvalid is returned for any access token that fails verification.
// Expired and tampered tokens share one message on purpose.
func TokenInvalid() *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: "valid authentication required",
	}
}
