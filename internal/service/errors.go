package service

import (
	"errors"

	"github.com/sakif/cinefav/internal/apperror"
)

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func isInvalidCredentials(err error) bool {
	return errors.Is(err, apperror.ErrInvalidCredentials)
}
