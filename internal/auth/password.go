// bcrypt generates a random salt per call and embeds it, together with the
// cost, in the output:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// so two hashes of the same password differ but both verify.

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/cinefav/internal/apperror"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 12

// MaxPasswordBytes is the longest password bcrypt hashes without truncation.
const MaxPasswordBytes = 72

// PasswordService hashes and verifies passwords. It does no I/O.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with DefaultCost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: DefaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with the given bcrypt
// cost, clamped to bcrypt's valid range. Tests in other packages pass
// bcrypt.MinCost to keep hashing fast.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the plaintext password with a fresh salt.
//
// Passwords over MaxPasswordBytes are a validation error: bcrypt would
// silently ignore the tail.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks plaintext against a hash produced by Hash.
//
// Returns nil on a match and apperror.ErrInvalidCredentials on a mismatch.
// bcrypt compares in constant time. Any other error means the stored hash is
// not one this service produced; that is an internal failure, not a user error.
//
// bcrypt only looks at the first MaxPasswordBytes bytes, so a longer
// plaintext could match a hash of its own prefix. Hash never accepts such a
// password, so a longer one can never be correct.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if len(plaintext) > MaxPasswordBytes {
		return apperror.InvalidCredentials()
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperror.InvalidCredentials()
	}
	return fmt.Errorf("auth: comparing password hash: %w", err)
}
