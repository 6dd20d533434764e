package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"landmarket/server/internal/apperr"
)

const MinPasswordLength = 8

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// ValidatePassword reports a password outside the accepted length as a
// validation error on the password field.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Validation("password", "password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return apperr.Validation("password", "password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. Only a mismatch is
// reported as false without error.
func CheckPassword(hash, password string) (bool, error) {
	if len(password) > MaxPasswordBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
