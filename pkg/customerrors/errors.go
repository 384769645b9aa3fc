package customerrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUsernameTaken       = errors.New("username already registered")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMissingToken        = errors.New("missing bearer token")
	ErrInvalidToken        = errors.New("invalid token")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUpstream            = errors.New("upstream provider failed")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrNoRowsAffected      = errors.New("no rows affected")
)

func NewValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapUpstream(err error, provider string) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, provider, err)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken)
}

func IsAuth(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrInvalidCredentials)
}
