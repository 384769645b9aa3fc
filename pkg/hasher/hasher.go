package hasher

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hash derives a salted bcrypt hash from the plaintext password.
// The salt is generated per call and embedded in the returned string.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// A mismatch is not an error; only a malformed stored hash is.
func Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
