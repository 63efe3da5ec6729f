package service

import (
	"errors"
	"fmt"

	"github.com/msomdec/credgate/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for passwords longer than bcrypt's 72-byte
// input limit. It is an input error, not a hashing failure.
var ErrPasswordTooLong = fmt.Errorf("%w: password exceeds 72 bytes", domain.ErrInvalidInput)

// PasswordHasher hashes plaintext passwords and checks them against a stored digest.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, digest string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Out-of-range costs are clamped to
// bcrypt's own bounds.
func NewBcryptHasher(cost int) *BcryptHasher {
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Check(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
