package domain

import (
	"context"
	"time"
)

// User represents a registered account. PasswordHash holds the bcrypt digest,
// never the plaintext.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
// Create must return ErrDuplicateEmail when the email is already taken and
// the getters must return ErrNotFound when no user matches.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
