package domain

import "context"

// Store defines lifecycle operations for the credential store.
// Each implementation (SQLite, MongoDB) owns its own schema setup,
// ensuring the persistence backend is swappable.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error
	Users() UserRepository
}
