package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/credgate/internal/domain"
)

func TestUserRepository_GetByID_InvalidHex(t *testing.T) {
	repo := NewUserRepository(nil)

	_, err := repo.GetByID(context.Background(), "not-an-object-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// newTestDB connects to the deployment named by MONGODB_TEST_URI using a
// throwaway database, or skips the test when it is unset.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := New(ctx, uri, "credgate_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = db.db.Drop(context.Background())
		db.Close()
	})
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	user := &domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "digest"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected ID to be set")
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != "ann@x.com" || byID.PasswordHash != "digest" {
		t.Fatalf("unexpected user %+v", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Fatalf("expected id %q, got %q", user.ID, byEmail.ID)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.User{Name: "A", Email: "dup@x.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &domain.User{Name: "B", Email: "dup@x.com", PasswordHash: "h"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "nobody@x.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "65f000000000000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
