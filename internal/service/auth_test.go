package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/credgate/internal/domain"
	"github.com/msomdec/credgate/internal/repository/sqlite"
	"github.com/msomdec/credgate/internal/service"
	"github.com/msomdec/credgate/internal/token"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func newTestAuthService(t *testing.T, opts ...token.SignerOption) *service.AuthService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), service.NewBcryptHasher(4), token.NewSigner(testJWTSecret, time.Hour, opts...))
}

func TestAuthService_Register_Success(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "Ann", "ann@x.com", "p1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "ann@x.com" {
		t.Fatalf("expected email ann@x.com, got %s", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "p1" {
		t.Fatalf("expected a password digest, got %q", user.PasswordHash)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "User 1", "dup@example.com", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := auth.Register(ctx, "User 2", "dup@example.com", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_EmptyFields(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", "", "a@b.com", "password123"},
		{"empty email", "Name", "", "password123"},
		{"empty password", "Name", "a@b.com", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.userName, tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "Ann", "long@x.com", strings.Repeat("a", 73))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !errors.Is(err, service.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	// Nothing was stored.
	if _, _, err := auth.Login(ctx, "long@x.com", strings.Repeat("a", 73)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after rejected register, got %v", err)
	}

	// 72 bytes is still accepted.
	if _, err := auth.Register(ctx, "Ann", "edge@x.com", strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Register with 72-byte password: %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "Login User", "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tok, user, err := auth.Login(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %q, got %q", registered.ID, user.ID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "User", "wrongpw@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, err := auth.Login(ctx, "wrongpw@example.com", "wrongpassword")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	auth := newTestAuthService(t)

	_, _, err := auth.Login(context.Background(), "nobody@example.com", "password123")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	auth := newTestAuthService(t)

	_, _, err := auth.Login(context.Background(), "", "password123")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_TokenClaimsMatchUser(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "JWT User", "jwt@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	tok, _, err := auth.Login(ctx, "jwt@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := auth.Authenticate("Bearer " + tok)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user ID %q, got %q", user.ID, claims.UserID)
	}
	if claims.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, claims.Email)
	}

	profile, err := auth.Profile(ctx, claims.UserID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Email != "jwt@example.com" {
		t.Fatalf("expected profile email jwt@example.com, got %s", profile.Email)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	auth := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "Gate", "gate@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tok, _, err := auth.Login(ctx, "gate@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other, err := token.NewSigner("different-secret", time.Hour).Issue("someone", "x@y.z")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"bearer form", "Bearer " + tok, nil},
		{"raw form", tok, nil},
		{"missing", "", domain.ErrNoToken},
		{"garbage", "Bearer garbage", domain.ErrInvalidToken},
		{"tampered", tok[:len(tok)-5] + "XXXXX", domain.ErrInvalidToken},
		{"foreign secret", "Bearer " + other, domain.ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Authenticate(tc.header)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthService_Authenticate_Expired(t *testing.T) {
	now := time.Now()
	auth := newTestAuthService(t, token.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := auth.Register(ctx, "Late", "late@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tok, _, err := auth.Login(ctx, "late@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	now = now.Add(61 * time.Minute)
	if _, err := auth.Authenticate(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestAuthService_Profile_NotFound(t *testing.T) {
	auth := newTestAuthService(t)

	_, err := auth.Profile(context.Background(), "missing-id")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
