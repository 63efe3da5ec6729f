package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/credgate/internal/domain"
	"github.com/msomdec/credgate/internal/token"
)

// AuthService handles user registration, login, and bearer token checks.
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	signer *token.Signer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, hasher PasswordHasher, signer *token.Signer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		signer: signer,
	}
}

// Register hashes the password and stores a new user.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and returns a signed token bound to the stored
// user's id and email.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return "", nil, domain.ErrUnauthorized
	}

	tok, err := s.signer.Issue(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return tok, user, nil
}

// Authenticate resolves an Authorization header value into the claims of a
// valid token. It returns domain.ErrNoToken when the header is empty and
// domain.ErrInvalidToken for every other failure.
func (s *AuthService) Authenticate(header string) (*token.Claims, error) {
	raw, err := token.FromHeader(header)
	if err != nil {
		return nil, err
	}
	return s.signer.Verify(raw)
}

// Profile returns the user with the given id.
func (s *AuthService) Profile(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
