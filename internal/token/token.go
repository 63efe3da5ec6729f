// Package token mints and verifies the signed bearer tokens handed out at
// login. Tokens are HS256 JWTs carrying the user's id and email and expire
// after a fixed time-to-live; nothing about them is stored server-side.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/credgate/internal/domain"
)

const (
	// DefaultTTL is how long an issued token stays valid.
	DefaultTTL = time.Hour

	// DefaultSecret is used when no signing secret is configured. Anyone who
	// knows it can forge tokens, so deployments must override it.
	DefaultSecret = "mysecretkey"

	bearerPrefix = "Bearer "
)

// The token errors are the domain sentinels, so errors.Is matches either name.
var (
	ErrNoToken      = domain.ErrNoToken
	ErrInvalidToken = domain.ErrInvalidToken

	// ErrNoUserID is returned by Issue for claims without a user id.
	ErrNoUserID = errors.New("token claims have no user id")
)

// Claims is the claim set bound into a token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs claims with secret and returns a token that expires ttl from now.
// Only UserID and Email are taken from claims; the registered claims (sub,
// iat, exp, jti) are always set by the issuer and any caller values are
// replaced.
func Issue(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	return sign(claims, secret, ttl, time.Now())
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Every failure wraps ErrInvalidToken; the underlying jwt error is kept in the
// chain for logging only.
func Verify(tokenString string, secret []byte) (*Claims, error) {
	return verify(tokenString, secret, time.Now)
}

// FromHeader extracts the token from an Authorization header value. Both
// "Bearer <token>" and a bare "<token>" are accepted.
func FromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	return strings.TrimPrefix(header, bearerPrefix), nil
}

// IsExpired reports whether err came from verifying a token whose expiry has
// passed. Callers still treat it as ErrInvalidToken; this is for diagnostics.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

func sign(claims Claims, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if claims.UserID == "" {
		return "", ErrNoUserID
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func verify(tokenString string, secret []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
