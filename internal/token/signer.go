package token

import "time"

// Signer holds the process-wide signing configuration. It is read-only after
// construction and safe for concurrent use.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner creates a Signer. An empty secret falls back to DefaultSecret and
// a non-positive ttl to DefaultTTL.
func NewSigner(secret string, ttl time.Duration, opts ...SignerOption) *Signer {
	if secret == "" {
		secret = DefaultSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the lifetime of tokens minted by s.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Issue mints a token for the given user.
func (s *Signer) Issue(userID, email string) (string, error) {
	return sign(Claims{UserID: userID, Email: email}, s.secret, s.ttl, s.now())
}

// Verify validates tokenString against the signer's secret and clock.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	return verify(tokenString, s.secret, s.now)
}
