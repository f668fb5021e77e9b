package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTTL = 30 * time.Minute

// Identity is the validated content of a bearer token.
type Identity struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is a freshly minted bearer token.
type Token struct {
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// Verifier issues and validates HMAC signed JWTs. It holds no per-token state,
// so a token stays valid until it expires.
type Verifier struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Verifier)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier accepts HS256, HS384 or HS512. A zero ttl falls back to DefaultTTL.
func NewVerifier(secret, algorithm string, ttl time.Duration, opts ...Option) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth: secret must not be empty")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	v := &Verifier{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Verifier) TTL() time.Duration {
	return v.ttl
}

// Issue mints a token for subject expiring TTL from now.
func (v *Verifier) Issue(subject string) (*Token, error) {
	if subject == "" {
		return nil, ErrEmptySubject
	}

	now := v.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}

	signed, err := jwt.NewWithClaims(v.method, claims).SignedString(v.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return &Token{
		Value:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
		TTL:       v.ttl,
	}, nil
}

// Validate checks the signature and expiry of raw and returns its identity.
// A token is rejected at and after its expiry instant.
func (v *Verifier) Validate(raw string) (*Identity, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newError(CodeExpired, err)
		}
		return nil, newError(CodeInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, newError(CodeMissingSubject, nil)
	}

	id := &Identity{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}
