package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestVerifier(t *testing.T, clock *fakeClock) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret, "HS256", 30*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return v
}

func TestNewVerifier(t *testing.T) {
	_, err := NewVerifier("", "HS256", time.Minute)
	assert.Error(t, err)

	_, err = NewVerifier(testSecret, "RS256", time.Minute)
	assert.Error(t, err)

	_, err = NewVerifier(testSecret, "none", time.Minute)
	assert.Error(t, err)

	v, err := NewVerifier(testSecret, "HS512", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, v.TTL())
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	v := newTestVerifier(t, clock)

	tok, err := v.Issue("a@b.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.WithinDuration(t, clock.t.Add(30*time.Minute), tok.ExpiresAt, 0)

	id, err := v.Validate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", id.Subject)
	assert.NotEmpty(t, id.TokenID)
	assert.WithinDuration(t, clock.t, id.IssuedAt, 0)
	assert.WithinDuration(t, tok.ExpiresAt, id.ExpiresAt, 0)
}

func TestIssue_EmptySubject(t *testing.T) {
	v := newTestVerifier(t, &fakeClock{t: time.Now()})

	_, err := v.Issue("")
	assert.ErrorIs(t, err, ErrEmptySubject)
}

func TestIssue_RepeatedCallsDiffer(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	v := newTestVerifier(t, clock)

	first, err := v.Issue("a@b.com")
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Second)
	second, err := v.Issue("a@b.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.Value, second.Value)
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestValidate_Expiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	v := newTestVerifier(t, clock)

	tok, err := v.Issue("a@b.com")
	require.NoError(t, err)

	t.Run("one second before expiry is valid", func(t *testing.T) {
		clock.t = tok.ExpiresAt.Add(-time.Second)
		_, err := v.Validate(tok.Value)
		assert.NoError(t, err)
	})

	t.Run("exactly at expiry is rejected", func(t *testing.T) {
		clock.t = tok.ExpiresAt
		_, err := v.Validate(tok.Value)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, CodeExpired, authErr.Code)
	})

	t.Run("after expiry is rejected", func(t *testing.T) {
		clock.t = tok.ExpiresAt.Add(time.Hour)
		_, err := v.Validate(tok.Value)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestValidate_Rejects(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: now}
	v := newTestVerifier(t, clock)

	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	valid := jwt.RegisteredClaims{
		Subject:   "a@b.com",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	cases := map[string]struct {
		token string
		code  ErrorCode
	}{
		"garbage": {
			token: "invalid_token",
			code:  CodeInvalidToken,
		},
		"wrong secret": {
			token: sign(t, jwt.SigningMethodHS256, []byte("other-secret"), valid),
			code:  CodeInvalidToken,
		},
		"other hmac algorithm": {
			token: sign(t, jwt.SigningMethodHS512, []byte(testSecret), valid),
			code:  CodeInvalidToken,
		},
		"unsigned": {
			token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid),
			code:  CodeInvalidToken,
		},
		"missing exp": {
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: "a@b.com"}),
			code:  CodeInvalidToken,
		},
		"missing subject": {
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			code: CodeMissingSubject,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(tc.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthenticated)

			var authErr *Error
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tc.code, authErr.Code)
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "Token has no subject", newError(CodeMissingSubject, nil).Error())
	assert.Equal(t, "Invalid token: boom", newError(CodeInvalidToken, errors.New("boom")).Error())
}
