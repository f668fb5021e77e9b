package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewDirectory(t *testing.T) {
	d, err := NewDirectory("")
	require.NoError(t, err)
	assert.IsType(t, PassthroughDirectory{}, d)

	d, err = NewDirectory("memory")
	require.NoError(t, err)
	assert.IsType(t, &MemoryDirectory{}, d)

	_, err = NewDirectory("ldap")
	assert.Error(t, err)
}

func TestPassthroughDirectory(t *testing.T) {
	ctx := context.Background()
	d := PassthroughDirectory{}

	s, err := d.LookupOrCreate(ctx, Credentials{Email: "a@b.com", Password: "pw", FullName: "A B"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", s.Email)
	assert.Equal(t, "A B", s.FullName)
	assert.True(t, s.IsActive)

	again, err := d.Lookup(ctx, "A@B.com")
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID, "subject id must be stable and case-insensitive")

	_, err = d.LookupOrCreate(ctx, Credentials{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory(bcrypt.MinCost)

	_, err := d.Lookup(ctx, "a@b.com")
	assert.ErrorIs(t, err, ErrSubjectNotFound)

	created, err := d.LookupOrCreate(ctx, Credentials{Email: "a@b.com", Password: "pw", FullName: "A"})
	require.NoError(t, err)

	t.Run("same password resolves the same subject", func(t *testing.T) {
		s, err := d.LookupOrCreate(ctx, Credentials{Email: "a@b.com", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, s.ID)
		assert.Equal(t, "A", s.FullName)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := d.LookupOrCreate(ctx, Credentials{Email: "a@b.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("lookup finds the created subject", func(t *testing.T) {
		s, err := d.Lookup(ctx, "a@b.com")
		require.NoError(t, err)
		assert.Equal(t, created, s)
	})
}
