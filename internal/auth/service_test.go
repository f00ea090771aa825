package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ObtainIssuesThenReuses(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	u := f.createUser(t, "test@example.com", "testpass123")

	first, reused, err := f.service.Obtain(ctx, "test@example.com", "testpass123")
	require.NoError(t, err)
	assert.False(t, reused)
	assert.NotEmpty(t, first)

	second, reused, err := f.service.Obtain(ctx, "test@example.com", "testpass123")
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, first, second)

	stored, err := f.tokens.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first, stored.Key)
}

func TestService_ObtainInvalidCredentials(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.createUser(t, "test@example.com", "goodpass")

	_, _, err := f.service.Obtain(ctx, "test@example.com", "badpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.service.Obtain(ctx, "nobody@example.com", "goodpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ObtainReplacesExpiredToken(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := context.Background()
	u := f.createUser(t, "test@example.com", "testpass123")

	// A token from a different key no longer verifies and must be replaced.
	stale, err := NewPasetoService([]byte("abcdef0123456789abcdef0123456789"), 0)
	require.NoError(t, err)
	old, err := stale.CreateToken(u.ID)
	require.NoError(t, err)
	_, err = f.tokens.Issue(ctx, u.ID, "", old)
	require.NoError(t, err)
	require.NoError(t, f.cache.Set(ctx, old, u.ID))

	key, reused, err := f.service.Obtain(ctx, "test@example.com", "testpass123")
	require.NoError(t, err)
	assert.False(t, reused)
	assert.NotEqual(t, old, key)
	assert.False(t, f.cache.has(old))

	_, err = f.tokens.GetByKey(ctx, old)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestService_Authenticate(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	u := f.createUser(t, "test@example.com", "testpass123")

	key, _, err := f.service.Obtain(ctx, "test@example.com", "testpass123")
	require.NoError(t, err)

	got, err := f.service.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "test@example.com", got.Email)
	assert.True(t, f.cache.has(key))

	// Cached path returns the same user.
	got, err = f.service.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestService_AuthenticateRejectsUnstoredToken(t *testing.T) {
	f := newFixture(t, 0)
	u := f.createUser(t, "test@example.com", "testpass123")

	// Valid signature, but never issued through Obtain.
	key, err := f.paseto.CreateToken(u.ID)
	require.NoError(t, err)

	_, err = f.service.Authenticate(context.Background(), key)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_AuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.service.Authenticate(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
