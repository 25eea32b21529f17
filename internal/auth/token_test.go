package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)

	token, err := tm.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, int64(42), token.UserID)
	assert.Equal(t, 15*time.Minute, token.ExpiresAt.Sub(token.IssuedAt))

	userID, err := tm.Verify(token.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("one", 15).Issue(1)
	require.NoError(t, err)

	_, err = NewTokenManager("two", 15).Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := tm.Issue(1)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManagerRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 15).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, h.Verify("secret", hash))
	assert.False(t, h.Verify("Secret", hash))
	assert.False(t, h.Verify("secret", "not-a-hash"))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, 10, NewBcryptHasher(0).Cost)
	assert.Equal(t, 10, NewBcryptHasher(99).Cost)
	assert.Equal(t, 12, NewBcryptHasher(12).Cost)
}
