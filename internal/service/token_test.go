package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/recipehub/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = model.Identity{
	UserID:   "4f0c8d1e-1b7a-4c1e-9d55-0d7c2a3b9e10",
	Username: "alice",
	Name:     "Alice",
	Email:    "alice@example.com",
}

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenManager("secret")
	require.NoError(t, err)

	signed, expiresAt, err := tokens.Issue(testIdentity)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenLifetime), expiresAt, 5*time.Second)

	identity, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, *identity)
}

func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	tokens, err := NewTokenManager("secret", WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	signed, expiresAt, err := tokens.Issue(testIdentity)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(15*24*time.Hour), expiresAt)

	now = issuedAt.Add(TokenLifetime - time.Second)
	_, err = tokens.Verify(signed)
	require.NoError(t, err)

	now = issuedAt.Add(TokenLifetime + time.Second)
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenRejectsForgeries(t *testing.T) {
	tokens, err := NewTokenManager("secret")
	require.NoError(t, err)
	signed, _, err := tokens.Issue(testIdentity)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("other-secret")
		require.NoError(t, err)
		_, err = other.Verify(signed)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("swapped payload", func(t *testing.T) {
		forged, _, err := tokens.Issue(model.Identity{UserID: "mallory", Username: "mallory"})
		require.NoError(t, err)
		orig := strings.Split(signed, ".")
		fake := strings.Split(forged, ".")
		_, err = tokens.Verify(orig[0] + "." + fake[1] + "." + orig[2])
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := accessClaims{
			UserID: testIdentity.UserID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Verify(unsigned)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("  ")
	assert.ErrorIs(t, err, ErrMisconfigured)
}
