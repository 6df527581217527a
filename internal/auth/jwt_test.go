package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestTokens_IssueAndValidate(t *testing.T) {
	tokens := NewTokens(secret)

	signed, expires, err := tokens.Issue("analyst@example.com", "viewer", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "analyst@example.com", claims.Subject)
	assert.Equal(t, "viewer", claims.Role)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens(secret)
	signed, _, err := tokens.Issue("someone", "", time.Minute)
	require.NoError(t, err)

	_, err = NewTokens("another-secret-entirely").Validate(signed)
	assert.Error(t, err, "wrong secret")

	later := NewTokens(secret)
	later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = later.Validate(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "x",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Validate(none)
	assert.Error(t, err, "alg none")

	_, err = tokens.Validate("garbage")
	assert.Error(t, err)
}

func TestTokens_Disabled(t *testing.T) {
	tokens := NewTokens("")
	assert.False(t, tokens.Enabled())

	_, _, err := tokens.Issue("x", "", 0)
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = tokens.Validate("x")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTokens_DefaultTTLAndSubject(t *testing.T) {
	tokens := NewTokens(secret)

	_, expires, err := tokens.Issue("x", "", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), expires, 5*time.Second)

	_, _, err = tokens.Issue("", "", time.Hour)
	assert.Error(t, err)
}
