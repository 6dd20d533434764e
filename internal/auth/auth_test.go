package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landmarket/server/internal/apperr"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, expires, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenRejected(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := NewTokenService("other", time.Hour).Verify(token)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokenService("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(token)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("shamba-2024"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", MaxPasswordBytes)))

	for _, password := range []string{"short", strings.Repeat("x", MaxPasswordBytes+1)} {
		err := ValidatePassword(password)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, "password", apperr.FieldOf(err))
	}

	hash, err := HashPassword(strings.Repeat("x", MaxPasswordBytes))
	require.NoError(t, err)
	ok, err := CheckPassword(hash, strings.Repeat("x", MaxPasswordBytes+8))
	require.NoError(t, err)
	assert.False(t, ok)
}
