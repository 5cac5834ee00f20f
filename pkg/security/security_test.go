package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidekick-ai/sidekick-ai/pkg/security"
)

func TestSignAndParseToken(t *testing.T) {
	claims := security.NewTokenClaims("user-1", "pro", time.Now().Add(time.Hour))

	signed, err := security.SignToken(claims, "test-secret")
	require.NoError(t, err)

	parsed, err := security.ParseToken(signed, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.GetUser())
	assert.Equal(t, "pro", parsed.GetPlan())
}

func TestParseTokenWrongSecret(t *testing.T) {
	claims := security.NewTokenClaims("user-1", "free", time.Now().Add(time.Hour))

	signed, err := security.SignToken(claims, "right-secret")
	require.NoError(t, err)

	_, err = security.ParseToken(signed, "wrong-secret")
	assert.Error(t, err)
}

func TestParseExpiredToken(t *testing.T) {
	claims := security.NewTokenClaims("user-1", "free", time.Now().Add(-time.Minute))

	signed, err := security.SignToken(claims, "secret")
	require.NoError(t, err)

	_, err = security.ParseToken(signed, "secret")
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := security.HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, security.VerifyPassword(hashed, "hunter2"))
	assert.False(t, security.VerifyPassword(hashed, "hunter3"))
}
