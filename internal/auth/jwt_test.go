package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateToken("user-1", "alice@example.com", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "bitecheck", claims.Issuer)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.GenerateToken("user-1", "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	token, err := m.GenerateToken("user-1", "alice@example.com", "alice")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	_, err := m.ValidateToken("not-a-token")
	assert.Error(t, err)
}
