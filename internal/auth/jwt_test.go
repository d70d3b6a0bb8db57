package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/domain"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute)

	token, err := manager.GenerateAccessToken("user-1", "player@example.com", domain.RoleUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "player@example.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, "gamevault-api", claims.Issuer)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute)
	other := NewJWTManager("other-secret", 15*time.Minute)

	token, err := manager.GenerateAccessToken("user-1", "player@example.com", domain.RoleUser)
	require.NoError(t, err)

	claims, err := other.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret", -1*time.Minute)

	token, err := manager.GenerateAccessToken("user-1", "player@example.com", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute)

	claims, err := manager.ValidateAccessToken("not.a.token")
	assert.Nil(t, claims)
	assert.Error(t, err)
}
