package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_Verifies(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, expiresAt, err := svc.GenerateAccessToken(user.Principal{ID: "u-1", Email: "sup@example.com", Role: user.RoleSupervisor}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	principal, err := user.FromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "u-1", principal.ID)
	assert.Equal(t, user.RoleSupervisor, principal.Role)
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestSSEToken_BoundToSite(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, expiresIn, err := svc.GenerateSSEToken("u-1", "site-a")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token, "site-a")
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	_, err = svc.ValidateSSEToken(token, "site-b")
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestValidateSSEToken_Rejections(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, _, err := svc.GenerateAccessToken(user.Principal{ID: "u-1", Role: user.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access, "site-a")
	assert.ErrorIs(t, err, user.ErrInvalidToken)

	foreign, _, err := NewJWTService("other-secret").GenerateSSEToken("u-1", "site-a")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(foreign, "site-a")
	assert.Error(t, err)

	expired, _, err := svc.GenerateAccessToken(user.Principal{ID: "u-1"}, -time.Hour)
	require.NoError(t, err)
	_, err = svc.JWTAuth().Decode(expired)
	assert.Error(t, err)
}
