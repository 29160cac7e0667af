package utils

import (
	"testing"

	"panveliq/internal/config"
	"panveliq/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	u := &models.User{
		Email: "ana@example.com",
		Role:  models.UserRoleAdmin,
	}
	u.ID = "3f1c9a00-0000-0000-0000-000000000001"
	return u
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")
	_, err := config.Load()
	require.NoError(t, err)

	user := testUser()
	token, err := GenerateRefreshToken(user)
	require.NoError(t, err)

	userID, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")
	_, err := config.Load()
	require.NoError(t, err)

	token, err := GenerateJWT(testUser())
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestRefreshTokenWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	_, err := config.Load()
	require.NoError(t, err)

	token, err := GenerateRefreshToken(testUser())
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-b")
	_, err = config.Load()
	require.NoError(t, err)

	_, err = ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "whatever")
	_, err := config.Load()
	require.NoError(t, err)

	_, err = ValidateRefreshToken("not.a.token")
	assert.Error(t, err)
}
