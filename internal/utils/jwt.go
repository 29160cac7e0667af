package utils

import (
	"errors"
	"time"

	"panveliq/internal/config"
	"panveliq/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// GenerateJWT mints the short-lived access token the API middleware checks.
func GenerateJWT(user *models.User) (string, error) {
	return signToken(user, "access", AccessTokenTTL)
}

// GenerateRefreshToken mints the long-lived token used only at the refresh
// endpoint.
func GenerateRefreshToken(user *models.User) (string, error) {
	return signToken(user, "refresh", RefreshTokenTTL)
}

func signToken(user *models.User, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetConfig().JWT.Secret))
}

// ValidateRefreshToken checks a refresh token and returns the user id it
// was issued for.
func ValidateRefreshToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(config.GetConfig().JWT.Secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.Kind != "refresh" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
