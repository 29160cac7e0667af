package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	return signTestTokenKind(t, secret, "access", expires)
}

func signTestTokenKind(t *testing.T, secret, kind string, expires time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: "user-1",
		Email:  "user@example.com",
		Role:   "admin",
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func runAuth(t *testing.T, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	m := NewAuthMiddleware(testSecret)
	handler := m.Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserID(c)+":"+GetUserRole(c))
	})
	return rec, handler(c)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token := signTestToken(t, testSecret, time.Now().Add(time.Hour))
	rec, err := runAuth(t, "Bearer "+token)

	require.NoError(t, err)
	assert.Equal(t, "user-1:admin", rec.Body.String())
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	_, err := runAuth(t, "")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	_, err := runAuth(t, "Token abc")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	token := signTestToken(t, "other-secret", time.Now().Add(time.Hour))
	_, err := runAuth(t, "Bearer "+token)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareRejectsRefreshToken(t *testing.T) {
	// A refresh token is signed with the same secret but must never
	// authenticate API requests.
	token := signTestTokenKind(t, testSecret, "refresh", time.Now().Add(time.Hour))
	_, err := runAuth(t, "Bearer "+token)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareRejectsMissingKind(t *testing.T) {
	token := signTestTokenKind(t, testSecret, "", time.Now().Add(time.Hour))
	_, err := runAuth(t, "Bearer "+token)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	token := signTestToken(t, testSecret, time.Now().Add(-time.Hour))
	_, err := runAuth(t, "Bearer "+token)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestContextHelpersDefaultEmpty(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, GetUserID(c))
	assert.Empty(t, GetUserRole(c))
}
