package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func rateLimitRequest(t *testing.T, mw echo.MiddlewareFunc, ip string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRateLimitKeysLocalLimiterByCaller(t *testing.T) {
	// A refill interval of an hour keeps the burst as the effective limit.
	mw := RateLimit(RateLimitConfig{
		DefaultLimit: rate.Every(time.Hour),
		DefaultBurst: 2,
	})

	require.NoError(t, rateLimitRequest(t, mw, "203.0.113.1"))
	require.NoError(t, rateLimitRequest(t, mw, "203.0.113.1"))

	err := rateLimitRequest(t, mw, "203.0.113.1")
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)

	// A different caller has its own budget.
	assert.NoError(t, rateLimitRequest(t, mw, "203.0.113.2"))
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	mw := RateLimit(RateLimitConfig{
		DefaultLimit: rate.Every(time.Hour),
		DefaultBurst: 5,
	})

	for i := 0; i < 5; i++ {
		assert.NoError(t, rateLimitRequest(t, mw, "203.0.113.9"))
	}
}
