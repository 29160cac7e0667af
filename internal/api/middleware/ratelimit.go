package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Redis client for storing rate limit data; nil disables the
	// distributed counter and falls back to the in-process limiters.
	RedisClient *redis.Client

	// Default per-caller rate
	DefaultLimit rate.Limit
	DefaultBurst int

	// Endpoint-specific limits keyed by "METHOD /path"
	EndpointLimits map[string]EndpointLimit
}

// EndpointLimit defines rate limits for specific endpoints
type EndpointLimit struct {
	MaxRequests int
	Window      time.Duration
}

// maxTrackedCallers bounds the local limiter map; past this the map is
// reset wholesale.
const maxTrackedCallers = 10000

// RateLimit enforces per-caller request limits. The limiter runs before
// authentication, so callers are keyed by remote IP.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	var (
		mu     sync.Mutex
		locals = make(map[string]*rate.Limiter)
	)
	localFor := func(caller string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if len(locals) >= maxTrackedCallers {
			locals = make(map[string]*rate.Limiter)
		}
		limiter, ok := locals[caller]
		if !ok {
			limiter = rate.NewLimiter(cfg.DefaultLimit, cfg.DefaultBurst)
			locals[caller] = limiter
		}
		return limiter
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := c.RealIP()

			endpoint := c.Request().Method + " " + c.Path()
			limit, scoped := cfg.EndpointLimits[endpoint]

			if cfg.RedisClient != nil && scoped {
				key := fmt.Sprintf("rate_limit:%s:%s", caller, endpoint)
				ctx := c.Request().Context()

				pipe := cfg.RedisClient.Pipeline()
				incr := pipe.Incr(ctx, key)
				pipe.Expire(ctx, key, limit.Window)
				if _, err := pipe.Exec(ctx); err == nil {
					if int(incr.Val()) > limit.MaxRequests {
						return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
					}
					return next(c)
				}
				// Redis unavailable: fall through to the local limiter.
			}

			if !localFor(caller).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
