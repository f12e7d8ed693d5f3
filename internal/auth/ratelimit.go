package auth

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

// Endpoint classes for rate limiting
const (
	EndpointLogin = "login"
	EndpointAPI   = "api"
)

// RateLimiter is a fixed-window request counter persisted in the store,
// keyed by (client IP, endpoint class). All instances behind the same
// database share state.
type RateLimiter struct {
	repo     *database.RateLimitRepo
	auditLog *audit.Logger
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(repo *database.RateLimitRepo, auditLog *audit.Logger) *RateLimiter {
	return &RateLimiter{
		repo:     repo,
		auditLog: auditLog,
		now:      time.Now,
	}
}

// Check records one request against the endpoint's window and reports whether
// it was allowed. Every rejection is audited.
func (rl *RateLimiter) Check(ip, endpoint string, limit int, window time.Duration) (bool, error) {
	allowed, err := rl.repo.Hit(ip, endpoint, limit, window, rl.now().UTC())
	if err != nil {
		return false, err
	}

	if !allowed {
		rl.auditLog.Log(models.ActionRateLimited, "", nil, nil, map[string]interface{}{
			"ip":       ip,
			"endpoint": endpoint,
		})
	}

	return allowed, nil
}

// Middleware returns an Echo middleware that rejects requests over the limit
// with 429. The retry hint is the remainder of the current window; the exact
// window size is not exposed to the client.
func (rl *RateLimiter) Middleware(endpoint string, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := rl.Check(c.RealIP(), endpoint, limit, window)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "internal error",
				})
			}

			if !allowed {
				windowSeconds := int64(window.Seconds())
				retryAfter := windowSeconds - rl.now().Unix()%windowSeconds
				c.Response().Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "too many requests, try again later",
				})
			}

			return next(c)
		}
	}
}
