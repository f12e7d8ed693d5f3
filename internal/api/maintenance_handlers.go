package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// cleanupHandler handles POST /api/internal/cleanup. Intended for a cron
// caller; guarded by a shared secret so it cannot be triggered anonymously.
// Sweeps expired sessions, stale rate limit windows, old login attempts and
// expired guest tokens.
func cleanupHandler(c echo.Context) error {
	if cfg.CleanupSecret == "" {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "not found",
		})
	}

	secret := c.Request().Header.Get("X-Cleanup-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.CleanupSecret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid secret",
		})
	}

	now := timeNow()

	sessions, err := sessionRepo.DeleteExpired(now)
	if err != nil {
		c.Logger().Error("cleanup sessions error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	// Windows older than an hour can no longer influence any rate decision
	rateLimits, err := rateLimitRepo.DeleteBefore(now.Add(-time.Hour))
	if err != nil {
		c.Logger().Error("cleanup rate limits error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	// Attempts outside the lockout window no longer count toward a lock
	attempts, err := attemptRepo.DeleteBefore(now.Add(-cfg.PinLockoutDuration))
	if err != nil {
		c.Logger().Error("cleanup attempts error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	guestTokens, err := guestTokenRepo.DeleteExpired(now)
	if err != nil {
		c.Logger().Error("cleanup guest tokens error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions_deleted":     sessions,
		"rate_limits_deleted":  rateLimits,
		"attempts_deleted":     attempts,
		"guest_tokens_deleted": guestTokens,
	})
}
