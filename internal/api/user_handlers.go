package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"famtrack-backend/internal/auth"
	"famtrack-backend/internal/database"
)

// indefiniteLock is the duration used for a guardian-initiated block with no
// explicit duration. Cleared only by an explicit unlock.
const indefiniteLock = 365 * 24 * time.Hour

// listChildrenHandler handles GET /api/users/children
func listChildrenHandler(c echo.Context) error {
	children, err := userRepo.ListActiveChildren()
	if err != nil {
		c.Logger().Error("list children error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	return c.JSON(http.StatusOK, children)
}

// LockUserRequest represents the administrative lock request body
type LockUserRequest struct {
	DurationSeconds int64 `json:"duration_seconds"`
}

// lockUserHandler handles POST /api/users/:id/lock
func lockUserHandler(c echo.Context) error {
	actor := auth.UserFromContext(c)

	userID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	var req LockUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	duration := indefiniteLock
	if req.DurationSeconds > 0 {
		duration = time.Duration(req.DurationSeconds) * time.Second
	}

	if err := authService.LockUser(userID, duration, actor.ID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("lock user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "user locked",
	})
}

// unlockUserHandler handles POST /api/users/:id/unlock
func unlockUserHandler(c echo.Context) error {
	actor := auth.UserFromContext(c)

	userID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid user ID",
		})
	}

	if err := authService.UnlockUser(userID, actor.ID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "user not found",
			})
		}
		c.Logger().Error("unlock user error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "user unlocked",
	})
}
