package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"famtrack-backend/internal/auth"
	"famtrack-backend/internal/models"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Role   string `json:"role"`
	UserID int64  `json:"user_id"`
	Pin    string `json:"pin"`
}

// loginHandler handles POST /api/auth/login
func loginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	resp, err := authService.Login(models.Role(req.Role), req.UserID, req.Pin, c.RealIP())
	if err != nil {
		return authErrorResponse(c, err)
	}

	// Set token in cookie (HttpOnly for security)
	cookie := &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(cfg.SessionLifetime.Seconds()),
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, resp)
}

// logoutHandler handles POST /api/auth/logout
func logoutHandler(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token != "" {
		if err := authService.Logout(token); err != nil {
			c.Logger().Error("logout error: ", err)
		}
	}

	// Clear cookie
	cookie := &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// getCurrentUser handles GET /api/auth/me
func getCurrentUser(c echo.Context) error {
	user := auth.UserFromContext(c)
	session := auth.SessionFromContext(c)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":       user,
		"expires_at": session.ExpiresAt,
	})
}

// ChangePinRequest represents the PIN change request body
type ChangePinRequest struct {
	CurrentPin string `json:"current_pin"`
	NewPin     string `json:"new_pin"`
}

// changePinHandler handles POST /api/auth/pin/change
func changePinHandler(c echo.Context) error {
	user := auth.UserFromContext(c)

	var req ChangePinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := authService.ChangePin(user.ID, req.CurrentPin, req.NewPin); err != nil {
		return authErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "PIN changed",
	})
}

// SetPinRequest represents the administrative PIN set request body
type SetPinRequest struct {
	UserID int64  `json:"user_id"`
	NewPin string `json:"new_pin"`
}

// setPinHandler handles POST /api/auth/pin/set (guardian only)
func setPinHandler(c echo.Context) error {
	actor := auth.UserFromContext(c)

	var req SetPinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := authService.SetPin(req.UserID, req.NewPin, actor.ID); err != nil {
		return authErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "PIN set",
	})
}

// UnlockRequest represents the emergency unlock request body
type UnlockRequest struct {
	UserID     int64  `json:"user_id"`
	Pin        string `json:"pin"`
	UnlockCode string `json:"unlock_code"`
}

// unlockWithCodeHandler handles POST /api/auth/unlock
func unlockWithCodeHandler(c echo.Context) error {
	var req UnlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if err := authService.UnlockWithCode(req.UserID, req.Pin, req.UnlockCode); err != nil {
		return authErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "account unlocked",
	})
}

// authErrorResponse maps auth service errors to HTTP responses.
// Wrong PIN and unknown user share one generic message; a lock is
// deliberately distinguishable and carries a countdown.
func authErrorResponse(c echo.Context, err error) error {
	var locked *auth.LockedError
	switch {
	case errors.Is(err, auth.ErrRateLimited):
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "too many requests, try again later",
		})
	case errors.Is(err, auth.ErrInvalidRole), errors.Is(err, auth.ErrMalformedPin):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidCurrentPin),
		errors.Is(err, auth.ErrInvalidUnlockCode):
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "invalid credentials",
		})
	case errors.As(err, &locked):
		return c.JSON(http.StatusForbidden, map[string]interface{}{
			"error":             "account locked",
			"minutes_remaining": locked.MinutesRemaining(timeNow()),
		})
	default:
		c.Logger().Error("auth error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
}
