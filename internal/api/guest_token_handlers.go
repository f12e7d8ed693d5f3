package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/auth"
	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

const guestTokenContextKey = "guest_token"

// CreateGuestTokenRequest represents the guest token creation request body
type CreateGuestTokenRequest struct {
	Label string `json:"label"`
}

// createGuestTokenHandler handles POST /api/guest-tokens (guardian only).
// The plain token value appears in the response once and is never shown again.
func createGuestTokenHandler(c echo.Context) error {
	actor := auth.UserFromContext(c)

	var req CreateGuestTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "label is required",
		})
	}

	token, gt, err := guestTokenRepo.Create(actor.ID, req.Label, cfg.GuestTokenLifetime, timeNow())
	if err != nil {
		c.Logger().Error("create guest token error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	auditLogger.Log(models.ActionTokenCreated, models.EntityGuestToken, nil, audit.ID(actor.ID),
		map[string]string{"token_id": gt.ID, "label": gt.Label})

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token":       token,
		"guest_token": gt,
	})
}

// listGuestTokensHandler handles GET /api/guest-tokens (guardian only)
func listGuestTokensHandler(c echo.Context) error {
	actor := auth.UserFromContext(c)

	tokens, err := guestTokenRepo.ListByCreator(actor.ID)
	if err != nil {
		c.Logger().Error("list guest tokens error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	if tokens == nil {
		tokens = []*models.GuestToken{}
	}

	return c.JSON(http.StatusOK, tokens)
}

// revokeGuestTokenHandler handles DELETE /api/guest-tokens/:id (guardian only)
func revokeGuestTokenHandler(c echo.Context) error {
	actor := auth.UserFromContext(c)
	tokenID := c.Param("id")

	if err := guestTokenRepo.Revoke(tokenID); err != nil {
		if errors.Is(err, database.ErrGuestTokenNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "guest token not found",
			})
		}
		c.Logger().Error("revoke guest token error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	auditLogger.Log(models.ActionTokenRevoked, models.EntityGuestToken, nil, audit.ID(actor.ID),
		map[string]string{"token_id": tokenID})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "guest token revoked",
	})
}

// RequireGuestToken validates the bearer guest token on read-only guest routes.
// Revoked and expired tokens get the same response as unknown ones.
func RequireGuestToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.TokenFromRequest(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "guest token required",
				})
			}

			gt, err := guestTokenRepo.GetByToken(token, timeNow())
			if err != nil {
				if errors.Is(err, database.ErrGuestTokenNotFound) {
					return c.JSON(http.StatusUnauthorized, map[string]string{
						"error": "invalid guest token",
					})
				}
				c.Logger().Error("guest token lookup error: ", err)
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "internal error",
				})
			}

			auditLogger.Log(models.ActionTokenUsed, models.EntityGuestToken, nil, nil,
				map[string]string{"token_id": gt.ID, "path": c.Request().URL.Path})

			c.Set(guestTokenContextKey, gt)
			return next(c)
		}
	}
}

// guestInfoHandler handles GET /api/guest/me
func guestInfoHandler(c echo.Context) error {
	gt, ok := c.Get(guestTokenContextKey).(*models.GuestToken)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "guest token required",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"label":      gt.Label,
		"expires_at": gt.ExpiresAt,
	})
}
