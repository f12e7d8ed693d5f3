package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// timeNow is swapped out in tests
var timeNow = time.Now

// healthCheck handles GET /api/health
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// parseID parses a numeric path parameter
func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
