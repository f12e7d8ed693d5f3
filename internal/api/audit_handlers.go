package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"famtrack-backend/internal/models"
)

// listAuditHandler handles GET /api/audit with pagination and filters
func listAuditHandler(c echo.Context) error {
	filter := models.AuditFilter{
		Action:       c.QueryParam("action"),
		ActionPrefix: c.QueryParam("action_prefix"),
		Limit:        50,
	}

	if v := c.QueryParam("actor_id"); v != "" {
		actorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid actor_id",
			})
		}
		filter.ActorID = &actorID
	}

	if v := c.QueryParam("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid start time, expected RFC3339",
			})
		}
		filter.StartTime = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid end time, expected RFC3339",
			})
		}
		filter.EndTime = t
	}

	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 500 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid limit",
			})
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid offset",
			})
		}
		filter.Offset = offset
	}

	entries, total, err := auditRepo.List(filter)
	if err != nil {
		c.Logger().Error("list audit error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	if entries == nil {
		entries = []*models.AuditEntry{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// getAuditActionsHandler handles GET /api/audit/actions
func getAuditActionsHandler(c echo.Context) error {
	actions, err := auditRepo.GetActions()
	if err != nil {
		c.Logger().Error("audit actions error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}

	if actions == nil {
		actions = []string{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"actions": actions,
	})
}
