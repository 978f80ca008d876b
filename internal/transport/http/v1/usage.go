package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GetUsage returns today's generation quota usage and notice.
// GET /v1/usage
func (h *Handler) GetUsage(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"usage":   h.service.UsageInfo(ctx),
		"message": h.service.UsageMessage(ctx),
	})
}

// ResetUsage zeroes today's counter.
// POST /v1/usage/reset
func (h *Handler) ResetUsage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"usage": h.service.ResetUsage(c.Request().Context()),
	})
}
