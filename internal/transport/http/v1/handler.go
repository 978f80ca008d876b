// Package v1 provides the version 1 REST handlers.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/theIndrajeet/AskSarkar/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	conns   ConnectionStats
}

// ConnectionStats reports live chat connections for the health check.
type ConnectionStats interface {
	ConnectionCount() int
	SessionCount() int
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// SetConnectionStats adds live connection counts to the health check.
func (h *Handler) SetConnectionStats(stats ConnectionStats) {
	h.conns = stats
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Sessions
	e.POST("/v1/sessions", h.StartSession)
	e.POST("/v1/sessions/:session_id/messages", h.PostMessage)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.GET("/v1/sessions/:session_id/events", h.GetSessionEvents)
	e.GET("/v1/sessions/:session_id/context", h.GetSessionContext)
	e.GET("/v1/sessions/:session_id/suggestions", h.GetSuggestions)
	e.GET("/v1/sessions/:session_id/document", h.GetDocument)
	e.POST("/v1/sessions/:session_id/complete", h.CompleteSession)
	e.DELETE("/v1/sessions/:session_id", h.EndSession)

	// Remembered context
	e.GET("/v1/greeting", h.GetGreeting)
	e.DELETE("/v1/context", h.ClearContext)

	// Quota
	e.GET("/v1/usage", h.GetUsage)
	e.POST("/v1/usage/reset", h.ResetUsage)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	resp := map[string]interface{}{
		"status":    "healthy",
		"version":   "0.1.0",
		"generator": h.service.Generator().Name(),
	}
	if h.conns != nil {
		resp["connections"] = h.conns.ConnectionCount()
		resp["live_sessions"] = h.conns.SessionCount()
	}
	return c.JSON(http.StatusOK, resp)
}

// writeError maps service errors to HTTP status codes.
func writeError(c echo.Context, err error) error {
	var quotaErr *service.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
			"error": quotaErr.Error(),
			"usage": quotaErr.Usage,
		})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrTurnInProgress):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrPolicyBlocked):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
