package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StartSession opens a new session.
// POST /v1/sessions
func (h *Handler) StartSession(c echo.Context) error {
	start, err := h.service.StartSession(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, start)
}

// PostMessageRequest is the body of a user message.
type PostMessageRequest struct {
	Content string `json:"content"`
	Voice   bool   `json:"voice,omitempty"`
}

// PostMessage runs one conversation turn.
// POST /v1/sessions/:session_id/messages
func (h *Handler) PostMessage(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.ProcessMessage(c.Request().Context(), sessionID, req.Content, req.Voice)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetSessionContext returns the session with the remembered profile.
// GET /v1/sessions/:session_id/context
func (h *Handler) GetSessionContext(c echo.Context) error {
	snapshot, err := h.service.SessionContext(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// GetSuggestions returns follow-up question ideas.
// GET /v1/sessions/:session_id/suggestions
func (h *Handler) GetSuggestions(c echo.Context) error {
	suggestions, err := h.service.Suggestions(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// GetDocument returns the application text of a session.
// GET /v1/sessions/:session_id/document
func (h *Handler) GetDocument(c echo.Context) error {
	doc, err := h.service.Document(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, doc)
	}
	return c.JSON(http.StatusOK, map[string]string{"document": doc})
}

// CompleteSession records the session as a successful request.
// POST /v1/sessions/:session_id/complete
func (h *Handler) CompleteSession(c echo.Context) error {
	summary, doc, err := h.service.CompleteSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"summary":  summary,
		"document": doc,
	})
}

// EndSession closes a session and saves it to history.
// DELETE /v1/sessions/:session_id
func (h *Handler) EndSession(c echo.Context) error {
	summary, err := h.service.EndSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"summary": summary,
	})
}

// GetGreeting returns a greeting personalized from the remembered profile.
// GET /v1/greeting
func (h *Handler) GetGreeting(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"greeting": h.service.Greeting(c.Request().Context()),
	})
}

// ClearContext erases the remembered profile and history.
// DELETE /v1/context
func (h *Handler) ClearContext(c echo.Context) error {
	h.service.ClearContext(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
