// Package http provides the HTTP server implementation for the assistant.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/theIndrajeet/AskSarkar/internal/service"
	v1 "github.com/theIndrajeet/AskSarkar/internal/transport/http/v1"
	"github.com/theIndrajeet/AskSarkar/internal/transport/ws"
)

// NewServer creates the HTTP server carrying the REST API and, when wsServer
// is non-nil, the websocket chat endpoint.
func NewServer(svc *service.Service, wsServer *ws.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	if wsServer != nil {
		v1Handler.SetConnectionStats(wsServer)
		e.GET("/ws", wsServer.HandleWebSocket)
	}

	return e
}
