// Package http exposes the order API, the tracking websocket and the API
// description over echo.
package http

import (
	"log/slog"
	"net/http"

	"pizzatracker/internal/api/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// TrackingPath is where the tracking websocket is mounted.
const TrackingPath = "/api/v1/tracking/ws"

// NewRouter builds the echo instance serving the API, the tracking websocket,
// /openapi.json and the swagger UI.
func NewRouter(server *Server, tracking http.Handler, logger *slog.Logger) (*echo.Echo, error) {
	openAPIJSON, err := servers.RegisterSwagger()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger.With("component", "http")))

	servers.RegisterHandlersWithBaseURL(e, server, "", RequireUser())
	e.GET(TrackingPath, echo.WrapHandler(tracking), RequireUser())

	e.GET("/openapi.json", func(ctx echo.Context) error {
		return ctx.JSONBlob(http.StatusOK, openAPIJSON)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
