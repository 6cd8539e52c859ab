package http

import (
	"log/slog"
	"net/http"
	"strings"

	"pizzatracker/internal/adapters/in/ws"
	"pizzatracker/internal/api/servers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserHeader carries the caller identity. Authentication happens upstream.
const UserHeader = ws.UserHeader

const userIDKey = "user_id"

// RequireUser rejects requests without an X-User-Id header and stores the id
// on both the echo context and the request context.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := strings.TrimSpace(ctx.Request().Header.Get(UserHeader))
			if id == "" {
				return ctx.JSON(http.StatusUnauthorized, servers.Error{
					Code:    http.StatusUnauthorized,
					Message: "authentication required",
				})
			}

			ctx.Set(userIDKey, id)
			ctx.SetRequest(ctx.Request().WithContext(ws.WithUserID(ctx.Request().Context(), id)))
			return next(ctx)
		}
	}
}

func userID(ctx echo.Context) string {
	id, _ := ctx.Get(userIDKey).(string)
	return id
}

// RequestLogger logs every request through slog.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				logger.WarnContext(ctx.Request().Context(), "Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.DebugContext(ctx.Request().Context(), "Request completed", attrs...)
			return nil
		},
	})
}
