package http

import (
	"errors"
	"net/http"

	"pizzatracker/internal/api/servers"
	"pizzatracker/internal/core/domain/services"
	"pizzatracker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// writeError maps use case errors to status codes. Anything unexpected is
// logged and reported as 500 without details.
func (s *Server) writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status, message = http.StatusNotFound, "Order not found"
	case errors.Is(err, services.ErrInvalidOrder):
		status, message = http.StatusUnprocessableEntity, "Order cannot be tracked"
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status, message = http.StatusBadRequest, err.Error()
	default:
		s.logger.ErrorContext(ctx.Request().Context(), "Request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
	}

	return ctx.JSON(status, servers.Error{
		Code:    status,
		Message: message,
	})
}
