package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/betterwealth/workshop-booking/internal/service"
)

const msgInternal = "Internal server error"

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// clientError maps the validation errors shared by the form endpoints.  It
// returns ok=false for anything that should be a 500.
func clientError(err error) (int, string, bool) {
	var seats *service.InsufficientSeatsError
	switch {
	case errors.As(err, &seats):
		return http.StatusBadRequest, seats.Error(), true
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, service.ErrAlreadySubscribed):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, service.ErrBotCheckFailed),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrMissingFields):
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, "", false
}
