package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/service"
)

// BookingLookup resolves a checkout session to a summary.
type BookingLookup interface {
	Lookup(ctx context.Context, sessionID string) (*service.BookingSummary, error)
}

// BookingHandler serves the confirmation page lookup.
type BookingHandler struct {
	lookup BookingLookup
	logger *zap.Logger
}

// NewBookingHandler returns a BookingHandler backed by lookup.
func NewBookingHandler(lookup BookingLookup, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{lookup: lookup, logger: logger}
}

// Details handles GET /api/booking-details?session_id=.
func (h *BookingHandler) Details(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("session_id"))
	if id == "" {
		return jsonError(c, http.StatusBadRequest, "Missing session_id")
	}
	sum, err := h.lookup.Lookup(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("booking lookup failed", zap.String("checkout_session_id", id), zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to retrieve booking")
	}
	return c.JSON(http.StatusOK, sum)
}
