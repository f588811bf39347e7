package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/service"
)

// CheckoutCreator opens a payment session for a booking form.
type CheckoutCreator interface {
	CreateSession(ctx context.Context, in service.CheckoutInput) (string, error)
}

// CheckoutHandler starts hosted payment sessions.
type CheckoutHandler struct {
	svc    CheckoutCreator
	logger *zap.Logger
}

// NewCheckoutHandler returns a CheckoutHandler backed by svc.
func NewCheckoutHandler(svc CheckoutCreator, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, logger: logger}
}

// session_id is accepted as a JSON number or string.
type checkoutReq struct {
	SessionID      flexID `json:"session_id"`
	Quantity       *int   `json:"quantity"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Company        string `json:"company"`
	TurnstileToken string `json:"turnstile_token"`
}

type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := string(b)
	if uq, err := strconv.Unquote(s); err == nil {
		s = uq
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(n)
	return nil
}

// CreateSession handles POST /api/create-checkout-session.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.SessionID == 0 {
		return jsonError(c, http.StatusBadRequest, "Missing required fields")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	url, err := h.svc.CreateSession(c.Request().Context(), service.CheckoutInput{
		WorkshopDateID: uint64(req.SessionID),
		Quantity:       qty,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Company:        req.Company,
		TurnstileToken: req.TurnstileToken,
		RemoteIP:       c.RealIP(),
	})
	if err != nil {
		if status, msg, ok := clientError(err); ok {
			return jsonError(c, status, msg)
		}
		h.logger.Error("create checkout session failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, msgInternal)
	}
	return c.JSON(http.StatusOK, echo.Map{"redirect_url": url})
}
