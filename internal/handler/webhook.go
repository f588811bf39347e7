package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/service"
)

// MaxWebhookBody caps the processor payload read into memory.
const MaxWebhookBody = 64 << 10

// EventVerifier checks a processor signature.
type EventVerifier interface {
	VerifyEvent(payload []byte, signature string) (*payment.Event, error)
}

// Fulfiller turns a completed checkout into a booking.
type Fulfiller interface {
	HandleCheckoutCompleted(ctx context.Context, sess *payment.CheckoutSession) (*service.FulfillmentOutcome, error)
}

// WebhookHandler receives payment processor events.
type WebhookHandler struct {
	verifier  EventVerifier
	fulfiller Fulfiller
	logger    *zap.Logger
}

// NewWebhookHandler returns a WebhookHandler that verifies with verifier
// and hands completed checkouts to fulfiller.
func NewWebhookHandler(verifier EventVerifier, fulfiller Fulfiller, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, fulfiller: fulfiller, logger: logger}
}

// Stripe handles POST /api/stripe/webhook.  The raw body is verified
// before anything is parsed.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxWebhookBody+1))
	if err != nil || len(payload) > MaxWebhookBody {
		h.logger.Warn("webhook body unreadable or too large", zap.Int("bytes", len(payload)), zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Webhook error")
	}
	ev, err := h.verifier.VerifyEvent(payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("webhook signature rejected", zap.Error(err))
		return jsonError(c, http.StatusBadRequest, "Webhook error")
	}

	log := h.logger.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))
	if ev.Type != payment.EventCheckoutCompleted || ev.Session == nil {
		log.Debug("webhook event ignored")
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	if _, err := h.fulfiller.HandleCheckoutCompleted(c.Request().Context(), ev.Session); err != nil {
		if errors.Is(err, service.ErrInvalidMetadata) {
			// A retry would carry the same metadata.
			log.Error("checkout session metadata invalid, acknowledging", zap.Error(err))
			return c.JSON(http.StatusOK, echo.Map{"received": true})
		}
		log.Error("booking creation failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to create booking")
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
