package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/service"
)

// Subscriber signs an address up to the newsletter.
type Subscriber interface {
	Subscribe(ctx context.Context, in service.SubscribeInput) (string, error)
}

// ContactSubmitter forwards an enquiry.
type ContactSubmitter interface {
	Submit(ctx context.Context, in service.ContactInput) error
}

// FormsHandler serves the newsletter and contact forms.
type FormsHandler struct {
	newsletter Subscriber
	contact    ContactSubmitter
	logger     *zap.Logger
}

// NewFormsHandler returns a FormsHandler.
func NewFormsHandler(newsletter Subscriber, contact ContactSubmitter, logger *zap.Logger) *FormsHandler {
	return &FormsHandler{newsletter: newsletter, contact: contact, logger: logger}
}

type newsletterReq struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Source         string `json:"source"`
	TurnstileToken string `json:"turnstile_token"`
}

// Newsletter handles POST /api/newsletter.
func (h *FormsHandler) Newsletter(c echo.Context) error {
	var req newsletterReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	msg, err := h.newsletter.Subscribe(c.Request().Context(), service.SubscribeInput{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Source:         req.Source,
		TurnstileToken: req.TurnstileToken,
		RemoteIP:       c.RealIP(),
	})
	if err != nil {
		if status, m, ok := clientError(err); ok {
			return jsonError(c, status, m)
		}
		h.logger.Error("newsletter signup failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to subscribe. Please try again.")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg})
}

type contactReq struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Company         string `json:"company"`
	Message         string `json:"message"`
	NewsletterOptIn bool   `json:"newsletter_opt_in"`
}

// Contact handles POST /api/contact.
func (h *FormsHandler) Contact(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body")
	}
	err := h.contact.Submit(c.Request().Context(), service.ContactInput(req))
	if err != nil {
		if status, m, ok := clientError(err); ok {
			return jsonError(c, status, m)
		}
		h.logger.Error("contact enquiry failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to send email")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
