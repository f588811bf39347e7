package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/mail"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/utils"
)

// ContactInput is a website enquiry.
type ContactInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Company         string
	Message         string
	NewsletterOptIn bool
}

// ContactService forwards enquiries to the internal inbox.
type ContactService struct {
	sender     mail.Sender
	newsletter *NewsletterService
	inbox      string
	logger     *zap.Logger
}

// NewContactService wires the service.  newsletter may be nil, in which
// case opt-ins are ignored.
func NewContactService(sender mail.Sender, newsletter *NewsletterService, inbox string, logger *zap.Logger) *ContactService {
	return &ContactService{sender: sender, newsletter: newsletter, inbox: inbox, logger: logger}
}

// Submit sends the enquiry.  A failed newsletter opt-in is only logged.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) error {
	d := mail.ContactEmail{
		FirstName: utils.SanitizeInput(in.FirstName),
		LastName:  utils.SanitizeInput(in.LastName),
		Email:     utils.SanitizeInput(in.Email),
		Phone:     utils.SanitizeInput(in.Phone),
		Company:   utils.SanitizeInput(in.Company),
		Message:   in.Message,
	}
	if d.FirstName == "" || d.LastName == "" || d.Email == "" || d.Message == "" {
		return ErrMissingFields
	}
	if !utils.IsValidEmail(d.Email) {
		return ErrInvalidEmail
	}

	msg, err := mail.ContactEnquiry(d, s.inbox)
	if err != nil {
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send enquiry: %w", err)
	}
	s.logger.Info("contact enquiry sent", zap.String("reply_to", d.Email))

	if in.NewsletterOptIn && s.newsletter != nil {
		_, err := s.newsletter.subscribe(ctx, SubscribeInput{
			Email:     d.Email,
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Source:    model.SourceContactForm,
		})
		if err != nil {
			s.logger.Warn("contact newsletter opt-in failed", zap.Error(err))
		}
	}
	return nil
}
