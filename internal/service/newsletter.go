package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/captcha"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/utils"
)

const (
	MsgSubscribed   = "Thank you for subscribing!"
	MsgResubscribed = "Welcome back! You have been re-subscribed."
)

// SubscribeInput is a newsletter signup.
type SubscribeInput struct {
	Email          string
	FirstName      string
	LastName       string
	Source         string
	TurnstileToken string
	RemoteIP       string
}

// NewsletterService manages the newsletter list.
type NewsletterService struct {
	subscribers SubscriberStore
	captcha     captcha.Verifier
	logger      *zap.Logger
}

// NewNewsletterService returns a NewsletterService.
func NewNewsletterService(subscribers SubscriberStore, verifier captcha.Verifier, logger *zap.Logger) *NewsletterService {
	return &NewsletterService{subscribers: subscribers, captcha: verifier, logger: logger}
}

// Subscribe adds or reactivates a subscriber and returns the message to
// show.  An active address yields ErrAlreadySubscribed.
func (s *NewsletterService) Subscribe(ctx context.Context, in SubscribeInput) (string, error) {
	ok, err := s.captcha.Verify(ctx, in.TurnstileToken, in.RemoteIP)
	if err != nil {
		s.logger.Warn("newsletter: bot verification error", zap.Error(err))
	}
	if !ok {
		return "", ErrBotCheckFailed
	}
	return s.subscribe(ctx, in)
}

// subscribe skips the bot check; the contact form has its own.
func (s *NewsletterService) subscribe(ctx context.Context, in SubscribeInput) (string, error) {
	email := utils.SanitizeInput(in.Email)
	first := utils.SanitizeInput(in.FirstName)
	last := utils.SanitizeInput(in.LastName)
	source := utils.SanitizeInput(in.Source)
	if source == "" {
		source = model.SourceFooter
	}

	if email == "" {
		return "", ErrEmailRequired
	}
	if !utils.IsValidEmail(email) {
		return "", ErrInvalidEmail
	}
	email = utils.NormalizeEmail(email)

	existing, err := s.subscribers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Active {
			return "", ErrAlreadySubscribed
		}
		if err := s.subscribers.Reactivate(ctx, existing.ID, first, last, source); err != nil {
			return "", fmt.Errorf("reactivate subscriber: %w", err)
		}
		s.logger.Info("subscriber reactivated", zap.Uint64("subscriber_id", existing.ID))
		return MsgResubscribed, nil
	case !errors.Is(err, repository.ErrNotFound):
		return "", fmt.Errorf("find subscriber: %w", err)
	}

	sub := &model.Subscriber{Email: email, FirstName: first, LastName: last, Source: source}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", ErrAlreadySubscribed
		}
		return "", fmt.Errorf("create subscriber: %w", err)
	}
	s.logger.Info("subscriber created", zap.Uint64("subscriber_id", sub.ID), zap.String("source", source))
	return MsgSubscribed, nil
}
