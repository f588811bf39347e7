// Package mail renders and sends transactional email.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Message is a rendered email ready to send.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender returns a ResendSender sending as from.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send delivers msg through the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mail: no recipients")
	}
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// LogSender only logs what would have been sent.  It is used when no
// RESEND_API_KEY is configured.
type LogSender struct {
	Logger *zap.Logger
}

// Send logs the message instead of delivering it.
func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("mail not configured, dropping message",
		zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// NewSender picks ResendSender when an API key is set and LogSender
// otherwise.
func NewSender(apiKey, from string, logger *zap.Logger) Sender {
	if apiKey == "" {
		logger.Warn("RESEND_API_KEY not set; emails will be logged, not sent")
		return LogSender{Logger: logger}
	}
	return NewResendSender(apiKey, from)
}
