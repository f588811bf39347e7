package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/captcha"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/utils"
)

// MaxQuantity is the largest number of seats one checkout may buy.
const MaxQuantity = 15

// CheckoutInput is a booking form submission.
type CheckoutInput struct {
	WorkshopDateID uint64
	Quantity       int
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        string
	TurnstileToken string
	RemoteIP       string
}

// CheckoutService validates a booking request against current inventory
// and opens a hosted payment session.  It never writes to the database;
// seats are only taken once payment completes.
type CheckoutService struct {
	dates    DateReader
	gateway  payment.Gateway
	captcha  captcha.Verifier
	siteURL  string
	currency string
	logger   *zap.Logger
}

// NewCheckoutService returns a CheckoutService.  siteURL builds the
// success and cancel URLs; currency is the ISO code sent to the gateway.
func NewCheckoutService(dates DateReader, gateway payment.Gateway, verifier captcha.Verifier, siteURL, currency string, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		dates:    dates,
		gateway:  gateway,
		captcha:  verifier,
		siteURL:  siteURL,
		currency: currency,
		logger:   logger,
	}
}

// CreateSession returns the hosted payment page URL.
func (s *CheckoutService) CreateSession(ctx context.Context, in CheckoutInput) (string, error) {
	ok, err := s.captcha.Verify(ctx, in.TurnstileToken, in.RemoteIP)
	if err != nil {
		s.logger.Warn("checkout: bot verification error", zap.Error(err))
	}
	if !ok {
		return "", ErrBotCheckFailed
	}

	in.FirstName = utils.SanitizeInput(in.FirstName)
	in.LastName = utils.SanitizeInput(in.LastName)
	in.Email = utils.SanitizeInput(in.Email)
	in.Phone = utils.SanitizeInput(in.Phone)
	in.Company = utils.SanitizeInput(in.Company)

	if in.Email == "" {
		return "", ErrEmailRequired
	}
	if !utils.IsValidEmail(in.Email) {
		return "", ErrInvalidEmail
	}
	if in.Quantity < 1 || in.Quantity > MaxQuantity {
		return "", ErrInvalidQuantity
	}

	d, err := s.dates.GetWithWorkshop(ctx, in.WorkshopDateID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load workshop date: %w", err)
	}
	if in.Quantity > d.SeatsRemaining {
		return "", &InsufficientSeatsError{Remaining: max(d.SeatsRemaining, 0)}
	}

	meta := model.CheckoutMetadata{
		WorkshopDateID: d.ID,
		Quantity:       in.Quantity,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Phone:          in.Phone,
		Company:        in.Company,
	}
	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		ProductName:   d.WorkshopName,
		Description:   productDescription(d),
		UnitAmount:    d.PricePence,
		Quantity:      in.Quantity,
		Currency:      s.currency,
		SuccessURL:    s.siteURL + "/booking-confirmation?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.siteURL + "/workshops/" + d.WorkshopSlug + "/book",
		CustomerEmail: in.Email,
		Metadata:      meta.Encode(),
	})
	if err != nil {
		return "", fmt.Errorf("open payment session: %w", err)
	}

	s.logger.Info("checkout session created",
		zap.String("checkout_session_id", sess.ID),
		zap.Uint64("workshop_date_id", d.ID),
		zap.Int("quantity", in.Quantity))
	return sess.URL, nil
}

// productDescription renders e.g. "Workshop on 14 March 2026 at 09:00".
func productDescription(d *model.WorkshopDateDetail) string {
	return "Workshop on " + d.Date.Format("2 January 2006") + " at " + shortTime(d.TimeStart)
}

func shortTime(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
