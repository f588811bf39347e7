package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/repository"
)

// Booking summary statuses.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
)

const pendingDetails = "Details in confirmation email"

// BookingSummary is what the confirmation page shows after checkout.
type BookingSummary struct {
	WorkshopName     string `json:"workshop_name"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Location         string `json:"location,omitempty"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	AmountPaid       int64  `json:"amount_paid"`
	UnitPrice        int64  `json:"unit_price"`
	Quantity         int    `json:"quantity"`
	BookingReference string `json:"booking_reference"`
	Status           string `json:"status"`
}

// BookingLookupService resolves a checkout session id to a summary.  The
// database wins; until the webhook has landed a placeholder is built from
// the processor's copy of the session.
type BookingLookupService struct {
	bookings BookingFinder
	gateway  payment.Gateway
	location string
}

// NewBookingLookupService returns a BookingLookupService.  location fills
// in summaries built from stored bookings.
func NewBookingLookupService(bookings BookingFinder, gateway payment.Gateway, location string) *BookingLookupService {
	return &BookingLookupService{bookings: bookings, gateway: gateway, location: location}
}

// Lookup returns the confirmed booking for sessionID, or a pending
// placeholder while the webhook has not been processed.
func (s *BookingLookupService) Lookup(ctx context.Context, sessionID string) (*BookingSummary, error) {
	bd, err := s.bookings.GetByCheckoutSession(ctx, sessionID)
	switch {
	case err == nil:
		return s.confirmed(bd), nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find booking: %w", err)
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return pending(sess), nil
}

func (s *BookingLookupService) confirmed(bd *model.BookingDetail) *BookingSummary {
	out := &BookingSummary{
		WorkshopName:     "Workshop",
		Date:             pendingDetails,
		Time:             pendingDetails,
		CustomerName:     bd.Customer.FullName(),
		CustomerEmail:    bd.Customer.Email,
		AmountPaid:       bd.AmountPaid,
		Quantity:         bd.Quantity,
		BookingReference: bd.BookingReference,
		Status:           StatusConfirmed,
	}
	if bd.Quantity > 0 {
		out.UnitPrice = bd.AmountPaid / int64(bd.Quantity)
	}
	if d := bd.Session; d != nil {
		out.WorkshopName = d.WorkshopName
		out.Date = d.DisplayDate()
		out.Time = d.DisplayTime()
		out.Location = s.location
		out.UnitPrice = d.PricePence
	}
	return out
}

func pending(sess *payment.CheckoutSession) *BookingSummary {
	qty := sess.Quantity
	if qty < 1 {
		qty = 1
		if n, err := strconv.Atoi(sess.Metadata["quantity"]); err == nil && n > 0 {
			qty = n
		}
	}
	unit := sess.UnitAmount
	if unit == 0 {
		unit = sess.AmountTotal / int64(qty)
	}
	name := sess.ProductName
	if name == "" {
		name = "Workshop"
	}
	customer := model.Customer{FirstName: sess.Metadata["firstName"], LastName: sess.Metadata["lastName"]}
	return &BookingSummary{
		WorkshopName:     name,
		Date:             pendingDetails,
		Time:             pendingDetails,
		CustomerName:     customer.FullName(),
		CustomerEmail:    sess.CustomerEmail,
		AmountPaid:       sess.AmountTotal,
		UnitPrice:        unit,
		Quantity:         qty,
		BookingReference: placeholderReference(sess.ID),
		Status:           StatusPending,
	}
}
