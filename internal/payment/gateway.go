// Package payment wraps the external payment processor.  Services depend on
// the Gateway interface; StripeGateway is the production implementation.
package payment

import (
	"context"
	"errors"
)

// EventCheckoutCompleted is the only processor event that triggers
// fulfillment.
const EventCheckoutCompleted = "checkout.session.completed"

// ErrInvalidSignature is returned by VerifyEvent when the payload was not
// signed with the configured webhook secret or is too old.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutRequest describes a single-line-item hosted checkout.
type CheckoutRequest struct {
	ProductName   string
	Description   string
	UnitAmount    int64
	Quantity      int
	Currency      string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// CheckoutSession is the subset of a processor checkout session the
// booking flow reads.
//
// Fields:
//
//	ID               – processor session id (cs_...).
//	URL              – hosted payment page; empty once the session completes.
//	PaymentReference – payment intent id, falling back to the session id.
//	AmountTotal      – total charged in minor units.
//	UnitAmount       – line item unit price; zero unless line items were expanded.
//	Quantity         – line item quantity; zero unless line items were expanded.
type CheckoutSession struct {
	ID               string
	URL              string
	CustomerEmail    string
	PaymentReference string
	AmountTotal      int64
	UnitAmount       int64
	Quantity         int
	ProductName      string
	Metadata         map[string]string
}

// Event is a verified processor notification.  Session is set only for
// checkout session events.
type Event struct {
	ID      string
	Type    string
	Session *CheckoutSession
}

// Gateway is the payment processor as seen by the services.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
