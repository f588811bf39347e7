package model

import "time"

// PaymentStatus mirrors the processor-side state of the payment behind a
// booking.  Bookings are only ever created for succeeded payments; the
// other values exist for manual refunds handled out-of-band.
type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Booking records one completed payment for one or more seats of a
// workshop date.  PaymentReference is the processor's identifier for the
// payment and is unique: a redelivered notification for the same payment
// can never produce a second row.
//
// Fields:
//
//	ID                – primary key identifier.
//	CustomerID        – purchasing customer.
//	WorkshopDateID    – session the seats were bought for.
//	PaymentReference  – external payment id (unique).
//	CheckoutSessionID – external checkout session id, used for lookups.
//	PaymentStatus     – see PaymentStatus.
//	AmountPaid        – total charged in minor currency units.
//	BookingReference  – short human-facing reference, e.g. BW-LX2K9A-7QF3ZD.
//	Quantity          – number of seats.
type Booking struct {
	ID                uint64        `json:"id"`
	CustomerID        uint64        `json:"customer_id"`
	WorkshopDateID    uint64        `json:"workshop_date_id"`
	PaymentReference  string        `json:"payment_reference"`
	CheckoutSessionID string        `json:"checkout_session_id"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	AmountPaid        int64         `json:"amount_paid"`
	BookingReference  string        `json:"booking_reference"`
	Quantity          int           `json:"quantity"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// BookingDetail is a booking joined with its customer and, when the session
// still exists, the session and workshop.  Session is nil when the
// workshop date row has been removed.
type BookingDetail struct {
	Booking
	Customer Customer            `json:"customer"`
	Session  *WorkshopDateDetail `json:"session,omitempty"`
}
