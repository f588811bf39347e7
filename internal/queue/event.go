// Package queue carries booking events over RabbitMQ: the publisher used
// by the API after fulfillment and the consumer run by the worker.
package queue

// BookingConfirmedQueue is the durable queue every confirmed booking is
// published to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once per fulfilled payment.  It holds
// enough for downstream consumers to log or notify without querying the
// database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	BookingReference string `json:"booking_reference"`
	CustomerID       uint64 `json:"customer_id"`
	CustomerEmail    string `json:"customer_email"`
	WorkshopDateID   uint64 `json:"workshop_date_id"`
	WorkshopName     string `json:"workshop_name,omitempty"`
	Date             string `json:"date,omitempty"`
	Time             string `json:"time,omitempty"`
	Quantity         int    `json:"quantity"`
	AmountPaid       int64  `json:"amount_paid"`
	SeatsRemaining   *int   `json:"seats_remaining,omitempty"`
	Oversold         bool   `json:"oversold,omitempty"`
	ConfirmedAt      string `json:"confirmed_at"`
}
