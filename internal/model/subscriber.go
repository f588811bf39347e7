package model

import "time"

// Subscriber sources recorded on newsletter_subscribers.source.
const (
	SourceFooter      = "footer"
	SourceModal       = "modal"
	SourceContactForm = "contact-form"
)

// Subscriber is a newsletter recipient.  Subscribers are independent of
// bookings; an unsubscribed row is kept with Active=false and reactivated
// on a later signup.
type Subscriber struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Source       string    `json:"source"`
	Active       bool      `json:"active"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
