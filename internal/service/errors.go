// Package service holds the booking flow's business rules.  Services
// depend on small ports so they can be tested with in-memory fakes.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrBotCheckFailed    = errors.New("Bot verification failed")
	ErrInvalidQuantity   = errors.New("Quantity must be between 1 and 15")
	ErrSessionNotFound   = errors.New("Workshop date not found")
	ErrEmailRequired     = errors.New("Email is required")
	ErrInvalidEmail      = errors.New("Please enter a valid email address")
	ErrMissingFields     = errors.New("Missing required fields")
	ErrAlreadySubscribed = errors.New("This email is already subscribed")
	ErrInvalidMetadata   = errors.New("checkout session metadata is invalid")
)

// InsufficientSeatsError reports how many seats are left when a checkout
// asks for more.
type InsufficientSeatsError struct {
	Remaining int
}

// Error returns the message shown to the customer.
func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("Only %d spots remaining. Please reduce your quantity.", e.Remaining)
}
