package service

import (
	"context"
	"time"

	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/queue"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/tasks"
)

// DateReader loads a session with its workshop.
type DateReader interface {
	GetWithWorkshop(ctx context.Context, id uint64) (*model.WorkshopDateDetail, error)
}

// FulfillmentStore persists a paid checkout.
type FulfillmentStore interface {
	Fulfill(ctx context.Context, in repository.FulfillmentInput) (*repository.FulfillmentResult, error)
}

// BookingFinder finds the booking created for a checkout session.
type BookingFinder interface {
	GetByCheckoutSession(ctx context.Context, sessionID string) (*model.BookingDetail, error)
}

// SubscriberStore is the newsletter list.
type SubscriberStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Subscriber, error)
	Create(ctx context.Context, s *model.Subscriber) error
	Reactivate(ctx context.Context, id uint64, firstName, lastName, source string) error
}

// EventPublisher announces confirmed bookings.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// ReminderScheduler schedules the day-before reminder.
type ReminderScheduler interface {
	Schedule(ctx context.Context, p tasks.ReminderPayload, start time.Time) error
}
