// Package tasks defines delayed background jobs processed by the worker
// through asynq.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/mail"
)

// TypeBookingReminder sends the day-before reminder for one booking.
const TypeBookingReminder = "booking:reminder"

// ReminderLead is how long before the session start the reminder fires.
const ReminderLead = 24 * time.Hour

// ReminderPayload is everything the reminder email needs, so the worker
// never touches the database.
type ReminderPayload struct {
	BookingReference string `json:"booking_reference"`
	CustomerEmail    string `json:"customer_email"`
	FirstName        string `json:"first_name"`
	WorkshopName     string `json:"workshop_name"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Location         string `json:"location"`
}

// NewReminderTask builds the task and its options.  The task id is derived
// from the booking reference so a redelivered webhook cannot schedule a
// second reminder.
func NewReminderTask(p ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + p.BookingReference),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// Enqueuer is the subset of *asynq.Client used for scheduling.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler schedules reminders ReminderLead before the session.
type ReminderScheduler struct {
	client Enqueuer
	now    func() time.Time
}

// NewReminderScheduler returns a ReminderScheduler enqueuing through client.
func NewReminderScheduler(client Enqueuer) *ReminderScheduler {
	return &ReminderScheduler{client: client, now: time.Now}
}

// ErrTooLate is returned when the reminder time has already passed.
var ErrTooLate = errors.New("reminder time already passed")

// Schedule enqueues a reminder for a session starting at start.  An
// already scheduled reminder for the same booking is not an error.
func (s *ReminderScheduler) Schedule(ctx context.Context, p ReminderPayload, start time.Time) error {
	fireAt := start.Add(-ReminderLead)
	if !fireAt.After(s.now()) {
		return ErrTooLate
	}
	task, opts, err := NewReminderTask(p, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("enqueue reminder: %w", err)
	}
	return nil
}

// HandleReminder renders and sends the reminder email.  A malformed
// payload is not retried.
func HandleReminder(sender mail.Sender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("reminder: invalid payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		msg, err := mail.WorkshopReminder(mail.BookingEmail{
			CustomerEmail:    p.CustomerEmail,
			FirstName:        p.FirstName,
			WorkshopName:     p.WorkshopName,
			WorkshopDate:     p.Date,
			WorkshopTime:     p.Time,
			Location:         p.Location,
			BookingReference: p.BookingReference,
		})
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := sender.Send(ctx, msg); err != nil {
			logger.Error("reminder: send failed", zap.String("booking_reference", p.BookingReference), zap.Error(err))
			return err
		}
		logger.Info("reminder sent", zap.String("booking_reference", p.BookingReference))
		return nil
	}
}
