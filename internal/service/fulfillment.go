package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/calendar"
	"github.com/betterwealth/workshop-booking/internal/mail"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/queue"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/tasks"
	"github.com/betterwealth/workshop-booking/internal/utils"
)

// fulfillmentTimeout bounds the whole sequence once it has started.  The
// sequence is detached from the caller so a dropped webhook connection
// cannot interrupt it half way.
const fulfillmentTimeout = 30 * time.Second

// FulfillmentConfig carries the static settings of FulfillmentService.
type FulfillmentConfig struct {
	SiteURL       string
	InternalInbox string
	Location      string
}

// FulfillmentService turns a completed checkout into a booking and sends
// the notifications that go with it.
type FulfillmentService struct {
	store     FulfillmentStore
	sender    mail.Sender
	publisher EventPublisher
	reminders ReminderScheduler
	cfg       FulfillmentConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewFulfillmentService wires the service.  publisher and reminders may be
// nil when RabbitMQ or Redis are not configured.
func NewFulfillmentService(store FulfillmentStore, sender mail.Sender, publisher EventPublisher, reminders ReminderScheduler, cfg FulfillmentConfig, logger *zap.Logger) *FulfillmentService {
	if cfg.Location == "" {
		cfg.Location = calendar.DefaultLocation
	}
	return &FulfillmentService{
		store:     store,
		sender:    sender,
		publisher: publisher,
		reminders: reminders,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// FulfillmentOutcome reports what a call did.  Duplicate is set when the
// payment had already been fulfilled and nothing was written.  The two
// error fields record each notification attempt; they are nil when the
// send succeeded or was never attempted (see Notified).
type FulfillmentOutcome struct {
	Duplicate     bool
	Result        *repository.FulfillmentResult
	Notified      bool
	CustomerEmail error
	InternalEmail error
}

// HandleCheckoutCompleted runs the fulfillment sequence for one completed
// checkout session.  Only database failures are returned; notification
// failures are logged and reported in the outcome.
func (s *FulfillmentService) HandleCheckoutCompleted(ctx context.Context, sess *payment.CheckoutSession) (*FulfillmentOutcome, error) {
	meta, err := model.DecodeCheckoutMetadata(sess.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	email := utils.NormalizeEmail(sess.CustomerEmail)
	if email == "" {
		return nil, fmt.Errorf("%w: no customer email", ErrInvalidMetadata)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fulfillmentTimeout)
	defer cancel()

	ref := NewBookingReference(s.now())
	log := s.logger.With(
		zap.String("checkout_session_id", sess.ID),
		zap.String("payment_reference", sess.PaymentReference),
		zap.String("booking_reference", ref),
	)

	res, err := s.store.Fulfill(ctx, repository.FulfillmentInput{
		Email:             email,
		FirstName:         meta.FirstName,
		LastName:          meta.LastName,
		Phone:             meta.Phone,
		Company:           meta.Company,
		WorkshopDateID:    meta.WorkshopDateID,
		Quantity:          meta.Quantity,
		PaymentReference:  sess.PaymentReference,
		CheckoutSessionID: sess.ID,
		AmountPaid:        sess.AmountTotal,
		BookingReference:  ref,
	})
	if errors.Is(err, repository.ErrDuplicatePayment) {
		log.Info("payment already fulfilled, ignoring redelivery")
		return &FulfillmentOutcome{Duplicate: true}, nil
	}
	if err != nil {
		log.Error("fulfillment failed", zap.Error(err))
		return nil, fmt.Errorf("fulfill: %w", err)
	}

	out := &FulfillmentOutcome{Result: res}
	log.Info("booking created",
		zap.Uint64("booking_id", res.Booking.ID),
		zap.Uint64("customer_id", res.Customer.ID),
		zap.Bool("customer_created", res.CustomerCreated),
		zap.Int("quantity", meta.Quantity))

	if res.Session == nil {
		log.Warn("workshop date missing; booking kept without seat update or notifications",
			zap.Uint64("workshop_date_id", meta.WorkshopDateID))
		return out, nil
	}
	if res.Oversold {
		log.Warn("session oversold, seats floored at zero", zap.Uint64("workshop_date_id", res.Session.ID))
	}

	data := s.bookingEmail(res, meta)
	out.Notified = true
	out.CustomerEmail, out.InternalEmail = s.sendConfirmations(ctx, data, log)
	s.publish(ctx, res, data, log)
	s.scheduleReminder(ctx, res, data, log)
	return out, nil
}

func (s *FulfillmentService) bookingEmail(res *repository.FulfillmentResult, meta model.CheckoutMetadata) mail.BookingEmail {
	d := res.Session
	data := mail.BookingEmail{
		CustomerEmail:    res.Customer.Email,
		FirstName:        firstNonEmpty(meta.FirstName, res.Customer.FirstName),
		LastName:         firstNonEmpty(meta.LastName, res.Customer.LastName),
		Phone:            firstNonEmpty(meta.Phone, res.Customer.Phone),
		Company:          firstNonEmpty(meta.Company, res.Customer.Company),
		WorkshopName:     d.WorkshopName,
		WorkshopDate:     d.DisplayDate(),
		WorkshopTime:     d.DisplayTime(),
		Location:         s.cfg.Location,
		Quantity:         res.Booking.Quantity,
		AmountPaid:       res.Booking.AmountPaid,
		BookingReference: res.Booking.BookingReference,
	}
	if ev, err := calendar.NewEvent(d.WorkshopName, d.Date, d.TimeStart, d.TimeEnd, s.cfg.Location, res.Booking.BookingReference); err == nil {
		data.CalendarURL = calendar.BuildLinks(ev, s.cfg.SiteURL).Google
	}
	return data
}

// sendConfirmations sends the customer and internal emails concurrently
// and logs each result on its own.
func (s *FulfillmentService) sendConfirmations(ctx context.Context, data mail.BookingEmail, log *zap.Logger) (customerErr, internalErr error) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		customerErr = s.send(ctx, func() (mail.Message, error) { return mail.BookingConfirmation(data) })
		if customerErr != nil {
			log.Error("customer confirmation email failed", zap.String("to", data.CustomerEmail), zap.Error(customerErr))
			return
		}
		log.Info("customer confirmation email sent", zap.String("to", data.CustomerEmail))
	}()
	go func() {
		defer wg.Done()
		internalErr = s.send(ctx, func() (mail.Message, error) { return mail.InternalBookingNotification(data, s.cfg.InternalInbox) })
		if internalErr != nil {
			log.Error("internal notification email failed", zap.String("to", s.cfg.InternalInbox), zap.Error(internalErr))
			return
		}
		log.Info("internal notification email sent", zap.String("to", s.cfg.InternalInbox))
	}()
	wg.Wait()
	return customerErr, internalErr
}

func (s *FulfillmentService) send(ctx context.Context, build func() (mail.Message, error)) error {
	msg, err := build()
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, msg)
}

func (s *FulfillmentService) publish(ctx context.Context, res *repository.FulfillmentResult, data mail.BookingEmail, log *zap.Logger) {
	if s.publisher == nil {
		return
	}
	seats := res.Session.SeatsRemaining
	ev := queue.BookingConfirmedEvent{
		BookingID:        res.Booking.ID,
		BookingReference: res.Booking.BookingReference,
		CustomerID:       res.Customer.ID,
		CustomerEmail:    res.Customer.Email,
		WorkshopDateID:   res.Session.ID,
		WorkshopName:     data.WorkshopName,
		Date:             data.WorkshopDate,
		Time:             data.WorkshopTime,
		Quantity:         res.Booking.Quantity,
		AmountPaid:       res.Booking.AmountPaid,
		SeatsRemaining:   &seats,
		Oversold:         res.Oversold,
		ConfirmedAt:      s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Warn("publish booking.confirmed failed", zap.Error(err))
	}
}

func (s *FulfillmentService) scheduleReminder(ctx context.Context, res *repository.FulfillmentResult, data mail.BookingEmail, log *zap.Logger) {
	if s.reminders == nil {
		return
	}
	d := res.Session
	ev, err := calendar.NewEvent(d.WorkshopName, d.Date, d.TimeStart, d.TimeEnd, s.cfg.Location, res.Booking.BookingReference)
	if err != nil {
		log.Warn("reminder not scheduled: unparseable session time", zap.Error(err))
		return
	}
	err = s.reminders.Schedule(ctx, tasks.ReminderPayload{
		BookingReference: res.Booking.BookingReference,
		CustomerEmail:    data.CustomerEmail,
		FirstName:        data.FirstName,
		WorkshopName:     data.WorkshopName,
		Date:             data.WorkshopDate,
		Time:             data.WorkshopTime,
		Location:         data.Location,
	}, ev.Start)
	switch {
	case errors.Is(err, tasks.ErrTooLate):
		log.Info("session starts within a day, no reminder scheduled")
	case err != nil:
		log.Warn("schedule reminder failed", zap.Error(err))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
