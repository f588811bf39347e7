package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/betterwealth/workshop-booking/internal/mail"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/queue"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/tasks"
)

type allowAll struct{ ok bool }

func (a allowAll) Verify(context.Context, string, string) (bool, error) { return a.ok, nil }

type fakeDates map[uint64]*model.WorkshopDateDetail

func (f fakeDates) GetWithWorkshop(_ context.Context, id uint64) (*model.WorkshopDateDetail, error) {
	d, ok := f[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// memStore mimics FulfillmentRepo: unique payment reference, customer
// reuse by email and a seat count floored at zero.
type memStore struct {
	mu        sync.Mutex
	dates     map[uint64]*model.WorkshopDateDetail
	customers map[string]model.Customer
	bookings  map[string]model.Booking
	err       error
}

func newMemStore(dates ...model.WorkshopDateDetail) *memStore {
	s := &memStore{
		dates:     map[uint64]*model.WorkshopDateDetail{},
		customers: map[string]model.Customer{},
		bookings:  map[string]model.Booking{},
	}
	for i := range dates {
		d := dates[i]
		s.dates[d.ID] = &d
	}
	return s
}

func (s *memStore) Fulfill(_ context.Context, in repository.FulfillmentInput) (*repository.FulfillmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if _, dup := s.bookings[in.PaymentReference]; dup {
		return nil, repository.ErrDuplicatePayment
	}
	res := &repository.FulfillmentResult{}
	email := strings.ToLower(in.Email)
	c, ok := s.customers[email]
	if !ok {
		c = model.Customer{ID: uint64(len(s.customers) + 1), Email: email, FirstName: in.FirstName, LastName: in.LastName}
		s.customers[email] = c
		res.CustomerCreated = true
	}
	res.Customer = c
	b := model.Booking{
		ID:                uint64(len(s.bookings) + 1),
		CustomerID:        c.ID,
		WorkshopDateID:    in.WorkshopDateID,
		PaymentReference:  in.PaymentReference,
		CheckoutSessionID: in.CheckoutSessionID,
		PaymentStatus:     model.PaymentSucceeded,
		AmountPaid:        in.AmountPaid,
		BookingReference:  in.BookingReference,
		Quantity:          in.Quantity,
	}
	s.bookings[in.PaymentReference] = b
	res.Booking = b
	if d, ok := s.dates[in.WorkshopDateID]; ok {
		if d.SeatsRemaining >= in.Quantity {
			d.SeatsRemaining -= in.Quantity
		} else {
			d.SeatsRemaining = 0
			res.Oversold = true
		}
		cp := *d
		res.Session = &cp
	}
	return res, nil
}

func (s *memStore) seats(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dates[id].SeatsRemaining
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	fail map[string]error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	for prefix, err := range r.fail {
		if strings.HasPrefix(msg.Subject, prefix) {
			return err
		}
	}
	return nil
}

func (r *recordingSender) subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, m := range r.sent {
		out = append(out, m.Subject)
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type recordingReminders struct {
	mu       sync.Mutex
	payloads []tasks.ReminderPayload
	starts   []time.Time
	err      error
}

func (r *recordingReminders) Schedule(_ context.Context, p tasks.ReminderPayload, start time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	r.starts = append(r.starts, start)
	return r.err
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*payment.CheckoutSession)
	return s, args.Error(1)
}

func (m *mockGateway) GetCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*payment.CheckoutSession)
	return s, args.Error(1)
}

func (m *mockGateway) VerifyEvent(payload []byte, sig string) (*payment.Event, error) {
	args := m.Called(payload, sig)
	e, _ := args.Get(0).(*payment.Event)
	return e, args.Error(1)
}

func sampleDate(seats int) model.WorkshopDateDetail {
	return model.WorkshopDateDetail{
		WorkshopDate: model.WorkshopDate{
			ID:             7,
			WorkshopID:     1,
			Date:           time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			TimeStart:      "09:00:00",
			TimeEnd:        "13:00:00",
			Capacity:       20,
			SeatsRemaining: seats,
		},
		WorkshopName: "Social Media for Advisers",
		WorkshopSlug: "social-media",
		PricePence:   9500,
	}
}
