package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/mail"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/repository"
)

type memSubscribers struct {
	rows        map[string]*model.Subscriber
	reactivated []uint64
	createErr   error
}

func newMemSubscribers(rows ...model.Subscriber) *memSubscribers {
	m := &memSubscribers{rows: map[string]*model.Subscriber{}}
	for i := range rows {
		r := rows[i]
		m.rows[r.Email] = &r
	}
	return m
}

func (m *memSubscribers) GetByEmail(_ context.Context, email string) (*model.Subscriber, error) {
	s, ok := m.rows[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSubscribers) Create(_ context.Context, s *model.Subscriber) error {
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = uint64(len(m.rows) + 1)
	s.Active = true
	m.rows[s.Email] = s
	return nil
}

func (m *memSubscribers) Reactivate(_ context.Context, id uint64, first, last, source string) error {
	m.reactivated = append(m.reactivated, id)
	for _, s := range m.rows {
		if s.ID == id {
			s.Active, s.FirstName, s.LastName, s.Source = true, first, last, source
		}
	}
	return nil
}

func TestSubscribe_New(t *testing.T) {
	store := newMemSubscribers()
	svc := NewNewsletterService(store, allowAll{ok: true}, zap.NewNop())

	msg, err := svc.Subscribe(context.Background(), SubscribeInput{Email: " Ada@Example.COM ", FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, MsgSubscribed, msg)
	require.Contains(t, store.rows, "ada@example.com")
	assert.Equal(t, model.SourceFooter, store.rows["ada@example.com"].Source)
}

func TestSubscribe_ActiveAndInactive(t *testing.T) {
	store := newMemSubscribers(
		model.Subscriber{ID: 1, Email: "on@example.com", Active: true},
		model.Subscriber{ID: 2, Email: "off@example.com", Active: false},
	)
	svc := NewNewsletterService(store, allowAll{ok: true}, zap.NewNop())

	_, err := svc.Subscribe(context.Background(), SubscribeInput{Email: "on@example.com"})
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	msg, err := svc.Subscribe(context.Background(), SubscribeInput{Email: "off@example.com", Source: model.SourceModal})
	require.NoError(t, err)
	assert.Equal(t, MsgResubscribed, msg)
	assert.Equal(t, []uint64{2}, store.reactivated)
	assert.Equal(t, model.SourceModal, store.rows["off@example.com"].Source)
}

func TestSubscribe_Validation(t *testing.T) {
	svc := NewNewsletterService(newMemSubscribers(), allowAll{ok: true}, zap.NewNop())
	_, err := svc.Subscribe(context.Background(), SubscribeInput{})
	assert.ErrorIs(t, err, ErrEmailRequired)
	_, err = svc.Subscribe(context.Background(), SubscribeInput{Email: "nope"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	blocked := NewNewsletterService(newMemSubscribers(), allowAll{ok: false}, zap.NewNop())
	_, err = blocked.Subscribe(context.Background(), SubscribeInput{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrBotCheckFailed)
}

func TestSubscribe_ConcurrentInsertReportsAlreadySubscribed(t *testing.T) {
	store := newMemSubscribers()
	store.createErr = repository.ErrEmailExists
	_, err := NewNewsletterService(store, allowAll{ok: true}, zap.NewNop()).
		Subscribe(context.Background(), SubscribeInput{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
}

func TestContactSubmit(t *testing.T) {
	sender := &recordingSender{}
	subs := newMemSubscribers()
	news := NewNewsletterService(subs, allowAll{ok: false}, zap.NewNop())
	svc := NewContactService(sender, news, "info@better-wealth.co.uk", zap.NewNop())

	err := svc.Submit(context.Background(), ContactInput{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Message:         "<script>x</script>\nHello",
		NewsletterOptIn: true,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Better Wealth Website Enquiry - Ada Lovelace", msg.Subject)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.NotContains(t, msg.HTML, "<script>")
	// opt-in bypasses the bot check already done for the form
	require.Contains(t, subs.rows, "ada@example.com")
	assert.Equal(t, model.SourceContactForm, subs.rows["ada@example.com"].Source)
}

func TestContactSubmit_Errors(t *testing.T) {
	svc := NewContactService(&recordingSender{}, nil, "info@better-wealth.co.uk", zap.NewNop())
	err := svc.Submit(context.Background(), ContactInput{FirstName: "Ada", Email: "a@b.co", Message: "hi"})
	assert.ErrorIs(t, err, ErrMissingFields)

	boom := errors.New("resend down")
	failing := &recordingSender{fail: map[string]error{"": boom}}
	svc = NewContactService(failing, nil, "info@better-wealth.co.uk", zap.NewNop())
	err = svc.Submit(context.Background(), ContactInput{FirstName: "Ada", LastName: "L", Email: "a@b.co", Message: "hi"})
	assert.ErrorIs(t, err, boom)
}

var _ mail.Sender = (*recordingSender)(nil)
