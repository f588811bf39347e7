package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/mail"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, r.err
}

type recordingSender struct {
	msgs []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, m mail.Message) error {
	r.msgs = append(r.msgs, m)
	return r.err
}

func TestSchedule(t *testing.T) {
	enq := &recordingEnqueuer{}
	s := NewReminderScheduler(enq)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	p := ReminderPayload{BookingReference: "BW-1", CustomerEmail: "ada@example.com"}
	require.NoError(t, s.Schedule(context.Background(), p, now.Add(72*time.Hour)))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeBookingReminder, enq.tasks[0].Type())

	var got ReminderPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &got))
	assert.Equal(t, p, got)

	assert.ErrorIs(t, s.Schedule(context.Background(), p, now.Add(2*time.Hour)), ErrTooLate)
	assert.Len(t, enq.tasks, 1)
}

func TestSchedule_DuplicateIsNotAnError(t *testing.T) {
	enq := &recordingEnqueuer{err: asynq.ErrTaskIDConflict}
	s := NewReminderScheduler(enq)
	assert.NoError(t, s.Schedule(context.Background(), ReminderPayload{BookingReference: "BW-1"}, time.Now().Add(48*time.Hour)))
}

func TestHandleReminder(t *testing.T) {
	sender := &recordingSender{}
	h := HandleReminder(sender, zap.NewNop())

	b, _ := json.Marshal(ReminderPayload{BookingReference: "BW-1", CustomerEmail: "ada@example.com", FirstName: "Ada", WorkshopName: "Paid Advertising"})
	require.NoError(t, h(context.Background(), asynq.NewTask(TypeBookingReminder, b)))
	require.Len(t, sender.msgs, 1)
	assert.Equal(t, []string{"ada@example.com"}, sender.msgs[0].To)
	assert.Contains(t, sender.msgs[0].Subject, "Paid Advertising")

	sender.err = errors.New("resend down")
	assert.Error(t, h(context.Background(), asynq.NewTask(TypeBookingReminder, b)))

	err := h(context.Background(), asynq.NewTask(TypeBookingReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
