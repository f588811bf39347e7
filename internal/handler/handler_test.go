package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/payment"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/service"
	"github.com/betterwealth/workshop-booking/internal/utils"
)

func do(h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

type mockCheckout struct{ mock.Mock }

func (m *mockCheckout) CreateSession(ctx context.Context, in service.CheckoutInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func TestCheckout_DefaultsQuantityAndReturnsRedirect(t *testing.T) {
	svc := &mockCheckout{}
	svc.On("CreateSession", mock.Anything, mock.MatchedBy(func(in service.CheckoutInput) bool {
		return in.WorkshopDateID == 7 && in.Quantity == 1 && in.Email == "ada@example.com"
	})).Return("https://pay.example/cs_1", nil).Once()

	rec := do(NewCheckoutHandler(svc, zap.NewNop()).CreateSession, http.MethodPost, "/api/create-checkout-session",
		`{"session_id":"7","first_name":"Ada","last_name":"L","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirect_url":"https://pay.example/cs_1"}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestCheckout_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{&service.InsufficientSeatsError{Remaining: 3}, http.StatusBadRequest, "Only 3 spots remaining. Please reduce your quantity."},
		{service.ErrSessionNotFound, http.StatusNotFound, "Workshop date not found"},
		{service.ErrInvalidQuantity, http.StatusBadRequest, service.ErrInvalidQuantity.Error()},
		{service.ErrBotCheckFailed, http.StatusBadRequest, "Bot verification failed"},
		{errors.New("stripe exploded"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		svc := &mockCheckout{}
		svc.On("CreateSession", mock.Anything, mock.Anything).Return("", tc.err)
		rec := do(NewCheckoutHandler(svc, zap.NewNop()).CreateSession, http.MethodPost, "/api/create-checkout-session",
			`{"session_id":7,"quantity":5,"email":"a@b.co"}`)
		assert.Equal(t, tc.status, rec.Code)
		assert.Contains(t, rec.Body.String(), tc.msg)
	}

	rec := do(NewCheckoutHandler(&mockCheckout{}, zap.NewNop()).CreateSession, http.MethodPost, "/api/create-checkout-session", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubVerifier struct {
	ev  *payment.Event
	err error
}

func (s stubVerifier) VerifyEvent([]byte, string) (*payment.Event, error) { return s.ev, s.err }

type stubFulfiller struct {
	calls int
	err   error
}

func (s *stubFulfiller) HandleCheckoutCompleted(context.Context, *payment.CheckoutSession) (*service.FulfillmentOutcome, error) {
	s.calls++
	return &service.FulfillmentOutcome{}, s.err
}

func TestWebhook(t *testing.T) {
	completed := &payment.Event{ID: "evt_1", Type: payment.EventCheckoutCompleted, Session: &payment.CheckoutSession{ID: "cs_1"}}

	f := &stubFulfiller{}
	rec := do(NewWebhookHandler(stubVerifier{err: payment.ErrInvalidSignature}, f, zap.NewNop()).Stripe, http.MethodPost, "/api/stripe/webhook", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Webhook error")
	assert.Zero(t, f.calls)

	rec = do(NewWebhookHandler(stubVerifier{ev: &payment.Event{Type: "payment_intent.created"}}, f, zap.NewNop()).Stripe, http.MethodPost, "/api/stripe/webhook", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
	assert.Zero(t, f.calls)

	rec = do(NewWebhookHandler(stubVerifier{ev: completed}, f, zap.NewNop()).Stripe, http.MethodPost, "/api/stripe/webhook", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.calls)

	failing := &stubFulfiller{err: errors.New("deadlock")}
	rec = do(NewWebhookHandler(stubVerifier{ev: completed}, failing, zap.NewNop()).Stripe, http.MethodPost, "/api/stripe/webhook", "{}")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to create booking")

	bad := &stubFulfiller{err: service.ErrInvalidMetadata}
	rec = do(NewWebhookHandler(stubVerifier{ev: completed}, bad, zap.NewNop()).Stripe, http.MethodPost, "/api/stripe/webhook", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_RejectsOversizedBody(t *testing.T) {
	f := &stubFulfiller{}
	body := strings.Repeat("x", MaxWebhookBody+1)
	rec := do(NewWebhookHandler(stubVerifier{ev: &payment.Event{}}, f, zap.NewNop()).Stripe, http.MethodPost, "/api/stripe/webhook", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubLookup struct {
	sum *service.BookingSummary
	err error
}

func (s stubLookup) Lookup(context.Context, string) (*service.BookingSummary, error) { return s.sum, s.err }

func TestBookingDetails(t *testing.T) {
	rec := do(NewBookingHandler(stubLookup{}, zap.NewNop()).Details, http.MethodGet, "/api/booking-details", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sum := &service.BookingSummary{WorkshopName: "W", BookingReference: "BW-1", Status: service.StatusConfirmed, Quantity: 2}
	rec = do(NewBookingHandler(stubLookup{sum: sum}, zap.NewNop()).Details, http.MethodGet, "/api/booking-details?session_id=cs_1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"booking_reference":"BW-1"`)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)

	rec = do(NewBookingHandler(stubLookup{err: errors.New("x")}, zap.NewNop()).Details, http.MethodGet, "/api/booking-details?session_id=cs_1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCalendarICS(t *testing.T) {
	h := NewCalendarHandler("https://better-wealth.co.uk", "Salford")
	h.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	rec := do(h.ICS, http.MethodGet, "/api/calendar?workshop=Social&time=09:00", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.ICS, http.MethodGet, "/api/calendar?workshop=Social&date=2026-03-14&time=09:00+-+13:00&ref=BW-AB/C1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="better-wealth-workshop-BW-ABC1.ics"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, rec.Body.String(), "LOCATION:Salford\r\n")

	rec = do(h.ICS, http.MethodGet, "/api/calendar?date=not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarICS_InvalidUTF8Title(t *testing.T) {
	h := NewCalendarHandler("https://better-wealth.co.uk", "Salford")
	target := "/api/calendar?date=2026-03-14&time=09:00&workshop=" + strings.Repeat("%80", 150)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- do(h.ICS, http.MethodGet, target, "") }()
	select {
	case rec := <-done:
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "SUMMARY:\uFFFD\r\n")
	case <-time.After(3 * time.Second):
		t.Fatal("ICS did not return")
	}
}

func TestCalendarLinks(t *testing.T) {
	h := NewCalendarHandler("https://better-wealth.co.uk", "Salford")
	rec := do(h.Links, http.MethodGet, "/api/calendar/links?workshop=Social&date=2026-03-14&ref=BW-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, k := range []string{`"google"`, `"outlook"`, `"office365"`, `"yahoo"`, `"ics"`} {
		assert.Contains(t, rec.Body.String(), k)
	}
}

type stubForms struct {
	msg string
	err error
	got service.ContactInput
}

func (s *stubForms) Subscribe(context.Context, service.SubscribeInput) (string, error) { return s.msg, s.err }
func (s *stubForms) Submit(_ context.Context, in service.ContactInput) error {
	s.got = in
	return s.err
}

func TestNewsletterAndContact(t *testing.T) {
	ok := &stubForms{msg: service.MsgSubscribed}
	h := NewFormsHandler(ok, ok, zap.NewNop())
	rec := do(h.Newsletter, http.MethodPost, "/api/newsletter", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Thank you for subscribing!"}`, rec.Body.String())

	dup := &stubForms{err: service.ErrAlreadySubscribed}
	rec = do(NewFormsHandler(dup, dup, zap.NewNop()).Newsletter, http.MethodPost, "/api/newsletter", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(h.Contact, http.MethodPost, "/api/contact", `{"first_name":"Ada","last_name":"L","email":"a@b.co","message":"hi","newsletter_opt_in":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok.got.NewsletterOptIn)

	missing := &stubForms{err: service.ErrMissingFields}
	rec = do(NewFormsHandler(missing, missing, zap.NewNop()).Contact, http.MethodPost, "/api/contact", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	down := &stubForms{err: errors.New("resend")}
	rec = do(NewFormsHandler(down, down, zap.NewNop()).Contact, http.MethodPost, "/api/contact", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to send email")
}

type memWorkshops struct {
	items []model.Workshop
}

func (m *memWorkshops) Create(_ context.Context, w *model.Workshop) error {
	for _, x := range m.items {
		if x.Slug == w.Slug {
			return repository.ErrConflict
		}
	}
	w.ID = uint64(len(m.items) + 1)
	m.items = append(m.items, *w)
	return nil
}

func (m *memWorkshops) GetByID(_ context.Context, id uint64) (*model.Workshop, error) {
	for _, x := range m.items {
		if x.ID == id {
			return &x, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memWorkshops) GetBySlug(_ context.Context, slug string) (*model.Workshop, error) {
	for _, x := range m.items {
		if x.Slug == slug {
			return &x, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memWorkshops) List(context.Context) ([]model.Workshop, error) { return m.items, nil }

type memDates struct {
	items []model.WorkshopDateDetail
}

func (m *memDates) ListUpcoming(_ context.Context, wid uint64, _ time.Time) ([]model.WorkshopDateDetail, error) {
	var out []model.WorkshopDateDetail
	for _, d := range m.items {
		if wid == 0 || d.WorkshopID == wid {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDates) Create(_ context.Context, d *model.WorkshopDate) error {
	d.ID = uint64(len(m.items) + 1)
	d.SeatsRemaining = d.Capacity
	m.items = append(m.items, model.WorkshopDateDetail{WorkshopDate: *d})
	return nil
}

func TestCatalog(t *testing.T) {
	ws := &memWorkshops{items: []model.Workshop{{ID: 1, Name: "Social", Slug: "social", PricePence: 9500}, {ID: 2, Name: "Empty", Slug: "empty"}}}
	ds := &memDates{items: []model.WorkshopDateDetail{{WorkshopDate: model.WorkshopDate{
		ID: 7, WorkshopID: 1, Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), TimeStart: "09:00:00", TimeEnd: "13:00:00", Capacity: 20, SeatsRemaining: 0,
	}}}}
	h := NewCatalogHandler(ws, ds, zap.NewNop())

	rec := do(h.ListWorkshops, http.MethodGet, "/api/workshops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_date":"Saturday, 14 March 2026"`)
	assert.Contains(t, rec.Body.String(), `"sold_out":true`)
	assert.Contains(t, rec.Body.String(), `"dates":[]`)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/workshops/nope/dates", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues("nope")
	require.NoError(t, h.ListDates(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func adminContext(method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return c, rec
}

func TestAdmin(t *testing.T) {
	hash, err := utils.HashPassword("correct horse", 4)
	require.NoError(t, err)
	ws, ds := &memWorkshops{}, &memDates{}
	h := NewAdminHandler(AdminConfig{Email: "ops@better-wealth.co.uk", PasswordHash: hash, JWTSecret: "k", TokenTTL: time.Hour}, ws, ds, nil, nil, zap.NewNop())

	c, rec := adminContext(http.MethodPost, "/v1/admin/login", `{"email":"ops@better-wealth.co.uk","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = adminContext(http.MethodPost, "/v1/admin/login", `{"email":"OPS@better-wealth.co.uk","password":"correct horse"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token"`)

	c, rec = adminContext(http.MethodPost, "/v1/admin/workshops", `{"name":"Social","slug":"social-media","price_pence":9500}`)
	require.NoError(t, h.CreateWorkshop(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, rec = adminContext(http.MethodPost, "/v1/admin/workshops", `{"name":"Again","slug":"social-media","price_pence":9500}`)
	require.NoError(t, h.CreateWorkshop(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = adminContext(http.MethodPost, "/v1/admin/workshops/1/dates", `{"date":"2026-03-14","time_start":"09:00","time_end":"13:00","capacity":0}`, "id", "1")
	require.NoError(t, h.CreateDate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = adminContext(http.MethodPost, "/v1/admin/workshops/9/dates", `{"date":"2026-03-14","time_start":"09:00","capacity":20}`, "id", "9")
	require.NoError(t, h.CreateDate(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = adminContext(http.MethodPost, "/v1/admin/workshops/1/dates", `{"date":"2026-03-14","time_start":"09:00","time_end":"13:00","capacity":20}`, "id", "1")
	require.NoError(t, h.CreateDate(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, ds.items, 1)
	assert.Equal(t, 20, ds.items[0].SeatsRemaining)
	assert.Equal(t, "09:00:00", ds.items[0].TimeStart)
}

type stubCustomers map[string]model.Customer

func (s stubCustomers) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	c, ok := s[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func TestAdminGetCustomer(t *testing.T) {
	customers := stubCustomers{"jo@example.com": {ID: 3, Email: "jo@example.com", FirstName: "Jo"}}
	h := NewAdminHandler(AdminConfig{}, nil, nil, nil, customers, zap.NewNop())

	rec := do(h.GetCustomer, http.MethodGet, "/v1/admin/customers?email=JO@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first_name":"Jo"`)

	rec = do(h.GetCustomer, http.MethodGet, "/v1/admin/customers?email=nobody@example.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h.GetCustomer, http.MethodGet, "/v1/admin/customers?email=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
