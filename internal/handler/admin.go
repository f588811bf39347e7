package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/middleware"
	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/repository"
	"github.com/betterwealth/workshop-booking/internal/utils"
)

// BookingLister lists the bookings of one session.
type BookingLister interface {
	ListByDate(ctx context.Context, workshopDateID uint64) ([]model.BookingDetail, error)
}

// CustomerFinder looks up a purchaser by email.
type CustomerFinder interface {
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
}

// AdminConfig holds the single admin account and token settings.
type AdminConfig struct {
	Email        string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

// AdminHandler provisions workshops and sessions.  Seat counts are never
// edited here; new sessions start with seats_remaining = capacity.
type AdminHandler struct {
	cfg       AdminConfig
	workshops WorkshopStore
	dates     DateStore
	bookings  BookingLister
	customers CustomerFinder
	logger    *zap.Logger
}

// NewAdminHandler returns an AdminHandler over the catalog, booking and
// customer stores.
func NewAdminHandler(cfg AdminConfig, workshops WorkshopStore, dates DateStore, bookings BookingLister, customers CustomerFinder, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{cfg: cfg, workshops: workshops, dates: dates, bookings: bookings, customers: customers, logger: logger}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /v1/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "email/password required")
	}

	hash := h.cfg.PasswordHash
	if email != utils.NormalizeEmail(h.cfg.Email) {
		hash = ""
	}
	if !utils.VerifyPassword(hash, req.Password) {
		h.logger.Warn("admin login rejected", zap.String("email", email))
		return jsonError(c, http.StatusUnauthorized, "invalid credentials")
	}

	tok, err := utils.NewAccessToken(h.cfg.JWTSecret, email, middleware.RoleAdmin, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("issue admin token failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "issue access failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": tok.Token, "expires": tok.Exp})
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type workshopReq struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PricePence int64  `json:"price_pence"`
}

// CreateWorkshop handles POST /v1/admin/workshops.
func (h *AdminHandler) CreateWorkshop(c echo.Context) error {
	var req workshopReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	w := &model.Workshop{
		Name:       strings.TrimSpace(req.Name),
		Slug:       strings.ToLower(strings.TrimSpace(req.Slug)),
		PricePence: req.PricePence,
	}
	if w.Name == "" || !slugPattern.MatchString(w.Slug) || w.PricePence <= 0 {
		return jsonError(c, http.StatusBadRequest, "name, slug and positive price_pence are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.workshops.Create(ctx, w); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return jsonError(c, http.StatusConflict, "slug already exists")
		}
		h.logger.Error("create workshop failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "create workshop failed")
	}
	h.logger.Info("workshop created", zap.Uint64("workshop_id", w.ID), zap.String("slug", w.Slug))
	return c.JSON(http.StatusCreated, w)
}

type dateReq struct {
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
	Capacity  int    `json:"capacity"`
}

func parseClock(s string) (string, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}

// CreateDate handles POST /v1/admin/workshops/:id/dates.
func (h *AdminHandler) CreateDate(c echo.Context) error {
	wid, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || wid == 0 {
		return jsonError(c, http.StatusBadRequest, "invalid workshop id")
	}
	var req dateReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid body")
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	start, ok := parseClock(req.TimeStart)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "time_start must be HH:MM")
	}
	var end string
	if strings.TrimSpace(req.TimeEnd) != "" {
		if end, ok = parseClock(req.TimeEnd); !ok || end <= start {
			return jsonError(c, http.StatusBadRequest, "time_end must be HH:MM after time_start")
		}
	}
	if req.Capacity < 1 {
		return jsonError(c, http.StatusBadRequest, "capacity must be at least 1")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.workshops.GetByID(ctx, wid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "workshop not found")
		}
		h.logger.Error("get workshop failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "create date failed")
	}
	d := &model.WorkshopDate{WorkshopID: wid, Date: day, TimeStart: start, TimeEnd: end, Capacity: req.Capacity}
	if err := h.dates.Create(ctx, d); err != nil {
		h.logger.Error("create date failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "create date failed")
	}
	h.logger.Info("workshop date created", zap.Uint64("workshop_date_id", d.ID), zap.Int("capacity", d.Capacity))
	return c.JSON(http.StatusCreated, d)
}

// ListBookings handles GET /v1/admin/dates/:id/bookings.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return jsonError(c, http.StatusBadRequest, "invalid date id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.bookings.ListByDate(ctx, id)
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "list bookings failed")
	}
	seats := 0
	for _, b := range items {
		seats += b.Quantity
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items), "seats_sold": seats})
}

// GetCustomer handles GET /v1/admin/customers?email=.
func (h *AdminHandler) GetCustomer(c echo.Context) error {
	email := utils.NormalizeEmail(c.QueryParam("email"))
	if !utils.IsValidEmail(email) {
		return jsonError(c, http.StatusBadRequest, "valid email required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cust, err := h.customers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "customer not found")
		}
		h.logger.Error("get customer failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "get customer failed")
	}
	return c.JSON(http.StatusOK, cust)
}
