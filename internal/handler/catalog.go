package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/betterwealth/workshop-booking/internal/model"
	"github.com/betterwealth/workshop-booking/internal/repository"
)

// WorkshopStore is the workshop catalog.
type WorkshopStore interface {
	Create(ctx context.Context, w *model.Workshop) error
	GetByID(ctx context.Context, id uint64) (*model.Workshop, error)
	GetBySlug(ctx context.Context, slug string) (*model.Workshop, error)
	List(ctx context.Context) ([]model.Workshop, error)
}

// DateStore lists and provisions sessions.
type DateStore interface {
	ListUpcoming(ctx context.Context, workshopID uint64, from time.Time) ([]model.WorkshopDateDetail, error)
	Create(ctx context.Context, d *model.WorkshopDate) error
}

// CatalogHandler serves the public, read-only catalog.
type CatalogHandler struct {
	workshops WorkshopStore
	dates     DateStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewCatalogHandler returns a CatalogHandler over the given stores.
func NewCatalogHandler(workshops WorkshopStore, dates DateStore, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{workshops: workshops, dates: dates, logger: logger, now: time.Now}
}

type dateView struct {
	ID             uint64 `json:"id"`
	Date           string `json:"date"`
	DisplayDate    string `json:"display_date"`
	Time           string `json:"time"`
	Capacity       int    `json:"capacity"`
	SeatsRemaining int    `json:"seats_remaining"`
	SoldOut        bool   `json:"sold_out"`
}

type workshopView struct {
	model.Workshop
	Dates []dateView `json:"dates"`
}

func toDateView(d model.WorkshopDateDetail) dateView {
	return dateView{
		ID:             d.ID,
		Date:           d.Date.Format("2006-01-02"),
		DisplayDate:    d.DisplayDate(),
		Time:           d.DisplayTime(),
		Capacity:       d.Capacity,
		SeatsRemaining: max(d.SeatsRemaining, 0),
		SoldOut:        d.SoldOut(),
	}
}

// ListWorkshops handles GET /api/workshops.
func (h *CatalogHandler) ListWorkshops(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ws, err := h.workshops.List(ctx)
	if err != nil {
		h.logger.Error("list workshops failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, msgInternal)
	}
	dates, err := h.dates.ListUpcoming(ctx, 0, h.now())
	if err != nil {
		h.logger.Error("list upcoming dates failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, msgInternal)
	}

	byWorkshop := map[uint64][]dateView{}
	for _, d := range dates {
		byWorkshop[d.WorkshopID] = append(byWorkshop[d.WorkshopID], toDateView(d))
	}
	out := make([]workshopView, 0, len(ws))
	for _, w := range ws {
		v := workshopView{Workshop: w, Dates: byWorkshop[w.ID]}
		if v.Dates == nil {
			v.Dates = []dateView{}
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListDates handles GET /api/workshops/:slug/dates.
func (h *CatalogHandler) ListDates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	w, err := h.workshops.GetBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Workshop not found")
	}
	if err != nil {
		h.logger.Error("get workshop failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, msgInternal)
	}
	dates, err := h.dates.ListUpcoming(ctx, w.ID, h.now())
	if err != nil {
		h.logger.Error("list dates failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, msgInternal)
	}
	out := make([]dateView, 0, len(dates))
	for _, d := range dates {
		out = append(out, toDateView(d))
	}
	return c.JSON(http.StatusOK, workshopView{Workshop: *w, Dates: out})
}
