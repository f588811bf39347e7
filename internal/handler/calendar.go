package handler

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/betterwealth/workshop-booking/internal/calendar"
)

var unsafeRef = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// CalendarHandler serves ICS downloads and provider deep links built from
// query parameters.
type CalendarHandler struct {
	siteURL  string
	location string
	now      func() time.Time
}

// NewCalendarHandler returns a CalendarHandler.  location is used when the
// request does not carry one.
func NewCalendarHandler(siteURL, location string) *CalendarHandler {
	return &CalendarHandler{siteURL: siteURL, location: location, now: time.Now}
}

func (h *CalendarHandler) event(c echo.Context) (calendar.Event, error) {
	q := c.QueryParams()
	title := q.Get("workshop")
	date := q.Get("date")
	tr := q.Get("time")
	if tr == "" {
		tr = "09:00 - 13:00"
	}
	loc := q.Get("location")
	if loc == "" {
		loc = h.location
	}
	ref := q.Get("ref")
	if ref == "" {
		ref = "BW-" + strconv.FormatInt(h.now().UnixMilli(), 10)
	}
	return calendar.ParseEvent(title, date, tr, loc, ref)
}

// ICS handles GET /api/calendar and returns an .ics attachment.
func (h *CalendarHandler) ICS(c echo.Context) error {
	if c.QueryParam("date") == "" {
		return jsonError(c, http.StatusBadRequest, "Date is required")
	}
	ev, err := h.event(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid date or time")
	}

	filename := fmt.Sprintf("better-wealth-workshop-%s.ics", unsafeRef.ReplaceAllString(ev.Reference, ""))
	hdr := c.Response().Header()
	hdr.Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	hdr.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.GenerateICS(ev, h.now())))
}

// Links handles GET /api/calendar/links.
func (h *CalendarHandler) Links(c echo.Context) error {
	if c.QueryParam("date") == "" {
		return jsonError(c, http.StatusBadRequest, "Date is required")
	}
	ev, err := h.event(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid date or time")
	}
	return c.JSON(http.StatusOK, calendar.BuildLinks(ev, h.siteURL))
}
