// Package calendar produces iCalendar files and "add to calendar" links for
// a booked workshop session.  All wall-clock times are Europe/London.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultLocation is used when no venue is supplied.
const DefaultLocation = "Cortland by Colliers Yard, Salford, Manchester"

// DefaultDuration applies when a session has no end time.
const DefaultDuration = 4 * time.Hour

const tzName = "Europe/London"

var london = mustLoad(tzName)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("calendar: load %s: %v", name, err))
	}
	return loc
}

// Event is one workshop session as it appears in a calendar.
type Event struct {
	Title     string
	Start     time.Time
	End       time.Time
	Location  string
	Reference string
}

var dateLayouts = []string{
	"2006-01-02",
	"Monday, 2 January 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006",
}

// ErrInvalidDate is returned when the date or time cannot be parsed.
var ErrInvalidDate = errors.New("invalid date or time")

// ParseEvent builds an Event from the human strings carried in booking
// summaries: date as "2026-03-14" or "Saturday, 14 March 2026" and time as
// "09:00 - 13:00" (seconds optional, end optional).
func ParseEvent(title, date, timeRange, location, reference string) (Event, error) {
	day, err := parseDay(date)
	if err != nil {
		return Event{}, err
	}

	startStr, endStr, _ := strings.Cut(timeRange, "-")
	sh, sm, err := parseClock(startStr)
	if err != nil {
		return Event{}, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, london)

	end := start.Add(DefaultDuration)
	if strings.TrimSpace(endStr) != "" {
		eh, em, err := parseClock(endStr)
		if err != nil {
			return Event{}, err
		}
		end = time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, london)
		if !end.After(start) {
			end = start.Add(DefaultDuration)
		}
	}

	title = strings.ToValidUTF8(title, "\uFFFD")
	location = strings.ToValidUTF8(location, "\uFFFD")
	reference = strings.ToValidUTF8(reference, "\uFFFD")
	if strings.TrimSpace(title) == "" {
		title = "Better Wealth Workshop"
	}
	if strings.TrimSpace(location) == "" {
		location = DefaultLocation
	}
	return Event{Title: title, Start: start, End: end, Location: location, Reference: reference}, nil
}

// NewEvent builds an Event from a stored session.
func NewEvent(title string, day time.Time, timeStart, timeEnd, location, reference string) (Event, error) {
	tr := timeStart
	if timeEnd != "" {
		tr += " - " + timeEnd
	}
	return ParseEvent(title, day.Format("2006-01-02"), tr, location, reference)
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidDate, s)
}

func parseClock(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: time %q", ErrInvalidDate, s)
}

// DateParam renders the day as the date query value accepted by
// ParseEvent.
func (e Event) DateParam() string { return e.Start.Format("2006-01-02") }

// TimeParam formats the event times as the "HH:MM - HH:MM" query value
// accepted by ParseEvent.
func (e Event) TimeParam() string {
	return e.Start.Format("15:04") + " - " + e.End.Format("15:04")
}

var whatToBring = []string{
	"- Laptop (fully charged)",
	"- Notebook and pen",
	"- Access to your business social media accounts",
	"- An open mind and questions!",
}

func (e Event) descriptionLines(withContact bool) []string {
	lines := []string{"Better Wealth Workshop", ""}
	if e.Reference != "" {
		lines = append(lines, "Booking Reference: "+e.Reference, "")
	}
	lines = append(lines, "What to Bring:")
	lines = append(lines, whatToBring...)
	if withContact {
		lines = append(lines, "", "Contact: info@better-wealth.co.uk")
	}
	return lines
}
