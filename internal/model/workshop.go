package model

import (
	"strings"
	"time"
)

// Workshop is a catalog entry for a bookable workshop.  Workshops are
// created out-of-band (admin API or direct SQL) and never modified by the
// booking flow.
//
// Fields:
//
//	ID         – primary key identifier.
//	Name       – display name shown on the checkout page and in emails.
//	Slug       – URL-safe identifier used in /workshops/<slug>/book.
//	PricePence – unit price per seat in minor currency units.
//	CreatedAt  – creation timestamp.
type Workshop struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	PricePence int64     `json:"price_pence"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkshopDate is one scheduled occurrence of a workshop with its own seat
// inventory.  SeatsRemaining is the only mutable field and is decremented
// exclusively by payment fulfillment; it always stays within
// [0, Capacity].
//
// Fields:
//
//	ID             – primary key identifier.
//	WorkshopID     – owning workshop.
//	Date           – calendar day of the session (UTC midnight).
//	TimeStart      – start time of day, "HH:MM:SS".
//	TimeEnd        – end time of day, "HH:MM:SS".
//	Capacity       – seats provisioned for the session.
//	SeatsRemaining – seats still available for purchase.
type WorkshopDate struct {
	ID             uint64    `json:"id"`
	WorkshopID     uint64    `json:"workshop_id"`
	Date           time.Time `json:"date"`
	TimeStart      string    `json:"time_start"`
	TimeEnd        string    `json:"time_end"`
	Capacity       int       `json:"capacity"`
	SeatsRemaining int       `json:"seats_remaining"`
}

// WorkshopDateDetail joins a session with the workshop it belongs to.  It is
// what both checkout validation and fulfillment need to know about a date.
type WorkshopDateDetail struct {
	WorkshopDate
	WorkshopName string `json:"workshop_name"`
	WorkshopSlug string `json:"workshop_slug"`
	PricePence   int64  `json:"price_pence"`
}

// SoldOut reports whether no seats remain.
func (d WorkshopDate) SoldOut() bool {
	return d.SeatsRemaining <= 0
}

// DisplayDate formats the session day as "Saturday, 14 March 2026".
func (d WorkshopDate) DisplayDate() string {
	return d.Date.Format("Monday, 2 January 2006")
}

// DisplayTime formats the session time range as "09:00 - 13:00".  Seconds
// are dropped; an empty end time yields just the start.
func (d WorkshopDate) DisplayTime() string {
	start := shortClock(d.TimeStart)
	end := shortClock(d.TimeEnd)
	if end == "" {
		return start
	}
	return start + " - " + end
}

func shortClock(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
