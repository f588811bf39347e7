package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewBookingReference returns a short human-facing reference such as
// BW-LX2K9A1B-7QF3ZD: base36 milliseconds plus six random characters.
func NewBookingReference(now time.Time) string {
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	rnd := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return "BW-" + ts + "-" + rnd
}

// placeholderReference is shown before the webhook has created the
// booking.
func placeholderReference(sessionID string) string {
	tail := sessionID
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "BW-" + strings.ToUpper(tail)
}
