package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() BookingEmail {
	return BookingEmail{
		CustomerEmail:    "ada@example.com",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Phone:            "0161 000 0000",
		WorkshopName:     "Paid Advertising",
		WorkshopDate:     "Saturday, 14 March 2026",
		WorkshopTime:     "09:00 - 13:00",
		Location:         "Cortland by Colliers Yard, Salford, Manchester",
		Quantity:         2,
		AmountPaid:       19800,
		BookingReference: "BW-LX2K9A-7QF3ZD",
		CalendarURL:      "https://calendar.google.com/calendar/render?action=TEMPLATE",
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "£198.00", FormatCurrency(19800))
	assert.Equal(t, "£0.05", FormatCurrency(5))
	assert.Equal(t, "£1,234.50", FormatCurrency(123450))
	assert.Equal(t, "£1,000,000.00", FormatCurrency(100000000))
}

func TestBookingConfirmation(t *testing.T) {
	msg, err := BookingConfirmation(sampleBooking())
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Equal(t, "Booking Confirmed - Paid Advertising", msg.Subject)
	assert.Contains(t, msg.HTML, "Thank You, Ada!")
	assert.Contains(t, msg.HTML, "£198.00")
	assert.Contains(t, msg.HTML, "BW-LX2K9A-7QF3ZD")
	assert.Contains(t, msg.HTML, "Add to Calendar")
}

func TestInternalBookingNotification(t *testing.T) {
	msg, err := InternalBookingNotification(sampleBooking(), "info@better-wealth.co.uk")
	require.NoError(t, err)
	assert.Equal(t, []string{"info@better-wealth.co.uk"}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "New Workshop Booking - Ada Lovelace", msg.Subject)
	assert.Contains(t, msg.HTML, "2 tickets")
	assert.Contains(t, msg.HTML, "0161 000 0000")
	assert.NotContains(t, msg.HTML, "Company")
}

func TestContactEnquiry_EscapesUserInput(t *testing.T) {
	msg, err := ContactEnquiry(ContactEmail{
		FirstName: "Eve",
		LastName:  "<script>x</script>",
		Email:     "eve@example.com",
		Message:   "line one\nline <b>two</b>",
	}, "info@better-wealth.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", msg.ReplyTo)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.NotContains(t, msg.HTML, "<b>two</b>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "line one<br>line")
}
