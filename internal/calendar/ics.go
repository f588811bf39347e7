package calendar

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const uidDomain = "better-wealth.co.uk"

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(uidDomain))

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// UID is stable for a given booking reference and start time.
func (e Event) UID() string {
	key := e.Reference + "|" + e.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@" + uidDomain
}

// GenerateICS renders the event as an RFC 5545 calendar.  The output is
// identical for identical input except for DTSTAMP, which is taken from now.
func GenerateICS(e Event, now time.Time) string {
	local := func(t time.Time) string { return t.In(london).Format("20060102T150405") }

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Better Wealth//Workshop Booking//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:Better Wealth Workshop",
		"BEGIN:VTIMEZONE",
		"TZID:" + tzName,
		"BEGIN:DAYLIGHT",
		"TZOFFSETFROM:+0000",
		"TZOFFSETTO:+0100",
		"TZNAME:BST",
		"DTSTART:19700329T010000",
		"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU",
		"END:DAYLIGHT",
		"BEGIN:STANDARD",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0000",
		"TZNAME:GMT",
		"DTSTART:19701025T020000",
		"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
		"END:STANDARD",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"DTSTART;TZID=" + tzName + ":" + local(e.Start),
		"DTEND;TZID=" + tzName + ":" + local(e.End),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"UID:" + e.UID(),
		"SUMMARY:" + icsEscaper.Replace(e.Title),
		"DESCRIPTION:" + icsEscaper.Replace(strings.Join(e.descriptionLines(true), "\n")),
		"LOCATION:" + icsEscaper.Replace(e.Location),
		"STATUS:CONFIRMED",
		"SEQUENCE:0",
		"BEGIN:VALARM",
		"TRIGGER:-P1D",
		"DESCRIPTION:Workshop tomorrow - Better Wealth",
		"ACTION:DISPLAY",
		"END:VALARM",
		"BEGIN:VALARM",
		"TRIGGER:-PT2H",
		"DESCRIPTION:Workshop starts in 2 hours",
		"ACTION:DISPLAY",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	var b strings.Builder
	for _, l := range lines {
		fold(&b, l)
	}
	return b.String()
}

// fold writes one content line, splitting it at 75 octets with CRLF plus a
// leading space as RFC 5545 section 3.1 requires.  Splits never land inside
// a valid UTF-8 sequence.
func fold(b *strings.Builder, line string) {
	const limit = 75
	width := limit
	for len(line) > width {
		cut := width
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		// no rune start in reach: split the bytes as they are
		if cut == 0 {
			cut = width
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		width = limit - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
