package calendar

import (
	"net/url"
	"strings"
)

// Links are "add to calendar" deep links for the major providers plus a
// download link for the .ics file served by this API.
type Links struct {
	Google    string `json:"google"`
	Outlook   string `json:"outlook"`
	Office365 string `json:"office365"`
	Yahoo     string `json:"yahoo"`
	ICS       string `json:"ics"`
}

// BuildLinks renders links for e.  siteURL is the public origin of this
// service, without a trailing slash.
func BuildLinks(e Event, siteURL string) Links {
	start := e.Start.In(london).Format("20060102T150405")
	end := e.End.In(london).Format("20060102T150405")
	isoStart := e.Start.UTC().Format("2006-01-02T15:04:05.000Z")
	isoEnd := e.End.UTC().Format("2006-01-02T15:04:05.000Z")
	desc := strings.Join(e.descriptionLines(false), "\n")

	google := url.Values{
		"action":   {"TEMPLATE"},
		"text":     {e.Title},
		"dates":    {start + "/" + end},
		"details":  {desc},
		"location": {e.Location},
		"ctz":      {tzName},
	}
	outlook := url.Values{
		"path":     {"/calendar/action/compose"},
		"rru":      {"addevent"},
		"subject":  {e.Title},
		"startdt":  {isoStart},
		"enddt":    {isoEnd},
		"body":     {desc},
		"location": {e.Location},
	}
	yahoo := url.Values{
		"v":      {"60"},
		"title":  {e.Title},
		"st":     {start},
		"et":     {end},
		"desc":   {desc},
		"in_loc": {e.Location},
	}
	ics := url.Values{
		"workshop": {e.Title},
		"date":     {e.DateParam()},
		"time":     {e.TimeParam()},
		"location": {e.Location},
		"ref":      {e.Reference},
	}

	return Links{
		Google:    "https://calendar.google.com/calendar/render?" + google.Encode(),
		Outlook:   "https://outlook.live.com/calendar/0/deeplink/compose?" + outlook.Encode(),
		Office365: "https://outlook.office.com/calendar/0/deeplink/compose?" + outlook.Encode(),
		Yahoo:     "https://calendar.yahoo.com/?" + yahoo.Encode(),
		ICS:       strings.TrimRight(siteURL, "/") + "/api/calendar?" + ics.Encode(),
	}
}
