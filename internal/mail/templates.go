package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// BookingEmail is the data shared by the booking confirmation, the
// internal notification and the reminder.
type BookingEmail struct {
	CustomerEmail    string
	FirstName        string
	LastName         string
	Phone            string
	Company          string
	WorkshopName     string
	WorkshopDate     string
	WorkshopTime     string
	Location         string
	Quantity         int
	AmountPaid       int64
	BookingReference string
	CalendarURL      string
}

// ContactEmail is a website enquiry.
type ContactEmail struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Message   string
}

var funcs = template.FuncMap{
	"currency": FormatCurrency,
	"plural":   plural,
	"year":     func() int { return time.Now().Year() },
	// message bodies keep their line breaks
	"lines": func(s string) []string { return strings.Split(s, "\n") },
	"pair":  func(label string, v any) labelled { return labelled{label, v} },
}

const layoutHead = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin:0;padding:0;font-family:Arial,Helvetica,sans-serif;background-color:#F4F2EF;">
<table width="100%" cellpadding="0" cellspacing="0" style="background-color:#F4F2EF;padding:40px 20px;"><tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="max-width:600px;background-color:#ffffff;border-radius:12px;overflow:hidden;">`

const layoutFoot = `</table></td></tr></table></body></html>`

const detailRow = `{{define "row"}}<tr>
<td style="padding:8px 0;border-bottom:1px solid rgba(0,0,0,0.1);color:#666666;font-size:13px;">{{.Label}}</td>
<td style="padding:8px 0;border-bottom:1px solid rgba(0,0,0,0.1);text-align:right;"><strong style="color:#033A22;font-size:14px;">{{.Value}}</strong></td>
</tr>{{end}}`

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(detailRow + layoutHead + `
<tr><td style="background-color:#033A22;padding:32px;text-align:center;">
<h1 style="color:#ffffff;margin:0;font-size:24px;">Better Wealth</h1>
<p style="color:#C4926A;margin:8px 0 0 0;font-size:14px;letter-spacing:1px;">BOOKING CONFIRMED</p>
</td></tr>
<tr><td style="padding:40px 32px 24px 32px;text-align:center;">
<h2 style="color:#033A22;margin:0 0 8px 0;font-size:22px;">Thank You, {{.FirstName}}!</h2>
<p style="color:#666666;margin:0;font-size:15px;line-height:1.5;">Your workshop booking has been confirmed. We're looking forward to seeing you.</p>
</td></tr>
<tr><td style="padding:0 32px 32px 32px;">
<table width="100%" cellpadding="0" cellspacing="0" style="background-color:#F4F2EF;border-radius:8px;"><tr><td style="padding:24px;">
<p style="color:#C4926A;font-size:12px;letter-spacing:1px;margin:0 0 16px 0;text-transform:uppercase;">Booking Details</p>
<table width="100%" cellpadding="0" cellspacing="0">
{{template "row" (pair "Workshop" .WorkshopName)}}
{{template "row" (pair "Date" .WorkshopDate)}}
{{template "row" (pair "Time" .WorkshopTime)}}
{{template "row" (pair "Location" .Location)}}
{{template "row" (pair "Attendees" .Quantity)}}
{{template "row" (pair "Total Paid" (currency .AmountPaid))}}
<tr><td style="padding:8px 0;color:#666666;font-size:13px;">Booking Reference</td>
<td style="padding:8px 0;text-align:right;"><strong style="color:#C4926A;font-size:14px;font-family:monospace;">{{.BookingReference}}</strong></td></tr>
</table>
</td></tr></table>
</td></tr>
{{if .CalendarURL}}<tr><td style="padding:0 32px 32px 32px;text-align:center;">
<a href="{{.CalendarURL}}" target="_blank" style="display:inline-block;background-color:#C4926A;color:#ffffff;text-decoration:none;padding:14px 32px;border-radius:8px;font-size:14px;font-weight:bold;">Add to Calendar</a>
</td></tr>{{end}}
<tr><td style="padding:0 32px 32px 32px;">
<h3 style="color:#033A22;margin:0 0 8px 0;font-size:16px;">What to Bring</h3>
<ul style="color:#666666;margin:0;padding-left:20px;font-size:14px;line-height:1.8;">
<li>Laptop (fully charged)</li><li>Notebook and pen</li><li>Access to your business social media accounts</li><li>An open mind and questions!</li>
</ul>
</td></tr>
<tr><td style="padding:0 32px 32px 32px;"><p style="color:#666666;font-size:14px;line-height:1.6;margin:0;">
If you have any questions before the workshop, please don't hesitate to contact us at
<a href="mailto:info@better-wealth.co.uk" style="color:#C4926A;text-decoration:none;">info@better-wealth.co.uk</a></p></td></tr>
<tr><td style="background-color:#022A18;padding:24px 32px;text-align:center;">
<p style="color:rgba(255,255,255,0.6);font-size:13px;margin:0 0 8px 0;">Better Wealth | Marketing Education for Financial Services</p>
<p style="color:rgba(255,255,255,0.4);font-size:12px;margin:0;">&copy; {{year}} Better Wealth. All rights reserved.</p>
</td></tr>` + layoutFoot))

var internalTmpl = template.Must(template.New("internal").Funcs(funcs).Parse(detailRow + layoutHead + `
<tr><td style="background-color:#033A22;padding:24px;text-align:center;">
<h1 style="color:#ffffff;margin:0;font-size:20px;">New Workshop Booking</h1>
</td></tr>
<tr><td style="padding:32px;">
<h2 style="color:#033A22;margin:0 0 4px 0;font-size:18px;">{{.FirstName}} {{.LastName}}</h2>
<p style="color:#C4926A;margin:0;font-size:14px;">{{plural .Quantity "ticket"}} &bull; {{currency .AmountPaid}}</p>
</td></tr>
<tr><td style="padding:0 32px 24px 32px;">
<h3 style="color:#033A22;margin:0 0 16px 0;font-size:14px;text-transform:uppercase;letter-spacing:1px;">Customer Details</h3>
<table width="100%" cellpadding="0" cellspacing="0">
<tr><td style="padding:8px 0;color:#666;font-size:13px;">Email</td>
<td style="padding:8px 0;font-size:13px;"><a href="mailto:{{.CustomerEmail}}" style="color:#033A22;">{{.CustomerEmail}}</a></td></tr>
{{if .Phone}}{{template "row" (pair "Phone" .Phone)}}{{end}}
{{if .Company}}{{template "row" (pair "Company" .Company)}}{{end}}
</table>
</td></tr>
<tr><td style="padding:0 32px 24px 32px;">
<h3 style="color:#033A22;margin:0 0 16px 0;font-size:14px;text-transform:uppercase;letter-spacing:1px;">Booking Details</h3>
<table width="100%" cellpadding="0" cellspacing="0">
{{template "row" (pair "Workshop" .WorkshopName)}}
{{template "row" (pair "Date" .WorkshopDate)}}
{{template "row" (pair "Time" .WorkshopTime)}}
{{template "row" (pair "Attendees" .Quantity)}}
{{template "row" (pair "Amount" (currency .AmountPaid))}}
{{template "row" (pair "Reference" .BookingReference)}}
</table>
</td></tr>
<tr><td style="background-color:#022A18;padding:16px 32px;text-align:center;">
<p style="color:rgba(255,255,255,0.4);font-size:11px;margin:0;">This is an automated notification from Better Wealth booking system.</p>
</td></tr>` + layoutFoot))

var reminderTmpl = template.Must(template.New("reminder").Funcs(funcs).Parse(detailRow + layoutHead + `
<tr><td style="background-color:#033A22;padding:32px;text-align:center;">
<h1 style="color:#ffffff;margin:0;font-size:24px;">Better Wealth</h1>
<p style="color:#C4926A;margin:8px 0 0 0;font-size:14px;letter-spacing:1px;">SEE YOU TOMORROW</p>
</td></tr>
<tr><td style="padding:32px;">
<p style="color:#666666;font-size:15px;line-height:1.5;margin:0 0 16px 0;">Hi {{.FirstName}}, this is a reminder that your workshop is tomorrow.</p>
<table width="100%" cellpadding="0" cellspacing="0">
{{template "row" (pair "Workshop" .WorkshopName)}}
{{template "row" (pair "Date" .WorkshopDate)}}
{{template "row" (pair "Time" .WorkshopTime)}}
{{template "row" (pair "Location" .Location)}}
{{template "row" (pair "Reference" .BookingReference)}}
</table>
</td></tr>` + layoutFoot))

var contactTmpl = template.Must(template.New("contact").Funcs(funcs).Parse(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
<h2 style="color:#033A22;border-bottom:2px solid #C4926A;padding-bottom:10px;">New Website Enquiry</h2>
<table style="width:100%;border-collapse:collapse;margin-top:20px;">
<tr><td style="padding:10px 0;border-bottom:1px solid #eee;color:#666;width:140px;"><strong>Name:</strong></td>
<td style="padding:10px 0;border-bottom:1px solid #eee;color:#333;">{{.FirstName}} {{.LastName}}</td></tr>
<tr><td style="padding:10px 0;border-bottom:1px solid #eee;color:#666;"><strong>Email:</strong></td>
<td style="padding:10px 0;border-bottom:1px solid #eee;color:#333;"><a href="mailto:{{.Email}}" style="color:#033A22;">{{.Email}}</a></td></tr>
{{if .Phone}}<tr><td style="padding:10px 0;border-bottom:1px solid #eee;color:#666;"><strong>Phone:</strong></td>
<td style="padding:10px 0;border-bottom:1px solid #eee;color:#333;">{{.Phone}}</td></tr>{{end}}
{{if .Company}}<tr><td style="padding:10px 0;border-bottom:1px solid #eee;color:#666;"><strong>Company:</strong></td>
<td style="padding:10px 0;border-bottom:1px solid #eee;color:#333;">{{.Company}}</td></tr>{{end}}
</table>
<div style="margin-top:30px;">
<h3 style="color:#033A22;margin-bottom:10px;">Message:</h3>
<div style="background-color:#F4F2EF;padding:20px;border-radius:8px;color:#333;line-height:1.6;">{{range $i, $l := lines .Message}}{{if $i}}<br>{{end}}{{$l}}{{end}}</div>
</div>
<p style="margin-top:30px;font-size:12px;color:#999;">This enquiry was submitted via the Better Wealth website contact form.</p>
</div>`))

type labelled struct {
	Label string
	Value any
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// BookingConfirmation is sent to the customer after payment.
func BookingConfirmation(d BookingEmail) (Message, error) {
	html, err := render(confirmationTmpl, d)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{d.CustomerEmail},
		Subject: "Booking Confirmed - " + d.WorkshopName,
		HTML:    html,
	}, nil
}

// InternalBookingNotification goes to the operations inbox; replies reach
// the customer.
func InternalBookingNotification(d BookingEmail, inbox string) (Message, error) {
	html, err := render(internalTmpl, d)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{inbox},
		ReplyTo: d.CustomerEmail,
		Subject: fmt.Sprintf("New Workshop Booking - %s %s", d.FirstName, d.LastName),
		HTML:    html,
	}, nil
}

// WorkshopReminder is sent the day before the session.
func WorkshopReminder(d BookingEmail) (Message, error) {
	html, err := render(reminderTmpl, d)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{d.CustomerEmail},
		Subject: "Reminder: " + d.WorkshopName + " is tomorrow",
		HTML:    html,
	}, nil
}

// ContactEnquiry forwards a website enquiry to the inbox.
func ContactEnquiry(d ContactEmail, inbox string) (Message, error) {
	html, err := render(contactTmpl, d)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{inbox},
		ReplyTo: d.Email,
		Subject: fmt.Sprintf("Better Wealth Website Enquiry - %s %s", d.FirstName, d.LastName),
		HTML:    html,
	}, nil
}
