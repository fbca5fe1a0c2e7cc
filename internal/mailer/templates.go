package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).ParseFS(templateFS, "templates/*.html"))

// BookingData fills the booking confirmation email.
type BookingData struct {
	Agency       string
	CustomerName string
	PackageName  string
	Destination  string
	DurationDays int
	Amount       float64
	Currency     string
	PaymentURL   string
	BookingID    int64
	AgentName    string
	AgentEmail   string
}

// BookingEmail renders the payment-link email for a booking.
func BookingEmail(data BookingData) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "booking.html", data); err != nil {
		return Message{}, fmt.Errorf("render booking email: %w", err)
	}

	text := fmt.Sprintf("Hello %s,\n\nYour booking #%d for %s is reserved. Amount due: %s %.2f.\nPay here: %s\n\n%s",
		data.CustomerName, data.BookingID, data.PackageName, data.Currency, data.Amount, data.PaymentURL, data.Agency)

	return Message{
		Subject: fmt.Sprintf("%s: complete your booking for %s", data.Agency, data.PackageName),
		HTML:    buf.String(),
		Text:    text,
	}, nil
}
