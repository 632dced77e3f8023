package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"time"
)

// Mailer отправляет письма гостям. Отправка - заглушка: письмо рендерится и пишется в лог.
type Mailer interface {
	SendBookingConfirmedEmail(to, guestName, confirmationCode string, checkIn, checkOut time.Time) error
	SendCheckoutReceiptEmail(to, guestName string, checkedOutAt time.Time, early bool) error
}

type EmailService struct {
	from   string
	logger *slog.Logger
}

func NewEmailService(from string, logger *slog.Logger) *EmailService {
	return &EmailService{from: from, logger: logger}
}

var (
	bookingConfirmedTemplate = template.Must(template.New("booking_confirmed").Parse(
		`<p>Hello {{.GuestName}},</p>
<p>Your tournament accommodation is confirmed. Confirmation code: <b>{{.Code}}</b>.</p>
<p>Check-in: {{.CheckIn}}<br>Check-out: {{.CheckOut}}</p>`))

	checkoutReceiptTemplate = template.Must(template.New("checkout_receipt").Parse(
		`<p>Hello {{.GuestName}},</p>
<p>You checked out at {{.CheckedOutAt}}.{{if .Early}} The stay was ended early.{{end}}</p>
<p>Your QR pass is no longer valid.</p>`))
)

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients for %q", subject)
	}
	s.logger.Info("email delivery stubbed",
		slog.String("from", s.from),
		slog.Any("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)),
	)
	return nil
}

func (s *EmailService) generateEmailBody(t *template.Template, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", t.Name(), err)
	}
	return body.String(), nil
}

func (s *EmailService) SendBookingConfirmedEmail(to, guestName, confirmationCode string, checkIn, checkOut time.Time) error {
	body, err := s.generateEmailBody(bookingConfirmedTemplate, struct {
		GuestName, Code, CheckIn, CheckOut string
	}{
		GuestName: guestName,
		Code:      confirmationCode,
		CheckIn:   checkIn.Format("2006-01-02"),
		CheckOut:  checkOut.Format("2006-01-02"),
	})
	if err != nil {
		return err
	}
	return s.SendEmail([]string{to}, "Accommodation confirmed: "+confirmationCode, body)
}

func (s *EmailService) SendCheckoutReceiptEmail(to, guestName string, checkedOutAt time.Time, early bool) error {
	body, err := s.generateEmailBody(checkoutReceiptTemplate, struct {
		GuestName    string
		CheckedOutAt string
		Early        bool
	}{
		GuestName:    guestName,
		CheckedOutAt: checkedOutAt.Format(time.RFC3339),
		Early:        early,
	})
	if err != nil {
		return err
	}
	return s.SendEmail([]string{to}, "Checkout receipt", body)
}
