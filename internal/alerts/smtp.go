package alerts

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/metrics"
)

// SMTPSender sends alerts via email
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       []string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, user, password, from string, to []string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		to:       to,
	}
}

// Send sends the alert via email
func (s *SMTPSender) Send(ctx context.Context, payload *Payload) error {
	subject := fmt.Sprintf("Arbitrage: %.2f%% on %s", arb.Round2(payload.ProfitPercent), payload.Event)
	body := Text(payload)

	message := fmt.Sprintf("From: %s\r\n", s.from)
	message += fmt.Sprintf("To: %s\r\n", s.to[0])
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, s.to, []byte(message)); err != nil {
		metrics.AlertsSent.WithLabelValues("error", "smtp").Inc()
		return fmt.Errorf("send email: %w", err)
	}

	metrics.AlertsSent.WithLabelValues("success", "smtp").Inc()
	return nil
}
