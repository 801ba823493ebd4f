package utils

import (
	"github.com/meinhoongagan/carehub/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends plain text mail.
type Mailer struct {
	from string
	send func(*gomail.Message) error
}

// NewMailer sends through the configured SMTP server, dialing per message.
func NewMailer(cfg config.MailConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &Mailer{from: from, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// NewMailerWithSender delivers through s instead of SMTP.
func NewMailerWithSender(from string, s gomail.Sender) *Mailer {
	return &Mailer{from: from, send: func(m *gomail.Message) error { return gomail.Send(s, m) }}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.send(msg)
}
