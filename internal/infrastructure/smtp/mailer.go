package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/maxschool-bot/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// CodeSender dispatches verification codes. The registration protocol only
// cares about this contract: send the code or fail.
type CodeSender interface {
	SendCode(to, code string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewMailer builds the SMTP-backed mailer. It implements both Mailer and
// CodeSender.
func NewMailer(cfg *config.Config) *mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

func (m *mailer) SendCode(to, code string) error {
	subject := "Verification code for the school bot"
	body := fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Email confirmation</h2>
<p>You started registration in the school messenger bot.</p>
<p>Your verification code:</p>
<div style="background-color: #f0f0f0; padding: 15px; text-align: center; font-size: 24px; letter-spacing: 5px; font-weight: bold;">%s</div>
<p>The code is valid for 5 minutes.</p>
<p>If you did not request this code, ignore this message.</p>
</div>`, code)
	return m.SendEmail(to, subject, body)
}
