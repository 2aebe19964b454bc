// Package mailer delivers outreach emails over SMTP. The Mailer interface
// keeps delivery swappable: when no credentials are configured the pipeline
// runs with the simulated implementation instead of failing.
package mailer

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Email is one outbound message. Body is HTML.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single email.
type Mailer interface {
	Send(email Email) error
}

// Config carries SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Configured reports whether credentials are present. Without them the
// caller should fall back to the simulated mailer.
func (c Config) Configured() bool {
	return c.Username != "" && c.Password != ""
}

// SMTPMailer sends HTML mail over SMTP with STARTTLS and PLAIN auth.
type SMTPMailer struct {
	cfg Config
}

// NewSMTP creates an SMTPMailer from config.
func NewSMTP(cfg Config) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(email Email) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	msg := BuildMessage(m.cfg.Username, email)
	if err := smtp.SendMail(addr, auth, m.cfg.Username, []string{email.To}, msg); err != nil {
		return eris.Wrapf(err, "mailer: send to %s via %s", email.To, addr)
	}

	zap.L().Info("mailer: email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("smtp_host", m.cfg.Host),
	)
	return nil
}

// BuildMessage assembles an RFC 5322 message with an HTML body.
func BuildMessage(from string, email Email) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", email.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(email.Body)
	return []byte(b.String())
}

// Simulated logs instead of delivering, used when no SMTP credentials are
// configured. Sent emails are kept for inspection in tests.
type Simulated struct {
	Sent []Email
}

// NewSimulated creates a Simulated mailer.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (m *Simulated) Send(email Email) error {
	m.Sent = append(m.Sent, email)
	zap.L().Info("mailer: simulated send",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}
