// Package mail provides an SMTP implementation of the mailsignal.Mailer
// interface, with plush template rendering of message bodies and bounded
// delivery retry.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gobuffalo/plush"
	"github.com/google/uuid"
	"github.com/markbates/inflect"
	"github.com/pkg/errors"

	"github.com/ezachrisen/mailsignal"
)

// Config holds SMTP connection and delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is used when a message does not carry a sender address.
	From string

	// Retries is the number of delivery attempts per message.
	// Values below 1 are treated as 1.
	Retries int

	// RetryWait is the pause between delivery attempts.
	RetryWait time.Duration
}

// ConfigFromEnv reads the configuration from SMTP_HOST, SMTP_PORT,
// SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM, SMTP_RETRIES and
// SMTP_RETRY_WAIT_MS, falling back to defaults for unset variables.
func ConfigFromEnv() Config {
	return Config{
		Host:      envOrDefault("SMTP_HOST", "localhost"),
		Port:      envInt("SMTP_PORT", 25),
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		From:      os.Getenv("SMTP_FROM"),
		Retries:   envInt("SMTP_RETRIES", 1),
		RetryWait: time.Duration(envInt("SMTP_RETRY_WAIT_MS", 1000)) * time.Millisecond,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer renders and delivers messages over SMTP.
type Mailer struct {
	cfg       Config
	send      sendFunc
	templates map[string]string
}

type Option func(m *Mailer)

// WithTemplate registers a named plush template. A message whose Template
// field names it has its plain body rendered from the template source
// instead of the message's PlainBody.
func WithTemplate(id, src string) Option {
	return func(m *Mailer) {
		m.templates[id] = src
	}
}

// WithSendFunc replaces the SMTP send function. Intended for tests.
func WithSendFunc(fn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) Option {
	return func(m *Mailer) {
		m.send = fn
	}
}

// New builds a mailer with the configuration.
func New(cfg Config, opts ...Option) *Mailer {
	m := &Mailer{
		cfg:       cfg,
		send:      smtp.SendMail,
		templates: map[string]string{},
	}
	if m.cfg.Retries < 1 {
		m.cfg.Retries = 1
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send renders the message bodies with the message context and delivers
// the result, retrying up to Config.Retries times.
func (m *Mailer) Send(ctx context.Context, msg mailsignal.Message) error {
	if len(msg.Recipients) == 0 {
		return errors.New("message has no recipients")
	}

	from := msg.From
	if from == "" {
		from = m.cfg.From
	}
	if from == "" {
		return errors.New("message has no sender and no default is configured")
	}

	subject := msg.Subject
	if subject == "" {
		subject = defaultSubject(msg)
	}

	plain, html, err := m.renderBodies(msg)
	if err != nil {
		return errors.Wrap(err, "rendering message")
	}

	raw := m.encode(from, msg.Recipients, subject, plain, html)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var lastErr error
	for attempt := 1; attempt <= m.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = m.send(addr, auth, from, msg.Recipients, raw); lastErr == nil {
			return nil
		}
		if attempt < m.cfg.Retries {
			time.Sleep(m.cfg.RetryWait)
		}
	}
	return errors.Wrapf(lastErr, "sending mail after %d attempts", m.cfg.Retries)
}

// defaultSubject derives a readable subject from the template name, e.g.
// "weekly_report" becomes "Weekly Report".
func defaultSubject(msg mailsignal.Message) string {
	if msg.Template != "" {
		return inflect.Titleize(msg.Template)
	}
	return "Notification"
}

func (m *Mailer) renderBodies(msg mailsignal.Message) (plain string, html string, err error) {
	pctx := plush.NewContext()
	for k, v := range msg.Context {
		pctx.Set(k, v)
	}

	plainSrc := msg.PlainBody
	if msg.Template != "" {
		src, ok := m.templates[msg.Template]
		if !ok {
			return "", "", errors.Errorf("template %q not registered", msg.Template)
		}
		plainSrc = src
	}

	plain, err = plush.Render(plainSrc, pctx)
	if err != nil {
		return "", "", errors.Wrap(err, "plain body")
	}

	if msg.HTMLBody != "" {
		html, err = plush.Render(msg.HTMLBody, pctx)
		if err != nil {
			return "", "", errors.Wrap(err, "html body")
		}
	}
	return plain, html, nil
}

// encode assembles the RFC 5322 message bytes, multipart/alternative when
// an HTML body is present.
func (m *Mailer) encode(from string, to []string, subject, plain, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString(fmt.Sprintf("Message-ID: <%s@%s>\r\n", uuid.NewString(), m.cfg.Host))
	b.WriteString("MIME-Version: 1.0\r\n")

	if html == "" {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(plain)
		b.WriteString("\r\n")
		return []byte(b.String())
	}

	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(plain)
	b.WriteString("\r\n")
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}
