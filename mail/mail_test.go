package mail_test

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/matryer/is"

	"github.com/ezachrisen/mailsignal"
	"github.com/ezachrisen/mailsignal/mail"
)

// capture records the arguments of the SMTP send call.
type capture struct {
	mu       sync.Mutex
	addr     string
	from     string
	to       []string
	raw      []byte
	calls    int
	failures int // fail this many calls before succeeding
}

func (c *capture) send(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failures > 0 {
		c.failures--
		return errors.New("connection refused")
	}
	c.addr, c.from, c.to, c.raw = addr, from, to, msg
	return nil
}

func newMailer(c *capture, opts ...mail.Option) *mail.Mailer {
	cfg := mail.Config{Host: "smtp.example.com", Port: 587, From: "default@example.com"}
	opts = append(opts, mail.WithSendFunc(c.send))
	return mail.New(cfg, opts...)
}

func TestSend(t *testing.T) {
	is := is.New(t)

	c := &capture{}
	m := newMailer(c)

	err := m.Send(context.Background(), mailsignal.Message{
		Subject:    "Account activated",
		PlainBody:  "Hello <%= name %>",
		From:       "noreply@example.com",
		Recipients: []string{"ops@example.com", "oncall@example.com"},
		Context:    map[string]any{"name": "Dana"},
	})
	is.NoErr(err)
	is.Equal(c.addr, "smtp.example.com:587")
	is.Equal(c.from, "noreply@example.com")
	is.Equal(c.to, []string{"ops@example.com", "oncall@example.com"})

	raw := string(c.raw)
	is.True(strings.Contains(raw, "Subject: Account activated\r\n"))
	is.True(strings.Contains(raw, "To: ops@example.com, oncall@example.com\r\n"))
	is.True(strings.Contains(raw, "Message-ID: <"))
	is.True(strings.Contains(raw, "Hello Dana"))
}

func TestSendMultipart(t *testing.T) {
	is := is.New(t)

	c := &capture{}
	m := newMailer(c)

	err := m.Send(context.Background(), mailsignal.Message{
		Subject:    "Update",
		PlainBody:  "Hello <%= name %>",
		HTMLBody:   "<b>Hello <%= name %></b>",
		Recipients: []string{"ops@example.com"},
		Context:    map[string]any{"name": "Dana"},
	})
	is.NoErr(err)

	raw := string(c.raw)
	is.True(strings.Contains(raw, "multipart/alternative"))
	is.True(strings.Contains(raw, "text/plain"))
	is.True(strings.Contains(raw, "text/html"))
	is.True(strings.Contains(raw, "<b>Hello Dana</b>"))

	// Falls back to the configured default sender.
	is.Equal(c.from, "default@example.com")
}

func TestSendTemplate(t *testing.T) {
	is := is.New(t)

	c := &capture{}
	m := newMailer(c, mail.WithTemplate("weekly_report", "Report for <%= name %>"))

	err := m.Send(context.Background(), mailsignal.Message{
		Template:   "weekly_report",
		PlainBody:  "ignored when a template is set",
		Recipients: []string{"ops@example.com"},
		Context:    map[string]any{"name": "Dana"},
	})
	is.NoErr(err)

	raw := string(c.raw)
	is.True(strings.Contains(raw, "Report for Dana"))
	// The subject is derived from the template name when unset.
	is.True(strings.Contains(raw, "Subject: Weekly Report\r\n"))
}

func TestSendTemplateNotRegistered(t *testing.T) {
	is := is.New(t)

	m := newMailer(&capture{})
	err := m.Send(context.Background(), mailsignal.Message{
		Template:   "missing",
		Recipients: []string{"ops@example.com"},
	})
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "missing"))
}

func TestSendNoRecipients(t *testing.T) {
	is := is.New(t)

	m := newMailer(&capture{})
	err := m.Send(context.Background(), mailsignal.Message{Subject: "x"})
	is.True(err != nil)
}

func TestSendNoSender(t *testing.T) {
	is := is.New(t)

	c := &capture{}
	m := mail.New(mail.Config{Host: "smtp.example.com", Port: 587}, mail.WithSendFunc(c.send))
	err := m.Send(context.Background(), mailsignal.Message{
		Subject:    "x",
		Recipients: []string{"ops@example.com"},
	})
	is.True(err != nil)
}

func TestSendRetry(t *testing.T) {
	is := is.New(t)

	c := &capture{failures: 1}
	cfg := mail.Config{Host: "smtp.example.com", Port: 587, From: "a@example.com", Retries: 2}
	m := mail.New(cfg, mail.WithSendFunc(c.send))

	err := m.Send(context.Background(), mailsignal.Message{
		Subject:    "x",
		PlainBody:  "body",
		Recipients: []string{"ops@example.com"},
	})
	is.NoErr(err)
	is.Equal(c.calls, 2)
}

func TestSendRetryExhausted(t *testing.T) {
	is := is.New(t)

	c := &capture{failures: 3}
	cfg := mail.Config{Host: "smtp.example.com", Port: 587, From: "a@example.com", Retries: 2}
	m := mail.New(cfg, mail.WithSendFunc(c.send))

	err := m.Send(context.Background(), mailsignal.Message{
		Subject:    "x",
		PlainBody:  "body",
		Recipients: []string{"ops@example.com"},
	})
	is.True(err != nil)
	is.Equal(c.calls, 2)
	is.True(strings.Contains(err.Error(), "2 attempts"))
}

func TestSendCancelledContext(t *testing.T) {
	is := is.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newMailer(&capture{})
	err := m.Send(ctx, mailsignal.Message{
		Subject:    "x",
		PlainBody:  "body",
		Recipients: []string{"ops@example.com"},
	})
	is.True(errors.Is(err, context.Canceled))
}

func TestConfigFromEnv(t *testing.T) {
	is := is.New(t)

	t.Setenv("SMTP_HOST", "mx.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "robot@example.com")
	t.Setenv("SMTP_RETRIES", "3")

	cfg := mail.ConfigFromEnv()
	is.Equal(cfg.Host, "mx.example.com")
	is.Equal(cfg.Port, 2525)
	is.Equal(cfg.From, "robot@example.com")
	is.Equal(cfg.Retries, 3)
}
