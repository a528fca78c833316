package mailsignal_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ezachrisen/mailsignal"
)

// -------------------------------------------------- TEST OBJECT
// order is a typical host object. Fields are exposed through GetField so
// definitions can reference them by name.
type order struct {
	Status   string
	Total    float64
	Items    []string
	Customer string
	contact  string
}

func (o *order) GetField(name string) (any, bool) {
	switch name {
	case "status":
		return o.Status, true
	case "total":
		return o.Total, true
	case "items":
		return o.Items, true
	case "customer":
		return o.Customer, true
	}
	return nil, false
}

func (o *order) TypeName() string { return "Order" }

func (o *order) SignalRecipients(opt string) []string {
	if opt == "contact" && o.contact != "" {
		return []string{o.contact}
	}
	return nil
}

// -------------------------------------------------- MOCK MAILER
// captureMailer records the messages it is asked to send.
// It is safe for concurrent use.
type captureMailer struct {
	mu   sync.Mutex
	sent []mailsignal.Message
	fail error // if set, Send returns this error instead of recording
}

func (m *captureMailer) Send(_ context.Context, msg mailsignal.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) last() mailsignal.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// --------------------------------------------------

// quietLogger discards dispatcher logging in tests.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func str(s string) *string { return &s }
