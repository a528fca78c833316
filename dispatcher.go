package mailsignal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Message is the email request handed to the Mailer collaborator when a
// definition's constraints pass. The dispatcher only assembles it; template
// rendering and transport are the mailer's concern.
type Message struct {
	Subject    string
	PlainBody  string
	HTMLBody   string
	From       string
	Recipients []string
	Template   string

	// Context carries the changed object under "object" and the event
	// payload under "payload", for use in templates.
	Context map[string]any
}

// Mailer delivers messages assembled by the dispatcher.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher connects host lifecycle events to signal definitions. The
// host event system calls Notify once per event; the dispatcher evaluates
// every definition watching that (object type, event kind) pair and
// requests an email for each one whose constraints pass.
type Dispatcher struct {
	catalog *Catalog
	mailer  Mailer
	opts    DispatchOptions
}

// See the functional definitions below for the meaning.
type DispatchOptions struct {
	Logger          *slog.Logger
	TraceEvaluation bool
	DryRun          bool
}

type DispatchOption func(o *DispatchOptions)

// WithLogger sets the logger used for skip, error and dry-run reporting.
// Default: slog.Default()
func WithLogger(l *slog.Logger) DispatchOption {
	return func(o *DispatchOptions) {
		o.Logger = l
	}
}

// TraceEvaluation collects a constraint evaluation trace for every
// definition and logs it at debug level.
// Default: off
func TraceEvaluation(b bool) DispatchOption {
	return func(o *DispatchOptions) {
		o.TraceEvaluation = b
	}
}

// DryRun evaluates constraints but suppresses email dispatch.
// Default: off
func DryRun(b bool) DispatchOption {
	return func(o *DispatchOptions) {
		o.DryRun = b
	}
}

// NewDispatcher builds a dispatcher over a validated catalog.
func NewDispatcher(catalog *Catalog, mailer Mailer, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		catalog: catalog,
		mailer:  mailer,
	}
	d.opts.Logger = slog.Default()
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

// Notify evaluates every definition watching the object's type and the
// event kind. Definitions whose constraints fail are skipped silently.
// Evaluation and delivery problems are logged, collected, and returned
// joined; they never abort the remaining definitions, and the lifecycle
// event that triggered the call is never suppressed. A nil return means
// every matching definition was evaluated and every requested email was
// handed off.
func (d *Dispatcher) Notify(ctx context.Context, object Object, kind EventKind, payload map[string]any) error {
	if object == nil {
		return fmt.Errorf("notify called with a nil object")
	}

	name := typeName(object)
	var errs []error

	for _, def := range d.catalog.Match(name, kind) {
		var copts []CheckerOption
		if d.opts.TraceEvaluation {
			copts = append(copts, CollectTrace())
		}

		checker := NewChecker(object, payload, def.Constraints, d.catalog.Registry(), copts...)
		pass, err := checker.RunTests()
		if err != nil {
			// A broken definition must not stop the event or the
			// other definitions; it only loses its email.
			d.opts.Logger.ErrorContext(ctx, "signal evaluation failed",
				"definition", def.ID,
				"object_type", name,
				"event", kind.String(),
				"error", err)
			errs = append(errs, fmt.Errorf("definition %s: %w", def.ID, err))
			continue
		}

		if t := checker.Trace(); t != nil {
			d.opts.Logger.DebugContext(ctx, "signal evaluated",
				"definition", def.ID,
				"trace", t.AsString(def, payload))
		}

		if !pass {
			d.opts.Logger.DebugContext(ctx, "signal constraints not met",
				"definition", def.ID,
				"object_type", name,
				"event", kind.String())
			continue
		}

		if d.opts.DryRun {
			d.opts.Logger.InfoContext(ctx, "dry run: email suppressed",
				"definition", def.ID)
			continue
		}

		if err := d.mailer.Send(ctx, d.buildMessage(def, object, payload)); err != nil {
			d.opts.Logger.ErrorContext(ctx, "email dispatch failed",
				"definition", def.ID,
				"error", err)
			errs = append(errs, fmt.Errorf("definition %s: sending mail: %w", def.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) buildMessage(def *Definition, object Object, payload map[string]any) Message {
	recipients := append([]string(nil), def.Recipients...)
	if rl, ok := object.(RecipientLister); ok {
		recipients = append(recipients, rl.SignalRecipients(def.RecipientsOpt)...)
	}
	return Message{
		Subject:    def.Subject,
		PlainBody:  def.PlainBody,
		HTMLBody:   def.HTMLBody,
		From:       def.From,
		Recipients: recipients,
		Template:   def.Template,
		Context: map[string]any{
			"object":  object,
			"payload": payload,
		},
	}
}
