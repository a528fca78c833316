package mailsignal

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// A Constraint is one comparison that must hold before a definition's
// email is sent.
type Constraint struct {
	// Param1 names the subject of the comparison: a payload key or an
	// object field. (required)
	Param1 string `json:"param_1" yaml:"param_1"`

	// Param2 names the value the subject is compared against: a payload
	// key, an object field, or an inline literal such as "active" or
	// "100". Nil means "compare against nothing"; the predicate receives
	// a nil second operand.
	Param2 *string `json:"param_2,omitempty" yaml:"param_2"`

	// Comparison names a predicate in the registry. (required)
	Comparison string `json:"comparison" yaml:"comparison"`
}

// A Definition binds an object type and a lifecycle event to a set of
// constraints and the email to send when all of them hold.
//
// Definitions are read-only at evaluation time. Constraints are evaluated
// in declaration order, and the first failing constraint stops the
// evaluation, so order matters when several constraints could fail
// independently.
type Definition struct {
	// A definition identifier. (required)
	ID string `json:"id"`

	// The name of the object type this definition watches. (required)
	ObjectType string `json:"object_type"`

	// The lifecycle event this definition watches.
	Event EventKind `json:"event"`

	// The constraints that must all pass before the email is sent.
	// A definition with no constraints always passes.
	Constraints []Constraint `json:"constraints,omitempty"`

	// Email configuration. Subject, PlainBody and HTMLBody may contain
	// template markup; rendering is the mailer's concern.
	Subject   string `json:"subject,omitempty"`
	PlainBody string `json:"plain_body,omitempty"`
	HTMLBody  string `json:"html_body,omitempty"`

	// The sender address. If empty, the mailer's default is used.
	From string `json:"from,omitempty"`

	// Statically configured recipients. The object may contribute more
	// through the RecipientLister interface.
	Recipients []string `json:"recipients,omitempty"`

	// RecipientsOpt is passed to the object's SignalRecipients hook.
	RecipientsOpt string `json:"recipients_opt,omitempty"`

	// Template identifies a mailer-side template to render instead of
	// PlainBody. Optional.
	Template string `json:"template,omitempty"`

	// A reference to any object. Not used by the dispatcher.
	Meta any `json:"-"`
}

// Validate checks that the definition is complete and that every
// comparison name is registered. Catalogs call this at load time so that
// configuration errors surface before the first event arrives.
func (d *Definition) Validate(reg *Registry) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("definition requires an ID")
	}
	if strings.TrimSpace(d.ObjectType) == "" {
		return fmt.Errorf("definition %s: object type is required", d.ID)
	}
	if d.Event < BeforeSave || d.Event > AfterDelete {
		return fmt.Errorf("definition %s: invalid event kind %d", d.ID, int(d.Event))
	}
	for i, c := range d.Constraints {
		if strings.TrimSpace(c.Param1) == "" {
			return fmt.Errorf("definition %s: constraint %d: param_1 is required", d.ID, i)
		}
		if _, err := reg.Lookup(c.Comparison); err != nil {
			return fmt.Errorf("definition %s: constraint %d: %w", d.ID, i, err)
		}
	}
	return nil
}

// String renders the definition and its constraints as a table.
func (d *Definition) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nSIGNAL DEFINITION\n")
	tw.AppendHeader(table.Row{"\nDefinition", "Object\nType", "\nEvent", "\nParam 1", "\nComparison", "\nParam 2"})

	if len(d.Constraints) == 0 {
		tw.AppendRow(table.Row{d.ID, d.ObjectType, d.Event.String(), "", "(none)", ""})
	}
	for i, c := range d.Constraints {
		var id, obj, ev string
		if i == 0 {
			id, obj, ev = d.ID, d.ObjectType, d.Event.String()
		}
		p2 := ""
		if c.Param2 != nil {
			p2 = *c.Param2
		}
		tw.AppendRow(table.Row{id, obj, ev, c.Param1, c.Comparison, p2})
	}

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}
