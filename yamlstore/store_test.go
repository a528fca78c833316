package yamlstore_test

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/ezachrisen/mailsignal"
	"github.com/ezachrisen/mailsignal/yamlstore"
)

const doc = `
definitions:
  - id: big_order
    object_type: Order
    event: after_save
    constraints:
      - param_1: status
        param_2: active
        comparison: equals
      - param_1: total
        param_2: "1000"
        comparison: gt
    email:
      subject: "Big order received"
      plain_body: "Order total exceeded the threshold."
      from: "orders@example.com"
      recipients: ["sales@example.com", "ops@example.com"]
      recipients_opt: contact
      template: big_order

  - id: order_deleted
    object_type: Order
    event: post_delete
    constraints:
      - param_1: status
        comparison: not_nil
    email:
      subject: "Order removed"
      from: "orders@example.com"
      recipients: ["ops@example.com"]
`

func TestLoad(t *testing.T) {
	is := is.New(t)

	defs, err := yamlstore.Load(strings.NewReader(doc))
	is.NoErr(err)
	is.Equal(len(defs), 2)

	first := defs[0]
	is.Equal(first.ID, "big_order")
	is.Equal(first.ObjectType, "Order")
	is.Equal(first.Event, mailsignal.AfterSave)
	is.Equal(first.Subject, "Big order received")
	is.Equal(first.From, "orders@example.com")
	is.Equal(first.Recipients, []string{"sales@example.com", "ops@example.com"})
	is.Equal(first.RecipientsOpt, "contact")
	is.Equal(first.Template, "big_order")

	is.Equal(len(first.Constraints), 2)
	is.Equal(first.Constraints[0].Param1, "status")
	is.Equal(*first.Constraints[0].Param2, "active")
	is.Equal(first.Constraints[1].Comparison, "gt")

	second := defs[1]
	is.Equal(second.Event, mailsignal.AfterDelete) // legacy spelling accepted
	is.True(second.Constraints[0].Param2 == nil)   // omitted param_2 stays unset

	// Loaded definitions validate against the default registry.
	_, err = mailsignal.NewCatalog(nil, defs...)
	is.NoErr(err)
}

func TestLoadBadEvent(t *testing.T) {
	is := is.New(t)

	_, err := yamlstore.Load(strings.NewReader(`
definitions:
  - id: x
    object_type: Order
    event: on_save
`))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "on_save"))
}

func TestLoadBadYAML(t *testing.T) {
	is := is.New(t)

	_, err := yamlstore.Load(strings.NewReader("definitions: [whoops"))
	is.True(err != nil)
}
