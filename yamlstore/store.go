// Package yamlstore loads signal definitions from YAML documents.
//
// Document shape:
//
//	definitions:
//	  - id: big_order
//	    object_type: Order
//	    event: after_save
//	    constraints:
//	      - param_1: status
//	        param_2: active
//	        comparison: equals
//	    email:
//	      subject: "Big order received"
//	      from: "orders@example.com"
//	      recipients: ["sales@example.com"]
package yamlstore

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezachrisen/mailsignal"
)

type file struct {
	Definitions []definition `yaml:"definitions"`
}

type definition struct {
	ID          string       `yaml:"id"`
	ObjectType  string       `yaml:"object_type"`
	Event       string       `yaml:"event"`
	Constraints []constraint `yaml:"constraints"`
	Email       email        `yaml:"email"`
}

type constraint struct {
	Param1     string  `yaml:"param_1"`
	Param2     *string `yaml:"param_2"`
	Comparison string  `yaml:"comparison"`
}

type email struct {
	Subject       string   `yaml:"subject"`
	PlainBody     string   `yaml:"plain_body"`
	HTMLBody      string   `yaml:"html_body"`
	From          string   `yaml:"from"`
	Recipients    []string `yaml:"recipients"`
	RecipientsOpt string   `yaml:"recipients_opt"`
	Template      string   `yaml:"template"`
}

// Load decodes signal definitions from the reader. Definitions and their
// constraints keep the order they appear in the document.
func Load(r io.Reader) ([]*mailsignal.Definition, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding definitions: %w", err)
	}

	defs := make([]*mailsignal.Definition, 0, len(f.Definitions))
	for _, yd := range f.Definitions {
		kind, err := mailsignal.ParseEventKind(yd.Event)
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", yd.ID, err)
		}
		d := &mailsignal.Definition{
			ID:            yd.ID,
			ObjectType:    yd.ObjectType,
			Event:         kind,
			Subject:       yd.Email.Subject,
			PlainBody:     yd.Email.PlainBody,
			HTMLBody:      yd.Email.HTMLBody,
			From:          yd.Email.From,
			Recipients:    yd.Email.Recipients,
			RecipientsOpt: yd.Email.RecipientsOpt,
			Template:      yd.Email.Template,
		}
		for _, yc := range yd.Constraints {
			d.Constraints = append(d.Constraints, mailsignal.Constraint{
				Param1:     yc.Param1,
				Param2:     yc.Param2,
				Comparison: yc.Comparison,
			})
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// LoadFile reads definitions from the file at path.
func LoadFile(path string) ([]*mailsignal.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
