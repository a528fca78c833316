package mailsignal

import (
	"fmt"
	"strings"

	"github.com/Delta456/box-cli-maker/v2"
	"github.com/alexeyco/simpletable"
)

// Trace records the constraint evaluations performed by a Checker.
// Rows appear in evaluation order; a row exists only for constraints that
// were actually evaluated, so a short-circuited evaluation has fewer rows
// than the definition has constraints.
type Trace struct {
	Rows []TraceRow
}

// TraceRow describes one evaluated constraint.
type TraceRow struct {
	Param1     string
	Param2     string // raw parameter; empty when unset
	Comparison string
	A          any
	B          any
	ASource    ValueSource
	BSource    ValueSource
	Pass       bool
}

// AsString renders a boxed report of the evaluation. The definition and
// payload are optional; pass them to include the definition identity and
// an input data table in the report.
func (t *Trace) AsString(d *Definition, payload map[string]any) string {
	Box := box.New(box.Config{Px: 2, Py: 1, Type: "Double", Color: "Cyan", TitlePos: "Top", ContentAlign: "Left"})

	s := strings.Builder{}
	if d != nil {
		s.WriteString("Definition:\n")
		s.WriteString("-----------\n")
		s.WriteString(d.ID)
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%s on %s\n\n", d.Event, d.ObjectType))
	}

	s.WriteString("Constraints Evaluated:\n")
	s.WriteString("----------------------\n")
	s.WriteString(t.constraintTable().String())

	if payload != nil {
		s.WriteString("\n\n")
		s.WriteString("Event Payload:\n")
		s.WriteString("--------------\n")
		s.WriteString(payloadTable(payload).String())
	}
	return Box.String("SIGNAL EVALUATION REPORT", s.String())
}

func (t *Trace) constraintTable() *simpletable.Table {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Param 1"},
			{Align: simpletable.AlignCenter, Text: "Value"},
			{Align: simpletable.AlignCenter, Text: "Source"},
			{Align: simpletable.AlignCenter, Text: "Comparison"},
			{Align: simpletable.AlignCenter, Text: "Param 2"},
			{Align: simpletable.AlignCenter, Text: "Value"},
			{Align: simpletable.AlignCenter, Text: "Source"},
			{Align: simpletable.AlignCenter, Text: "Result"},
		},
	}

	for _, row := range t.Rows {
		r := []*simpletable.Cell{
			{Text: row.Param1},
			{Text: fmt.Sprintf("%v", row.A)},
			{Text: row.ASource.String()},
			{Text: row.Comparison},
			{Text: row.Param2},
			{Text: fmt.Sprintf("%v", row.B)},
			{Text: row.BSource.String()},
			{Text: passFail(row.Pass)},
		}
		table.Body.Cells = append(table.Body.Cells, r)
	}

	table.SetStyle(simpletable.StyleUnicode)
	return table
}

func payloadTable(payload map[string]any) *simpletable.Table {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Key"},
			{Align: simpletable.AlignCenter, Text: "Value"},
		},
	}

	for k, v := range payload {
		r := []*simpletable.Cell{
			{Text: k},
			{Text: fmt.Sprintf("%v", v)},
		}
		table.Body.Cells = append(table.Body.Cells, r)
	}

	table.SetStyle(simpletable.StyleUnicode)
	return table
}

func passFail(b bool) string {
	switch b {
	case true:
		return "PASS"
	default:
		return "FAIL"
	}
}
