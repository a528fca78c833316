package mailsignal

import "fmt"

// ResolutionError indicates that a required operand could not be found in
// the event payload or the object's fields. It aborts evaluation of the
// definition it occurs in; it is not the same as a failed constraint.
type ResolutionError struct {
	// The symbolic parameter name that could not be resolved.
	Param string

	// Whether the parameter was the constraint's second operand.
	Second bool
}

func (e *ResolutionError) Error() string {
	which := "param_1"
	if e.Second {
		which = "param_2"
	}
	return fmt.Sprintf("%s %q not found in payload or in object fields", which, e.Param)
}

// UnknownComparisonError indicates that a constraint names a comparison
// that is not in the registry. This is a configuration error; catalogs
// report it at load time, checkers at evaluation time.
type UnknownComparisonError struct {
	Name string
}

func (e *UnknownComparisonError) Error() string {
	return fmt.Sprintf("unknown comparison %q", e.Name)
}

// IncompatibleOperandsError is returned by a comparison predicate when the
// operand types cannot be compared.
type IncompatibleOperandsError struct {
	Comparison string
	A          any
	B          any
}

func (e *IncompatibleOperandsError) Error() string {
	return fmt.Sprintf("comparison %q cannot compare %T and %T", e.Comparison, e.A, e.B)
}
