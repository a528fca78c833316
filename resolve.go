package mailsignal

import "strconv"

// ValueSource records where a resolved operand value came from.
type ValueSource int

const (
	// FromPayload means the operand value came from the event payload.
	FromPayload ValueSource = iota

	// FromField means the operand value was read from the object.
	FromField

	// FromLiteral means the operand name itself was parsed as a literal.
	FromLiteral

	// Unset means the operand was not given.
	Unset
)

func (s ValueSource) String() string {
	switch s {
	case FromPayload:
		return "payload"
	case FromField:
		return "field"
	case FromLiteral:
		return "literal"
	case Unset:
		return "unset"
	}
	return "unknown"
}

// resolveFirst resolves the subject operand of a constraint. A payload key
// takes precedence over an object field with the same name. The first
// operand always denotes a real payload key or field; if it is found in
// neither location the evaluation cannot proceed.
func resolveFirst(name string, object Object, payload map[string]any) (any, ValueSource, error) {
	if v, ok := payload[name]; ok {
		return v, FromPayload, nil
	}
	if object != nil {
		if v, ok := object.GetField(name); ok {
			return v, FromField, nil
		}
	}
	return nil, Unset, &ResolutionError{Param: name}
}

// resolveSecond resolves the comparison operand. A nil name means "compare
// against nothing" and yields nil without consulting the payload, the
// object or literal parsing. Unlike the first operand, a name that is
// neither a payload key nor a field falls back to being parsed as a
// literal, so definitions can compare against inline thresholds such as
// "active" or "100".
func resolveSecond(name *string, object Object, payload map[string]any) (any, ValueSource, error) {
	if name == nil {
		return nil, Unset, nil
	}
	if v, ok := payload[*name]; ok {
		return v, FromPayload, nil
	}
	if object != nil {
		if v, ok := object.GetField(*name); ok {
			return v, FromField, nil
		}
	}
	return parseLiteral(*name), FromLiteral, nil
}

// parseLiteral converts a constraint parameter to a primitive value:
// integer, float, boolean, or the string itself unchanged.
func parseLiteral(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
