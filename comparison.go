package mailsignal

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

// CompareFunc is a binary predicate over two resolved operands.
// Implementations must return an IncompatibleOperandsError when the operand
// types cannot be compared; they must never panic.
type CompareFunc func(a, b any) (bool, error)

// Registry maps comparison names to predicates. A registry is immutable
// after construction and safe for concurrent use.
type Registry struct {
	comparisons map[string]CompareFunc
}

// DefaultRegistry returns a registry holding the built-in comparisons:
// equals, not_equals, gt, gte, lt, lte, contains, not_contains, in,
// not_in, is_nil and not_nil.
func DefaultRegistry() *Registry {
	return NewRegistry(nil)
}

// NewRegistry builds a registry with the built-in comparisons plus any
// extras. An extra with the same name as a built-in replaces it.
func NewRegistry(extra map[string]CompareFunc) *Registry {
	m := builtinComparisons()
	for name, fn := range extra {
		m[name] = fn
	}
	return &Registry{comparisons: m}
}

// Lookup returns the predicate registered under the name.
func (r *Registry) Lookup(name string) (CompareFunc, error) {
	fn, ok := r.comparisons[name]
	if !ok {
		return nil, &UnknownComparisonError{Name: name}
	}
	return fn, nil
}

// Names returns the registered comparison names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.comparisons))
	for name := range r.comparisons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtinComparisons() map[string]CompareFunc {
	return map[string]CompareFunc{
		"equals":       equals,
		"not_equals":   negate(equals),
		"gt":           ordering("gt", func(c int) bool { return c > 0 }),
		"gte":          ordering("gte", func(c int) bool { return c >= 0 }),
		"lt":           ordering("lt", func(c int) bool { return c < 0 }),
		"lte":          ordering("lte", func(c int) bool { return c <= 0 }),
		"contains":     containment("contains", false),
		"not_contains": negate(containment("not_contains", false)),
		"in":           containment("in", true),
		"not_in":       negate(containment("not_in", true)),
		"is_nil":       isNil,
		"not_nil":      negate(isNil),
	}
}

func negate(fn CompareFunc) CompareFunc {
	return func(a, b any) (bool, error) {
		ok, err := fn(a, b)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

func equals(a, b any) (bool, error) {
	return looseEqual(a, b), nil
}

func isNil(a, _ any) (bool, error) {
	return a == nil, nil
}

// ordering builds a predicate from the sign of comparing a to b.
// Numbers compare across numeric types; strings and timestamps compare
// with their own kind only.
func ordering(name string, accept func(c int) bool) CompareFunc {
	return func(a, b any) (bool, error) {
		c, ok := compareOrder(a, b)
		if !ok {
			return false, &IncompatibleOperandsError{Comparison: name, A: a, B: b}
		}
		return accept(c), nil
	}
}

func compareOrder(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	return 0, false
}

// containment builds a predicate answering "does a contain b?".
// Strings contain substrings, slices and arrays contain elements, maps
// contain keys. With flipped set, the operands swap roles, giving the
// set-membership reading "a is in b".
func containment(name string, flipped bool) CompareFunc {
	return func(a, b any) (bool, error) {
		origA, origB := a, b
		if flipped {
			a, b = b, a
		}
		if s, ok := a.(string); ok {
			sub, ok := b.(string)
			if !ok {
				return false, &IncompatibleOperandsError{Comparison: name, A: origA, B: origB}
			}
			return strings.Contains(s, sub), nil
		}
		if a == nil {
			return false, &IncompatibleOperandsError{Comparison: name, A: origA, B: origB}
		}
		rv := reflect.ValueOf(a)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if looseEqual(rv.Index(i).Interface(), b) {
					return true, nil
				}
			}
			return false, nil
		case reflect.Map:
			for _, k := range rv.MapKeys() {
				if looseEqual(k.Interface(), b) {
					return true, nil
				}
			}
			return false, nil
		}
		return false, &IncompatibleOperandsError{Comparison: name, A: origA, B: origB}
	}
}

// looseEqual compares numbers across numeric types, everything else with
// deep equality.
func looseEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
