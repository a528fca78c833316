package mailsignal

import "reflect"

// Object is implemented by types whose lifecycle events can raise signals.
// The resolver reads fields through GetField rather than reflecting over
// the concrete type, so an implementation is free to expose computed
// values, rename fields, or hide fields entirely.
type Object interface {
	// GetField returns the value of the named field and whether the
	// field exists.
	GetField(name string) (any, bool)
}

// TypeNamer lets an Object control the type name used to match it to
// definitions. Without it, the name of the Go type is used.
type TypeNamer interface {
	TypeName() string
}

// RecipientLister lets an Object contribute recipients at dispatch time,
// in addition to the recipients configured on the definition. The opt
// string is the definition's RecipientsOpt field, passed through untouched.
type RecipientLister interface {
	SignalRecipients(opt string) []string
}

// FieldMap is a map-backed Object, convenient for tests and for hosts
// whose records are already map-shaped.
type FieldMap map[string]any

func (f FieldMap) GetField(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// typeName returns the name used to match an object to definitions.
func typeName(o Object) string {
	if tn, ok := o.(TypeNamer); ok {
		return tn.TypeName()
	}
	t := reflect.TypeOf(o)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
