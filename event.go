package mailsignal

import "fmt"

// EventKind identifies the lifecycle moment at which a definition is
// evaluated.
type EventKind int

const (
	// BeforeSave fires before an object is created or updated.
	BeforeSave EventKind = iota

	// AfterSave fires after an object was created or updated.
	AfterSave

	// BeforeDelete fires before an object is deleted.
	BeforeDelete

	// AfterDelete fires after an object was deleted.
	AfterDelete
)

func (k EventKind) String() string {
	switch k {
	case BeforeSave:
		return "before_save"
	case AfterSave:
		return "after_save"
	case BeforeDelete:
		return "before_delete"
	case AfterDelete:
		return "after_delete"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ParseEventKind converts the stored string form of an event kind.
// The pre_/post_ spellings are accepted as aliases for compatibility with
// configuration written for signal frameworks that use those names.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "before_save", "pre_save":
		return BeforeSave, nil
	case "after_save", "post_save":
		return AfterSave, nil
	case "before_delete", "pre_delete":
		return BeforeDelete, nil
	case "after_delete", "post_delete":
		return AfterDelete, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}
