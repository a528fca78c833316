package mailsignal

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// Catalog holds an immutable snapshot of signal definitions, indexed by
// object type and event kind. Replace swaps in a fully validated new
// snapshot atomically, so readers are never blocked and never observe a
// partially loaded configuration.
type Catalog struct {
	registry *Registry
	snap     atomic.Pointer[catalogSnapshot]
}

type catalogSnapshot struct {
	defs  []*Definition
	byKey map[catalogKey][]*Definition
}

type catalogKey struct {
	objectType string
	event      EventKind
}

// NewCatalog validates the definitions against the registry and builds the
// initial snapshot. Unknown comparison names fail here, not at event time.
// A nil registry means the default registry.
func NewCatalog(registry *Registry, defs ...*Definition) (*Catalog, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	c := &Catalog{registry: registry}
	snap, err := buildSnapshot(registry, defs)
	if err != nil {
		return nil, err
	}
	c.snap.Store(snap)
	return c, nil
}

func buildSnapshot(reg *Registry, defs []*Definition) (*catalogSnapshot, error) {
	s := &catalogSnapshot{
		defs:  slices.Clone(defs),
		byKey: make(map[catalogKey][]*Definition, len(defs)),
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d == nil {
			return nil, fmt.Errorf("nil definition in catalog")
		}
		if err := d.Validate(reg); err != nil {
			return nil, err
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate definition ID %s", d.ID)
		}
		seen[d.ID] = true
		k := catalogKey{objectType: d.ObjectType, event: d.Event}
		s.byKey[k] = append(s.byKey[k], d)
	}
	return s, nil
}

// Replace validates the definitions and atomically swaps them in as the
// new snapshot. On error the previous snapshot stays in effect.
func (c *Catalog) Replace(defs []*Definition) error {
	snap, err := buildSnapshot(c.registry, defs)
	if err != nil {
		return err
	}
	c.snap.Store(snap)
	return nil
}

// Match returns the definitions watching the object type and event kind,
// in declaration order. The returned slice must not be modified.
func (c *Catalog) Match(objectType string, kind EventKind) []*Definition {
	return c.snap.Load().byKey[catalogKey{objectType: objectType, event: kind}]
}

// Definitions returns all definitions in the current snapshot, in
// declaration order.
func (c *Catalog) Definitions() []*Definition {
	return slices.Clone(c.snap.Load().defs)
}

// DefinitionCount is the number of definitions in the current snapshot.
func (c *Catalog) DefinitionCount() int {
	return len(c.snap.Load().defs)
}

// Registry returns the comparison registry the catalog validates against.
func (c *Catalog) Registry() *Registry {
	return c.registry
}
