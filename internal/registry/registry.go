package registry

import (
	"sort"
)

// Unit is the interface that every processing unit package implements to be
// registered.
type Unit interface {
	Register(r *Registry)
}

// Registry holds the registered unit constructors for a single application
// instance.
type Registry struct {
	units map[string]*RegisteredUnit
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{units: make(map[string]*RegisteredUnit)}
}

// Lookup returns the unit registered under typ.
func (r *Registry) Lookup(typ string) (*RegisteredUnit, bool) {
	u, ok := r.units[typ]
	return u, ok
}

// Types lists the registered unit types in sorted order.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.units))
	for t := range r.units {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
