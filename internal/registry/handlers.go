package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/sigchain/internal/module"
)

// BuildFunc constructs a fresh module instance named name from a decoded
// argument struct. It is called once per configured instance and once more
// for every thread replica, so it must not share mutable state between calls.
type BuildFunc func(ctx context.Context, name string, input any) (*module.Module, error)

// RegisteredUnit holds the compiled Go parts of a processing unit.
type RegisteredUnit struct {
	// NewInput returns a pointer to the unit's argument struct, pre-filled
	// with defaults. Nil for units without arguments.
	NewInput  func() any
	InputType reflect.Type
	Build     BuildFunc
}

// RegisterUnit registers the constructor for a unit type.
func (r *Registry) RegisterUnit(typ string, unit *RegisteredUnit) {
	if _, exists := r.units[typ]; exists {
		panic(fmt.Sprintf("unit with type '%s' already registered", typ))
	}
	if unit.Build == nil {
		panic(fmt.Sprintf("unit with type '%s' has no Build function", typ))
	}
	slog.Debug("Registering unit.", "type", typ)
	r.units[typ] = unit
}
