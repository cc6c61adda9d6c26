package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/hcl"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks that every registered unit's argument struct can be bound
// from configuration: NewInput and InputType agree, and every tagged field
// has a cty equivalent.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, typ := range r.Types() {
		unit := r.units[typ]

		if unit.InputType == nil {
			if unit.NewInput != nil {
				errs = append(errs, fmt.Sprintf("unit '%s': NewInput is set but InputType is nil", typ))
			}
			continue
		}
		if unit.InputType.Kind() != reflect.Struct {
			errs = append(errs, fmt.Sprintf("unit '%s': input type %s is not a struct", typ, unit.InputType))
			continue
		}
		if unit.NewInput == nil {
			errs = append(errs, fmt.Sprintf("unit '%s': InputType is set but NewInput is nil", typ))
			continue
		}
		if got := reflect.TypeOf(unit.NewInput()); got != reflect.PointerTo(unit.InputType) {
			errs = append(errs, fmt.Sprintf("unit '%s': NewInput returns %v, want *%s", typ, got, unit.InputType))
			continue
		}

		fields := hcl.Fields(unit.InputType)
		if len(fields) == 0 {
			logger.Warn("Unit declares an input struct without tagged fields.", "unit", typ)
		}
		for _, f := range fields {
			goField := unit.InputType.Field(f.Index)
			if _, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface()); err != nil {
				errs = append(errs, fmt.Sprintf("unit '%s', argument '%s': could not imply cty type from Go field type %s: %v", typ, f.Name, goField.Type, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
