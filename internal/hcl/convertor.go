package hcl

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// TagName is the struct tag read by DecodeArguments, e.g. `arg:"seed,optional"`.
const TagName = "arg"

var (
	ErrMissingArgument = errors.New("missing required argument")
	ErrUnknownArgument = errors.New("unsupported argument")
)

// Converter is the cty-based implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Field describes one tagged field of an argument struct.
type Field struct {
	Name     string
	Optional bool
	Index    int
}

// Fields lists the tagged fields of the struct type t.
func Fields(t reflect.Type) []Field {
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(TagName)
		if tag == "" || tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		field := Field{Name: parts[0], Index: i}
		for _, opt := range parts[1:] {
			if opt == "optional" {
				field.Optional = true
			}
		}
		out = append(out, field)
	}
	return out
}

// DecodeArguments populates the struct behind target from args. Fields left
// out of args keep their current value when tagged optional, so callers set
// defaults before decoding.
func (c *Converter) DecodeArguments(ctx context.Context, args map[string]cty.Value, target any) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting argument decoding.", "count", len(args))

	structVal := reflect.ValueOf(target)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}
	structVal = structVal.Elem()

	known := make(map[string]struct{})
	for _, f := range Fields(structVal.Type()) {
		known[f.Name] = struct{}{}
		val, ok := args[f.Name]
		if !ok || val.IsNull() {
			if !f.Optional {
				return fmt.Errorf("%w %q", ErrMissingArgument, f.Name)
			}
			continue
		}
		if err := c.decode(ctx, val, structVal.Field(f.Index).Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", f.Name, err)
		}
	}

	var unknown []string
	for name := range args {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownArgument, strings.Join(unknown, ", "))
	}

	logger.Debug("Finished argument decoding successfully.")
	return nil
}

// decode handles the conversion and decoding of a cty.Value into a Go pointer.
func (c *Converter) decode(ctx context.Context, val cty.Value, goVal any) error {
	logger := ctxlog.FromContext(ctx)
	valPtr := reflect.ValueOf(goVal)

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.", "go_type", valPtr.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, goVal)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	if !val.Type().Equals(convertedVal.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", convertedVal.Type().FriendlyName(),
		)
	}

	return gocty.FromCtyValue(convertedVal, goVal)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
