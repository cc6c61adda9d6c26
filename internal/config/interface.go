package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds evaluated module arguments to the Go structs declared by
// processing units.
type Converter interface {
	// DecodeArguments populates target, a pointer to a struct, from args.
	// Fields are matched through their `arg` struct tag.
	DecodeArguments(ctx context.Context, args map[string]cty.Value, target any) error

	// ToCtyValue converts a native Go value into its cty.Value equivalent.
	ToCtyValue(v any) (cty.Value, error)
}
