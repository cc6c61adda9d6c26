// Package iterate exposes the engine's loop module as the counter_loop unit.
package iterate

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for counter_loop.
type Input struct {
	Size       int    `arg:"size"`
	DataType   string `arg:"dtype,optional"`
	Iterations int    `arg:"iterations"`
}

// Build creates a loop module whose "stop" task sends its data through the
// body Iterations times before taking the exit branch.
func Build(_ context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}
	if input.Iterations < 0 {
		return nil, fmt.Errorf("iterations must not be negative, got %d", input.Iterations)
	}
	dtype, err := module.ParseDataType(input.DataType)
	if err != nil {
		return nil, err
	}
	return module.NewCounterLoop(name, dtype, input.Size, input.Iterations), nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("counter_loop", &registry.RegisteredUnit{
		NewInput:  func() any { return &Input{DataType: "int32"} },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
