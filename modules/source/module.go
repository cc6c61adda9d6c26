// Package source provides the lcg_source unit: a pseudo-random bit generator.
package source

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for the lcg_source unit.
type Input struct {
	Size int   `arg:"size"`
	Seed int64 `arg:"seed,optional"`
}

// LCG is the linear congruential generator behind lcg_source.
type LCG struct {
	state uint32
}

// NewLCG seeds a generator.
func NewLCG(seed uint32) *LCG { return &LCG{state: seed} }

// Next returns the next 15-bit value.
func (g *LCG) Next() uint32 {
	g.state = 214013*g.state + 2531011
	return (g.state >> 16) & 0x7FFF
}

// Seed restarts the sequence.
func (g *LCG) Seed(seed uint32) { g.state = seed }

// Build creates a module with task "generate" writing Size random bits
// (0 or 1) to its int32 output "out" on every call.
func Build(ctx context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}
	ctxlog.FromContext(ctx).Debug("Building lcg_source.", "name", name, "size", input.Size, "seed", input.Seed)

	m := module.New(name)
	t := m.CreateTask("generate")
	out := t.CreateOutput("out", module.Int32, input.Size)

	gen := NewLCG(uint32(input.Seed))
	t.SetCodelet(func(*module.Task) (int, error) {
		bits := module.Data[int32](out)
		for i := range bits {
			bits[i] = int32(gen.Next() & 0x1)
		}
		return 0, nil
	})
	m.OnSeed(func(seed uint64) { gen.Seed(uint32(seed)) })
	return m, nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("lcg_source", &registry.RegisteredUnit{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
