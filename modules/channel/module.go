// Package channel provides the awgn_channel unit.
package channel

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for awgn_channel.
type Input struct {
	Size  int     `arg:"size"`
	Sigma float64 `arg:"sigma"`
	Seed  int64   `arg:"seed,optional"`
}

// Build creates a module with task "add_noise" that adds zero-mean Gaussian
// noise of standard deviation Sigma to the float32 samples of "in" and writes
// them to "out". The noise generator is reseeded through Module.Seed.
func Build(_ context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}
	if input.Sigma < 0 {
		return nil, fmt.Errorf("sigma must not be negative, got %g", input.Sigma)
	}

	m := module.New(name)
	t := m.CreateTask("add_noise")
	src := t.CreateInput("in", module.Float32, input.Size)
	dst := t.CreateOutput("out", module.Float32, input.Size)

	rng := rand.New(rand.NewPCG(uint64(input.Seed), 0))
	sigma := input.Sigma
	t.SetCodelet(func(*module.Task) (int, error) {
		out := module.Data[float32](dst)
		for i, x := range module.Data[float32](src) {
			out[i] = x + float32(sigma*rng.NormFloat64())
		}
		return 0, nil
	})
	m.OnSeed(func(seed uint64) { rng = rand.New(rand.NewPCG(seed, 0)) })
	return m, nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("awgn_channel", &registry.RegisteredUnit{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
