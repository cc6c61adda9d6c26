// Package modem provides BPSK modulation and hard-decision demodulation.
package modem

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// ModulatorInput defines the arguments for bpsk_modulator.
type ModulatorInput struct {
	Size int `arg:"size"`
}

// DemodulatorInput defines the arguments for bpsk_demodulator. InputType
// selects the element type of "in", so the demodulator can follow either the
// channel or a quantizer.
type DemodulatorInput struct {
	Size      int    `arg:"size"`
	InputType string `arg:"input_type,optional"`
}

// BuildModulator creates a module with task "modulate" mapping int32 bits on
// "in" to float32 symbols on "out": 0 to +1, 1 to -1.
func BuildModulator(_ context.Context, name string, in any) (*module.Module, error) {
	input := in.(*ModulatorInput)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}

	m := module.New(name)
	t := m.CreateTask("modulate")
	src := t.CreateInput("in", module.Int32, input.Size)
	dst := t.CreateOutput("out", module.Float32, input.Size)
	t.SetCodelet(func(*module.Task) (int, error) {
		out := module.Data[float32](dst)
		for i, b := range module.Data[int32](src) {
			out[i] = 1 - 2*float32(b&1)
		}
		return 0, nil
	})
	return m, nil
}

// BuildDemodulator creates a module with task "demodulate" taking a hard
// decision on every sample of "in": negative values give bit 1.
func BuildDemodulator(_ context.Context, name string, in any) (*module.Module, error) {
	input := in.(*DemodulatorInput)
	if input.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	}
	dtype, err := module.ParseDataType(input.InputType)
	if err != nil {
		return nil, err
	}

	m := module.New(name)
	t := m.CreateTask("demodulate")
	src := t.CreateInput("in", dtype, input.Size)
	dst := t.CreateOutput("out", module.Int32, input.Size)

	var decide func(out []int32)
	switch dtype {
	case module.Int8:
		decide = func(out []int32) { hardDecision(module.Data[int8](src), out) }
	case module.Int16:
		decide = func(out []int32) { hardDecision(module.Data[int16](src), out) }
	case module.Int32:
		decide = func(out []int32) { hardDecision(module.Data[int32](src), out) }
	case module.Int64:
		decide = func(out []int32) { hardDecision(module.Data[int64](src), out) }
	case module.Float32:
		decide = func(out []int32) { hardDecision(module.Data[float32](src), out) }
	case module.Float64:
		decide = func(out []int32) { hardDecision(module.Data[float64](src), out) }
	}
	t.SetCodelet(func(*module.Task) (int, error) {
		decide(module.Data[int32](dst))
		return 0, nil
	})
	return m, nil
}

func hardDecision[T module.Element](in []T, out []int32) {
	for i, v := range in {
		if v < 0 {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
}

// Register registers both units with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("bpsk_modulator", &registry.RegisteredUnit{
		NewInput:  func() any { return new(ModulatorInput) },
		InputType: reflect.TypeOf(ModulatorInput{}),
		Build:     BuildModulator,
	})
	r.RegisterUnit("bpsk_demodulator", &registry.RegisteredUnit{
		NewInput:  func() any { return &DemodulatorInput{InputType: "float32"} },
		InputType: reflect.TypeOf(DemodulatorInput{}),
		Build:     BuildDemodulator,
	})
}
