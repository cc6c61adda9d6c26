// Package quantizer provides a saturating fixed-point quantizer unit.
package quantizer

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for the quantizer unit. Bits is the total code
// width including the sign, Fractional the number of bits after the point.
type Input struct {
	Size       int `arg:"size"`
	Bits       int `arg:"bits,optional"`
	Fractional int `arg:"fractional,optional"`
}

// Quantize maps x to round(x * 2^fractional), saturated to the symmetric
// range [-(2^(bits-1)-1), 2^(bits-1)-1].
func Quantize(x float32, bits, fractional int) int32 {
	limit := float64(int32(1)<<(bits-1) - 1)
	v := math.Round(float64(x) * math.Ldexp(1, fractional))
	return int32(math.Max(-limit, math.Min(limit, v)))
}

// Build creates a module with task "process" quantizing the float32 samples
// of "in" into "out", int8 for codes up to 8 bits and int16 above.
func Build(_ context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	switch {
	case input.Size <= 0:
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	case input.Bits < 2 || input.Bits > 16:
		return nil, fmt.Errorf("bits must be in [2, 16], got %d", input.Bits)
	case input.Fractional < 0 || input.Fractional >= input.Bits:
		return nil, fmt.Errorf("fractional must be in [0, bits), got %d", input.Fractional)
	}

	m := module.New(name)
	t := m.CreateTask("process")
	src := t.CreateInput("in", module.Float32, input.Size)
	bits, frac := input.Bits, input.Fractional

	if bits <= 8 {
		dst := t.CreateOutput("out", module.Int8, input.Size)
		t.SetCodelet(func(*module.Task) (int, error) {
			out := module.Data[int8](dst)
			for i, x := range module.Data[float32](src) {
				out[i] = int8(Quantize(x, bits, frac))
			}
			return 0, nil
		})
		return m, nil
	}

	dst := t.CreateOutput("out", module.Int16, input.Size)
	t.SetCodelet(func(*module.Task) (int, error) {
		out := module.Data[int16](dst)
		for i, x := range module.Data[float32](src) {
			out[i] = int16(Quantize(x, bits, frac))
		}
		return 0, nil
	})
	return m, nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("quantizer", &registry.RegisteredUnit{
		NewInput:  func() any { return &Input{Bits: 6, Fractional: 2} },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
