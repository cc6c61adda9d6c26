// Package throttle provides a pass-through unit that paces frames with a
// token bucket.
package throttle

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/registry"
	"golang.org/x/time/rate"
)

// Module implements the registry.Unit interface for this package.
type Module struct{}

// Input defines the arguments for the throttle unit. Rate is in frames per
// second; 0 disables pacing.
type Input struct {
	Size     int     `arg:"size"`
	DataType string  `arg:"dtype,optional"`
	Rate     float64 `arg:"rate"`
	Burst    int     `arg:"burst,optional"`
}

// Build creates a module with task "wait" whose in-place socket "data" is
// released no faster than Rate frames per second. Each replica paces itself
// independently. Once ctx is done the task stops waiting and lets frames
// through so the chain can observe the cancellation.
func Build(ctx context.Context, name string, in any) (*module.Module, error) {
	input := in.(*Input)
	switch {
	case input.Size <= 0:
		return nil, fmt.Errorf("size must be positive, got %d", input.Size)
	case input.Rate < 0:
		return nil, fmt.Errorf("rate must not be negative, got %g", input.Rate)
	case input.Burst < 1:
		return nil, fmt.Errorf("burst must be at least 1, got %d", input.Burst)
	}
	dtype, err := module.ParseDataType(input.DataType)
	if err != nil {
		return nil, err
	}

	limit := rate.Limit(input.Rate)
	if input.Rate == 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, input.Burst)

	m := module.New(name)
	t := m.CreateTask("wait")
	t.CreateInOut("data", dtype, input.Size)
	t.SetCodelet(func(*module.Task) (int, error) {
		if err := limiter.Wait(ctx); err != nil && ctx.Err() == nil {
			return 0, err
		}
		return 0, nil
	})
	m.OnReset(func() { limiter = rate.NewLimiter(limit, input.Burst) })
	return m, nil
}

// Register registers the unit with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterUnit("throttle", &registry.RegisteredUnit{
		NewInput:  func() any { return &Input{DataType: "int32", Burst: 1} },
		InputType: reflect.TypeOf(Input{}),
		Build:     Build,
	})
}
