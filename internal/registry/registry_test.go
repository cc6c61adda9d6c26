package registry

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/testutil"
)

type goodInput struct {
	Size  int     `arg:"size"`
	Sigma float64 `arg:"sigma,optional"`
}

type badInput struct {
	Hook func() `arg:"hook"`
}

func build(_ context.Context, name string, _ any) (*module.Module, error) {
	return module.New(name), nil
}

func TestRegisterUnit(t *testing.T) {
	r := New()
	r.RegisterUnit("b", &RegisteredUnit{Build: build})
	r.RegisterUnit("a", &RegisteredUnit{Build: build})

	_, ok := r.Lookup("a")
	assert.True(t, ok)
	_, ok = r.Lookup("zz")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.Types())

	assert.Panics(t, func() { r.RegisterUnit("a", &RegisteredUnit{Build: build}) })
	assert.Panics(t, func() { r.RegisterUnit("c", &RegisteredUnit{}) })
}

func TestValidate(t *testing.T) {
	ctx, _ := testutil.Context(t)

	t.Run("valid units", func(t *testing.T) {
		r := New()
		r.RegisterUnit("good", &RegisteredUnit{
			NewInput:  func() any { return &goodInput{Size: 8} },
			InputType: reflect.TypeOf(goodInput{}),
			Build:     build,
		})
		r.RegisterUnit("bare", &RegisteredUnit{Build: build})

		require.NoError(t, r.Validate(ctx))
	})

	testCases := []struct {
		name    string
		unit    *RegisteredUnit
		message string
	}{
		{
			name:    "field without cty equivalent",
			unit:    &RegisteredUnit{NewInput: func() any { return new(badInput) }, InputType: reflect.TypeOf(badInput{}), Build: build},
			message: "argument 'hook'",
		},
		{
			name:    "NewInput disagrees with InputType",
			unit:    &RegisteredUnit{NewInput: func() any { return new(badInput) }, InputType: reflect.TypeOf(goodInput{}), Build: build},
			message: "NewInput returns",
		},
		{
			name:    "NewInput without InputType",
			unit:    &RegisteredUnit{NewInput: func() any { return new(goodInput) }, Build: build},
			message: "InputType is nil",
		},
		{
			name:    "non-struct input",
			unit:    &RegisteredUnit{NewInput: func() any { return new(int) }, InputType: reflect.TypeOf(0), Build: build},
			message: "is not a struct",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := New()
			r.RegisterUnit("unit", tc.unit)

			err := r.Validate(ctx)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}
