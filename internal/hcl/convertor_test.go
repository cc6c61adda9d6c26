package hcl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

type sampleArgs struct {
	Size   int       `arg:"size"`
	Sigma  float64   `arg:"sigma,optional"`
	Label  string    `arg:"label,optional"`
	Taps   []float64 `arg:"taps,optional"`
	hidden int
}

func TestConverter_DecodeArguments(t *testing.T) {
	ctx, _ := testutil.Context(t)
	c := NewConverter()

	t.Run("decodes and converts", func(t *testing.T) {
		// --- Arrange ---
		args := map[string]cty.Value{
			"size":  cty.StringVal("16"),
			"sigma": cty.NumberFloatVal(0.5),
			"taps":  cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberFloatVal(0.25)}),
		}
		out := sampleArgs{Label: "default"}

		// --- Act ---
		err := c.DecodeArguments(ctx, args, &out)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, 16, out.Size)
		assert.Equal(t, 0.5, out.Sigma)
		assert.Equal(t, "default", out.Label, "omitted optional keeps its preset value")
		assert.Equal(t, []float64{1, 0.25}, out.Taps)
	})

	t.Run("missing required", func(t *testing.T) {
		err := c.DecodeArguments(ctx, map[string]cty.Value{}, &sampleArgs{})
		require.ErrorIs(t, err, ErrMissingArgument)
		assert.Contains(t, err.Error(), `"size"`)
	})

	t.Run("unknown argument", func(t *testing.T) {
		args := map[string]cty.Value{"size": cty.NumberIntVal(1), "sigm": cty.NumberIntVal(1)}
		err := c.DecodeArguments(ctx, args, &sampleArgs{})
		require.ErrorIs(t, err, ErrUnknownArgument)
		assert.Contains(t, err.Error(), "sigm")
	})

	t.Run("type mismatch", func(t *testing.T) {
		args := map[string]cty.Value{"size": cty.StringVal("big")}
		err := c.DecodeArguments(ctx, args, &sampleArgs{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode argument 'size'")
	})

	t.Run("target must be a struct pointer", func(t *testing.T) {
		err := c.DecodeArguments(ctx, nil, sampleArgs{})
		require.Error(t, err)
	})
}

func TestConverter_ToCtyValue(t *testing.T) {
	c := NewConverter()

	v, err := c.ToCtyValue(3)
	require.NoError(t, err)
	assert.True(t, v.Equals(cty.NumberIntVal(3)).True())

	v, err = c.ToCtyValue(nil)
	require.NoError(t, err)
	assert.Equal(t, cty.NilVal, v)
}
