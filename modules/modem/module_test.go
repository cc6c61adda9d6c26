package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/testutil"
)

func TestModulateDemodulate_RoundTrip(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	mod, err := BuildModulator(ctx, "mod", &ModulatorInput{Size: 4})
	require.NoError(t, err)
	demod, err := BuildDemodulator(ctx, "demod", &DemodulatorInput{Size: 4, InputType: "float32"})
	require.NoError(t, err)

	bits := []int32{0, 1, 1, 0}
	require.NoError(t, mod.Task("modulate").Socket("in").SetBuffer(bits))
	require.NoError(t, demod.Task("demodulate").Socket("in").Bind(mod.Task("modulate").Socket("out")))

	// --- Act ---
	_, err = mod.Task("modulate").Execute()
	require.NoError(t, err)
	_, err = demod.Task("demodulate").Execute()
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, []float32{1, -1, -1, 1}, module.Data[float32](mod.Task("modulate").Socket("out")))
	assert.Equal(t, bits, module.Data[int32](demod.Task("demodulate").Socket("out")))
}

func TestDemodulator_QuantizedInput(t *testing.T) {
	ctx, _ := testutil.Context(t)
	demod, err := BuildDemodulator(ctx, "demod", &DemodulatorInput{Size: 3, InputType: "int8"})
	require.NoError(t, err)
	task := demod.Task("demodulate")
	require.NoError(t, task.Socket("in").SetBuffer([]int8{-3, 0, 12}))

	_, err = task.Execute()

	require.NoError(t, err)
	assert.Equal(t, []int32{1, 0, 0}, module.Data[int32](task.Socket("out")))
}

func TestBuild_InvalidArguments(t *testing.T) {
	ctx, _ := testutil.Context(t)

	_, err := BuildModulator(ctx, "m", &ModulatorInput{Size: 0})
	require.Error(t, err)

	_, err = BuildDemodulator(ctx, "d", &DemodulatorInput{Size: 2, InputType: "complex64"})
	require.Error(t, err)
}
