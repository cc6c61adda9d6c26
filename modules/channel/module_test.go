package channel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/testutil"
)

func run(t *testing.T, m *module.Module) []float32 {
	t.Helper()
	task := m.Task("add_noise")
	_, err := task.Execute()
	require.NoError(t, err)
	return append([]float32(nil), module.Data[float32](task.Socket("out"))...)
}

func TestBuild(t *testing.T) {
	ctx, _ := testutil.Context(t)

	t.Run("zero sigma is a pass-through", func(t *testing.T) {
		m, err := Build(ctx, "ch", &Input{Size: 3, Sigma: 0})
		require.NoError(t, err)
		require.NoError(t, m.Task("add_noise").Socket("in").SetBuffer([]float32{1, -1, 1}))

		assert.Equal(t, []float32{1, -1, 1}, run(t, m))
	})

	t.Run("seeded noise is reproducible", func(t *testing.T) {
		// --- Arrange ---
		m, err := Build(ctx, "ch", &Input{Size: 4096, Sigma: 0.5})
		require.NoError(t, err)
		require.NoError(t, m.Task("add_noise").Socket("in").SetBuffer(make([]float32, 4096)))

		// --- Act ---
		m.Seed(3)
		a := run(t, m)
		m.Seed(3)
		b := run(t, m)
		m.Seed(4)
		c := run(t, m)

		// --- Assert ---
		assert.Equal(t, a, b)
		assert.NotEqual(t, a, c)

		var sum float64
		for _, v := range a {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 0.5, math.Sqrt(sum/float64(len(a))), 0.05)
	})

	t.Run("negative sigma", func(t *testing.T) {
		_, err := Build(ctx, "ch", &Input{Size: 1, Sigma: -1})
		require.Error(t, err)
	})
}
