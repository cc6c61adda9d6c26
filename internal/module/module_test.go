package module

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScaler(name string, factor int32) *Module {
	m := New(name)
	t := m.CreateTask("scale")
	in := t.CreateInput("in", Int32, 2)
	out := t.CreateOutput("out", Int32, 2)
	t.SetCodelet(func(*Task) (int, error) {
		src, dst := Data[int32](in), Data[int32](out)
		for i := range src {
			dst[i] = src[i] * factor
		}
		return 0, nil
	})
	m.SetFactory(func() (*Module, error) { return newScaler(name, factor), nil })
	return m
}

func TestModule_Clone(t *testing.T) {
	t.Run("fresh sockets, no bindings, same behaviour", func(t *testing.T) {
		// --- Arrange ---
		ref := newScaler("x3", 3)
		src := New("src").CreateTask("emit").CreateOutput("out", Int32, 2)
		require.NoError(t, ref.Task("scale").Socket("in").Bind(src))
		ref.Task("scale").SetStats(true)

		// --- Act ---
		c, err := ref.Clone()

		// --- Assert ---
		require.NoError(t, err)
		ct := c.Task("scale")
		assert.Equal(t, "x3", c.Name())
		assert.False(t, ct.Socket("in").IsBound(), "bindings are not cloned")
		assert.NotSame(t, ref.Task("scale").Socket("out"), ct.Socket("out"))
		assert.True(t, ct.StatsEnabled())

		require.NoError(t, ct.Socket("in").SetBuffer([]int32{1, 2}))
		_, err = ct.Execute()
		require.NoError(t, err)
		assert.Equal(t, []int32{3, 6}, Data[int32](ct.Socket("out")))
		assert.Equal(t, []int32{0, 0}, Data[int32](ref.Task("scale").Socket("out")), "reference buffers untouched")
	})

	t.Run("without factory", func(t *testing.T) {
		_, err := New("bare").Clone()
		require.ErrorIs(t, err, ErrNotClonable)
	})

	t.Run("factory producing a different shape", func(t *testing.T) {
		m := newScaler("x", 1)
		m.SetFactory(func() (*Module, error) {
			c := New("x")
			c.CreateTask("other")
			return c, nil
		})
		_, err := m.Clone()
		require.ErrorIs(t, err, ErrCloneMismatch)
	})
}

func TestModule_ResetAndSeed(t *testing.T) {
	m := New("m")
	var resets int
	m.OnReset(func() { resets++ })
	m.Reset()
	m.Reset()
	assert.Equal(t, 2, resets)

	assert.False(t, m.Seed(1), "no seed hook installed")
	var got uint64
	m.OnSeed(func(s uint64) { got = s })
	assert.True(t, m.Seed(42))
	assert.Equal(t, uint64(42), got)
}

func TestModule_LoopBranches(t *testing.T) {
	_, _, _, ok := newScaler("s", 1).LoopBranches()
	assert.False(t, ok)

	l := NewCounterLoop("l", Int32, 2, 1)
	task, cont, exit, ok := l.LoopBranches()
	require.True(t, ok)
	assert.Equal(t, "stop", task.Name())
	assert.Equal(t, "out1", cont.Name())
	assert.Equal(t, "out2", exit.Name())
}

func TestModule_CloseAndReport(t *testing.T) {
	m := New("m")
	assert.NoError(t, m.Close())
	assert.Nil(t, m.Report())

	boom := errors.New("boom")
	var closed int
	m.OnClose(func() error { closed++; return nil })
	m.OnClose(func() error { closed++; return boom })
	m.OnReport(func() map[string]int64 { return map[string]int64{"frames": 3} })

	require.ErrorIs(t, m.Close(), boom)
	assert.Equal(t, 2, closed, "every hook runs even after a failure")
	assert.Equal(t, map[string]int64{"frames": 3}, m.Report())
}
