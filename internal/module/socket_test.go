package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPair builds a producer module "p" with task "emit" and a consumer module
// "c" with task "take", both carrying n int32 elements.
func newPair(n int) (out, in *Socket) {
	p := New("p")
	out = p.CreateTask("emit").CreateOutput("out", Int32, n)
	c := New("c")
	in = c.CreateTask("take").CreateInput("in", Int32, n)
	return out, in
}

func TestSocket_Bind(t *testing.T) {
	t.Run("consumer borrows the producer buffer", func(t *testing.T) {
		// --- Arrange ---
		out, in := newPair(4)

		// --- Act ---
		err := in.Bind(out)

		// --- Assert ---
		require.NoError(t, err)
		Data[int32](out)[2] = 7
		assert.Equal(t, int32(7), Data[int32](in)[2], "consumer must see the producer's data without a copy")
		assert.Same(t, out, in.Producer())
		assert.Equal(t, []*Socket{in}, out.Consumers())
	})

	t.Run("second producer is ambiguous", func(t *testing.T) {
		// --- Arrange ---
		out, in := newPair(4)
		other := New("q").CreateTask("emit").CreateOutput("out", Int32, 4)
		require.NoError(t, in.Bind(out))

		// --- Act ---
		err := in.Bind(other)

		// --- Assert ---
		require.ErrorIs(t, err, ErrAmbiguousBinding)
		assert.Contains(t, err.Error(), "c.take.in")
		assert.Len(t, other.Consumers(), 0)
	})

	t.Run("rebinding the same producer is a no-op", func(t *testing.T) {
		out, in := newPair(2)
		require.NoError(t, in.Bind(out))
		require.NoError(t, in.Bind(out))
		assert.Len(t, out.Consumers(), 1)
	})

	t.Run("size mismatch", func(t *testing.T) {
		out, _ := newPair(4)
		in := New("c").CreateTask("take").CreateInput("in", Int32, 8)
		require.ErrorIs(t, in.Bind(out), ErrIncompatibleSockets)
	})

	t.Run("type mismatch", func(t *testing.T) {
		out, _ := newPair(4)
		in := New("c").CreateTask("take").CreateInput("in", Float32, 4)
		require.ErrorIs(t, in.Bind(out), ErrIncompatibleSockets)
	})

	t.Run("wrong direction", func(t *testing.T) {
		out, in := newPair(4)
		require.ErrorIs(t, out.Bind(in), ErrDirection)
	})

	t.Run("frozen sockets reject binding", func(t *testing.T) {
		out, in := newPair(4)
		in.Freeze()
		require.ErrorIs(t, in.Bind(out), ErrFrozen)
	})
}

func TestSocket_Unbind(t *testing.T) {
	// --- Arrange ---
	out, in := newPair(2)
	require.NoError(t, in.Bind(out))

	// --- Act ---
	err := in.Unbind()

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, in.IsBound())
	assert.Empty(t, out.Consumers())
	assert.Nil(t, in.Buffer())
}

func TestSocket_SetBuffer(t *testing.T) {
	_, in := newPair(3)

	require.NoError(t, in.SetBuffer([]int32{1, 2, 3}))
	assert.Equal(t, []int32{1, 2, 3}, Data[int32](in))
	assert.False(t, in.Owned())

	require.ErrorIs(t, in.SetBuffer([]int32{1}), ErrBufferType)
	require.ErrorIs(t, in.SetBuffer([]float32{1, 2, 3}), ErrBufferType)
	assert.Nil(t, Data[float32](in), "typed access with the wrong element type yields nil")
}

func TestInOut_ForwardsProducerBuffer(t *testing.T) {
	// --- Arrange ---
	out, _ := newPair(2)
	mid := New("m").CreateTask("scale").CreateInOut("io", Int32, 2)
	sink := New("s").CreateTask("take").CreateInput("in", Int32, 2)
	require.NoError(t, mid.Bind(out))
	require.NoError(t, sink.Bind(mid))

	// --- Act ---
	Data[int32](out)[0] = 11

	// --- Assert ---
	assert.Equal(t, int32(11), Data[int32](sink)[0])
}

func TestSocket_Snapshot(t *testing.T) {
	out, in := newPair(2)
	assert.Nil(t, in.Snapshot())

	require.NoError(t, in.Bind(out))
	Data[int32](out)[1] = 4
	snap := in.Snapshot().([]int32)
	Data[int32](out)[1] = 5

	assert.Equal(t, []int32{0, 4}, snap)
}

func TestFloat64s(t *testing.T) {
	m := New("m")
	task := m.CreateTask("t")
	i8 := task.CreateOutput("i8", Int8, 3)
	f32 := task.CreateOutput("f32", Float32, 2)
	in := task.CreateInput("in", Int16, 2)

	copy(Data[int8](i8), []int8{-1, 0, 7})
	copy(Data[float32](f32), []float32{0.5, -2})

	assert.Equal(t, []float64{-1, 0, 7}, Float64s(i8))
	assert.Equal(t, []float64{0.5, -2}, Float64s(f32))
	assert.Nil(t, Float64s(in), "unbound input has no buffer")
}
