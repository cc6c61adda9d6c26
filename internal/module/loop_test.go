package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterLoop(t *testing.T) {
	// --- Arrange ---
	l := NewCounterLoop("iter", Int32, 2, 3)
	task, cont, exit, _ := l.LoopBranches()
	require.NoError(t, task.Socket("in1").SetBuffer([]int32{5, 6}))

	// --- Act ---
	var statuses []int
	for range 4 {
		s, err := task.Execute()
		require.NoError(t, err)
		statuses = append(statuses, s)
	}

	// --- Assert ---
	assert.Equal(t, []int{LoopContinue, LoopContinue, LoopContinue, LoopExit}, statuses)
	assert.Equal(t, []int32{5, 6}, Data[int32](cont))
	assert.Equal(t, []int32{5, 6}, Data[int32](exit))

	l.Reset()
	s, err := task.Execute()
	require.NoError(t, err)
	assert.Equal(t, LoopContinue, s, "reset re-arms the counter")
}

func TestLoop_ForwardsBackEdgeAfterFirstIteration(t *testing.T) {
	// --- Arrange ---
	l := NewCounterLoop("iter", Int32, 1, 5)
	task, cont, _, _ := l.LoopBranches()
	require.NoError(t, task.Socket("in1").SetBuffer([]int32{1}))
	back := New("body").CreateTask("inc").CreateOutput("out", Int32, 1)
	require.NoError(t, task.Socket("in2").Bind(back))
	Data[int32](back)[0] = 9

	// --- Act & Assert ---
	_, err := task.Execute()
	require.NoError(t, err)
	assert.Equal(t, int32(1), Data[int32](cont)[0], "first iteration reads the entry")

	_, err = task.Execute()
	require.NoError(t, err)
	assert.Equal(t, int32(9), Data[int32](cont)[0], "later iterations read the back-edge")
}

func TestLoop_CloneKeepsPredicate(t *testing.T) {
	l := NewCounterLoop("iter", Int8, 1, 1)
	c, err := l.Clone()
	require.NoError(t, err)
	assert.True(t, c.IsLoop())

	task, _, _, _ := c.LoopBranches()
	require.NoError(t, task.Socket("in1").SetBuffer([]int8{0}))
	s1, _ := task.Execute()
	s2, _ := task.Execute()
	assert.Equal(t, []int{LoopContinue, LoopExit}, []int{s1, s2})
}
