package socketio

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/testutil"
)

func validInput() *Input {
	return &Input{
		Size:      2,
		DataType:  "int32",
		URL:       "http://127.0.0.1:1/socket.io/",
		Namespace: "/",
		Event:     "frame",
		Timeout:   "10s",
	}
}

func TestBuild_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(in *Input)
	}{
		{name: "size", mutate: func(in *Input) { in.Size = 0 }},
		{name: "dtype", mutate: func(in *Input) { in.DataType = "string" }},
		{name: "relative url", mutate: func(in *Input) { in.URL = "/socket.io/" }},
		{name: "bad url", mutate: func(in *Input) { in.URL = "http://[::1" }},
		{name: "timeout", mutate: func(in *Input) { in.Timeout = "soon" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			in := validInput()
			tc.mutate(in)

			_, err := Build(ctx, "sink", in)

			require.Error(t, err)
		})
	}
}

func TestBuild_ConnectsLazily(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)

	// --- Act ---
	m, err := Build(ctx, "sink", validInput())

	// --- Assert ---
	require.NoError(t, err)
	assert.NotNil(t, m.Task("emit").Socket("in"))
	assert.NoError(t, m.Close(), "closing a sink that never connected is a no-op")
}

func TestBuild_UnreachableServerFailsTheTask(t *testing.T) {
	// --- Arrange ---
	ctx, _ := testutil.Context(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	in := validInput()
	in.URL = "http://" + addr + "/socket.io/"
	in.Timeout = "300ms"
	m, err := Build(ctx, "sink", in)
	require.NoError(t, err)
	task := m.Task("emit")
	require.NoError(t, task.Socket("in").SetBuffer([]int32{1, 0}))

	// --- Act ---
	_, err = task.Execute()

	// --- Assert ---
	require.ErrorIs(t, err, ErrConnect)
	assert.NoError(t, m.Close())
}

func TestNotify_LateSecondEventDoesNotBlock(t *testing.T) {
	// --- Arrange ---
	connected := make(chan error, 1)
	refused := errors.New("refused")
	done := make(chan struct{})

	// --- Act ---
	go func() {
		notify(connected, refused)
		notify(connected, nil)
		close(done)
	}()

	// --- Assert ---
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second notification blocked")
	}
	assert.ErrorIs(t, <-connected, refused)
	assert.Empty(t, connected)
}
