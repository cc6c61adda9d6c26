package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/vk/sigchain/internal/ctxlog"
)

// LogsEnv dumps captured logs for every test when set to "true".
const LogsEnv = "SIGCHAIN_TEST_LOGS"

// Context returns a background context carrying a debug logger that writes
// into the returned buffer.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv(LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}
