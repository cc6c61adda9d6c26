package app

import (
	"os"
	"testing"

	"github.com/vk/sigchain/internal/config"
	"github.com/vk/sigchain/internal/registry"
	"github.com/vk/sigchain/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. The log level
// is forced to debug and the log is dumped when testutil.LogsEnv is "true".
func SetupAppTest(t *testing.T, cfg *Config, loader config.Loader, units ...registry.Unit) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	testApp := NewApp(logBuffer, cfg, loader, units...)

	t.Cleanup(func() {
		if os.Getenv(testutil.LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
