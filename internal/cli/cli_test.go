package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/sigchain/internal/app"
)

func TestParse_Defaults(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	cfg, exit, err := Parse([]string{"chain.hcl"}, out)

	// --- Assert ---
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, []string{"chain.hcl"}, cfg.ChainPaths)
	assert.Equal(t, app.FormatHCL, cfg.Format)
	assert.Equal(t, 0, cfg.Threads)
	assert.Equal(t, -1, cfg.Passes)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "none", cfg.TraceExporter)
	assert.Equal(t, "none", cfg.MetricExporter)
}

func TestParse_AllFlags(t *testing.T) {
	args := []string{
		"-c", "a.yaml", "--chain", "dir",
		"--format", "YAML",
		"--threads", "4", "--passes", "0", "--seed", "9",
		"--dot", "out.dot", "--stats",
		"--healthcheck-port", "8080",
		"--log-format", "text", "--log-level", "DEBUG",
		"--trace-exporter", "stdout", "--metric-exporter", "prometheus",
		"b.yaml",
	}

	cfg, exit, err := Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, []string{"a.yaml", "dir", "b.yaml"}, cfg.ChainPaths)
	assert.Equal(t, app.FormatYAML, cfg.Format)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, 0, cfg.Passes)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(9), *cfg.Seed)
	assert.Equal(t, "out.dot", cfg.DotPath)
	assert.True(t, cfg.Stats)
	assert.Equal(t, 8080, cfg.HealthcheckPort)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
}

func TestParse_HelpAndNoPath(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}

		cfg, exit, err := Parse(args, out)

		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"--nope"}, want: "flag provided but not defined"},
		{name: "log format", args: []string{"--log-format", "xml", "x.hcl"}, want: "invalid log-format"},
		{name: "log level", args: []string{"--log-level", "trace", "x.hcl"}, want: "invalid log-level"},
		{name: "passes", args: []string{"--passes", "-5", "x.hcl"}, want: "invalid passes"},
		{name: "seed", args: []string{"--seed", "-1", "x.hcl"}, want: "must be a non-negative integer"},
		{name: "format", args: []string{"--format", "toml", "x.hcl"}, want: "unknown chain format"},
		{name: "exporter", args: []string{"--trace-exporter", "zipkin", "x.hcl"}, want: "unknown trace exporter"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
