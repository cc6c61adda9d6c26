package app

import (
	"errors"
	"fmt"

	"github.com/vk/sigchain/internal/telemetry"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ChainPaths are chain files or directories of them.
	ChainPaths []string
	// Format selects the loader: "hcl" or "yaml".
	Format string

	// Threads overrides the chain's thread count when positive.
	Threads int
	// Passes overrides the chain's pass budget when not negative. 0 runs
	// until the context is cancelled.
	Passes int
	// Seed, when set, reseeds every replica with *Seed + thread id.
	Seed *uint64

	// DotPath receives a Graphviz export of the chain when not empty.
	DotPath string
	// Stats prints per-task call counts and durations after the run.
	Stats bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	TraceExporter  string
	MetricExporter string
}

// Formats accepted in Config.Format.
const (
	FormatHCL  = "hcl"
	FormatYAML = "yaml"
)

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ChainPaths) == 0 {
		return nil, errors.New("at least one chain path is required")
	}
	if cfg.Format == "" {
		cfg.Format = FormatHCL
	}
	if cfg.Format != FormatHCL && cfg.Format != FormatYAML {
		return nil, fmt.Errorf("unknown chain format %q", cfg.Format)
	}
	if cfg.Threads < 0 {
		return nil, fmt.Errorf("threads must not be negative, got %d", cfg.Threads)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d out of range", cfg.HealthcheckPort)
	}
	if cfg.TraceExporter == "" {
		cfg.TraceExporter = telemetry.ExporterNone
	}
	if cfg.MetricExporter == "" {
		cfg.MetricExporter = telemetry.ExporterNone
	}
	switch cfg.TraceExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterOTLP:
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.TraceExporter)
	}
	switch cfg.MetricExporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterPrometheus:
	default:
		return nil, fmt.Errorf("unknown metric exporter %q", cfg.MetricExporter)
	}
	return &cfg, nil
}
