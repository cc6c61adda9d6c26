package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vk/sigchain/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList collects a repeatable string flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// seedFlag records whether --seed was given at all.
type seedFlag struct {
	value *uint64
}

func (s *seedFlag) String() string {
	if s.value == nil {
		return ""
	}
	return strconv.FormatUint(*s.value, 10)
}

func (s *seedFlag) Set(v string) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return errors.New("must be a non-negative integer")
	}
	s.value = &n
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("sigchain", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
sigchain - A thread-replicated signal-processing chain runner.

Usage:
  sigchain [options] [CHAIN_PATH...]

Arguments:
  CHAIN_PATH
    Path to a chain file or a directory of chain files (.hcl, or .yaml/.yml
    with -format yaml).

Options:
`)
		flagSet.PrintDefaults()
	}

	var paths pathList
	var seed seedFlag
	flagSet.Var(&paths, "chain", "Path to a chain file or directory. Repeatable.")
	flagSet.Var(&paths, "c", "Path to a chain file or directory (shorthand). Repeatable.")
	formatFlag := flagSet.String("format", app.FormatHCL, "Chain file format. Options: 'hcl' or 'yaml'.")
	threadsFlag := flagSet.Int("threads", 0, "Number of chain replicas. 0 keeps the value from the chain file.")
	passesFlag := flagSet.Int("passes", -1, "Total passes across all threads. 0 runs until interrupted, -1 keeps the value from the chain file.")
	flagSet.Var(&seed, "seed", "Reseed every replica with SEED + thread id.")
	dotFlag := flagSet.String("dot", "", "Write the partitioned chain as a Graphviz DOT file.")
	statsFlag := flagSet.Bool("stats", false, "Print per-task statistics after the run.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	traceFlag := flagSet.String("trace-exporter", "none", "Trace exporter. Options: 'none', 'stdout', 'otlp'.")
	metricFlag := flagSet.String("metric-exporter", "none", "Metric exporter. Options: 'none', 'stdout', 'prometheus'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths = append(paths, flagSet.Args()...)
	slog.Debug("Chain paths determined.", "paths", []string(paths))

	if len(paths) == 0 {
		slog.Debug("No chain path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *passesFlag < -1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid passes: must be -1, 0 or positive"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ChainPaths:      paths,
		Format:          strings.ToLower(*formatFlag),
		Threads:         *threadsFlag,
		Passes:          *passesFlag,
		Seed:            seed.value,
		DotPath:         *dotFlag,
		Stats:           *statsFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		TraceExporter:   strings.ToLower(*traceFlag),
		MetricExporter:  strings.ToLower(*metricFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
