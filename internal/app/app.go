package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/sigchain/internal/config"
	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	config    *Config
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
	runID     string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry and the
// chain files already loaded. Any failure here is a startup error and panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, units ...registry.Unit) *App {
	runID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(units) == 0 {
		units = coreUnits
	}
	for _, u := range units {
		u.Register(reg)
	}
	logger.Debug("All units registered.", "count", len(units), "types", reg.Types())

	// A unit whose arguments cannot be decoded is a programmer error.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	model, converter, err := loader.Load(ctx, cfg.ChainPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	if err := config.Validate(model); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger.Debug("Configuration loaded and validated.", "modules", len(model.Modules), "bindings", len(model.Bindings))

	return &App{
		outW:      outW,
		config:    cfg,
		logger:    logger,
		registry:  reg,
		model:     model,
		converter: converter,
		runID:     runID,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// RunID identifies this application instance in logs and telemetry.
func (a *App) RunID() string {
	return a.runID
}
