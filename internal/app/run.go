package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/vk/sigchain/internal/builder"
	"github.com/vk/sigchain/internal/chain"
	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/module"
	"github.com/vk/sigchain/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// Run builds the chain described by the loaded configuration, executes it
// and reports the results.
func (a *App) Run(ctx context.Context) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tcfg := telemetry.DefaultConfig()
	tcfg.RunID = a.runID
	tcfg.TraceExporter = a.config.TraceExporter
	tcfg.MetricExporter = a.config.MetricExporter
	tcfg.Writer = a.outW
	provider, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, provider.Shutdown(shutdownCtx))
	}()

	graph, err := builder.New(a.registry).Build(ctx, a.model, a.converter)
	if err != nil {
		return fmt.Errorf("failed to build processing graph: %w", err)
	}
	defer func() {
		for _, m := range graph.Modules {
			err = errors.Join(err, m.Close())
		}
	}()
	a.logger.Debug("Processing graph built.", "modules", len(graph.Modules))

	threads, passes := graph.Threads, graph.Passes
	if a.config.Threads > 0 {
		threads = a.config.Threads
	}
	if a.config.Passes >= 0 {
		passes = a.config.Passes
	}

	ch, err := chain.New(ctx, graph.First, graph.Last, threads)
	if err != nil {
		return fmt.Errorf("failed to construct chain: %w", err)
	}
	defer func() {
		ch.ForEachModule(func(_ int, m *module.Module) {
			err = errors.Join(err, m.Close())
		})
	}()

	if a.config.Seed != nil {
		base := *a.config.Seed
		ch.ForEachModule(func(tid int, m *module.Module) {
			m.Seed(base + uint64(tid))
		})
		a.logger.Debug("Replicas seeded.", "base", base)
	}
	if a.config.Stats {
		ch.SetStats(true)
	}
	if a.config.DotPath != "" {
		if err := writeDOT(ch, a.config.DotPath); err != nil {
			return err
		}
		a.logger.Info("Chain graph written.", "path", a.config.DotPath)
	}

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()
	if a.config.HealthcheckPort > 0 {
		srv := a.newHealthcheckServer(a.config.HealthcheckPort, provider.MetricsHandler())
		g.Go(func() error { return a.serveHealthcheck(serverCtx, srv) })
	}
	g.Go(func() error {
		defer stopServer()
		return a.execute(gctx, ch, passes)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.report(ch)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// execute drives the chain until passes passes have completed across all
// threads, or until ctx is cancelled when passes is 0.
func (a *App) execute(ctx context.Context, ch *chain.Chain, passes int) error {
	var done, flagged atomic.Int64
	stop := func(statuses []int) bool {
		for _, s := range statuses {
			if s != 0 {
				flagged.Add(1)
				break
			}
		}
		n := done.Add(1)
		return passes > 0 && n >= int64(passes)
	}

	a.logger.Info("🚀 Starting chain execution...", "threads", ch.Threads(), "passes", passes)
	err := ch.Exec(ctx, stop)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.logger.Warn("Chain execution interrupted.", "reason", err)
	default:
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "passes", done.Load(), "flagged_passes", flagged.Load())
	return nil
}

func writeDOT(ch *chain.Chain, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create DOT file: %w", err)
	}
	if err := ch.ExportDOT(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write DOT file: %w", err)
	}
	return f.Close()
}
