package chain

import (
	"context"
	"sync"

	"github.com/vk/sigchain/internal/ctxlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("sigchain.chain")
	meter  = otel.Meter("sigchain.chain")
)

var (
	metricsOnce  sync.Once
	passCounter  metric.Int64Counter
	failCounter  metric.Int64Counter
	execDuration metric.Float64Histogram
)

// initMetrics lazily creates the instruments. A failure only degrades
// observability.
func initMetrics(ctx context.Context) {
	metricsOnce.Do(func() {
		var errs []string
		var err error

		passCounter, err = meter.Int64Counter("chain_passes_total",
			metric.WithDescription("Number of whole-tree passes completed by all threads"),
		)
		if err != nil {
			errs = append(errs, "passes: "+err.Error())
		}

		failCounter, err = meter.Int64Counter("chain_task_failures_total",
			metric.WithDescription("Number of task failures captured during exec"),
		)
		if err != nil {
			errs = append(errs, "failures: "+err.Error())
		}

		execDuration, err = meter.Float64Histogram("chain_exec_duration_seconds",
			metric.WithDescription("Wall time of one exec call across all threads"),
			metric.WithUnit("s"),
		)
		if err != nil {
			errs = append(errs, "exec_duration: "+err.Error())
		}

		if len(errs) > 0 {
			ctxlog.FromContext(ctx).Error("Failed to initialize some chain metrics.", "errors", errs)
		}
	})
}
