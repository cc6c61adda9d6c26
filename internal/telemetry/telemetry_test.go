package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_None(t *testing.T) {
	p, err := Init(context.Background(), DefaultConfig())

	require.NoError(t, err)
	assert.Nil(t, p.MetricsHandler())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_NilContext(t *testing.T) {
	var ctx context.Context
	_, err := Init(ctx, DefaultConfig())
	require.ErrorIs(t, err, ErrNilContext)
}

func TestInit_UnknownExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "zipkin"

	_, err := Init(context.Background(), cfg)

	require.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_PrometheusServesMetrics(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.MetricExporter = ExporterPrometheus
	p, err := Init(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	counter, err := otel.Meter("telemetry_test").Int64Counter("test_events_total")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	// --- Act ---
	rec := httptest.NewRecorder()
	p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// --- Assert ---
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "test_events_total")
}

func TestInit_StdoutTraces(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterStdout
	cfg.Writer = &buf

	p, err := Init(ctx, cfg)
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry_test").Start(ctx, "unit-span")
	span.End()
	require.NoError(t, p.Shutdown(ctx))

	assert.Contains(t, buf.String(), "unit-span")
}
