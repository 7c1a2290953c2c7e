package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"

	pathtest "github.com/NERVsystems/pathclear/pkg/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.ObserveTool("evaluate_clearance", StatusOK, 3*time.Millisecond)
	m.ObserveTool("evaluate_clearance", StatusOK, time.Millisecond)
	m.ObserveTool("evaluate_clearance", StatusError, time.Millisecond)
	m.ObserveVerdict("clear")
	m.SetCachedProfiles(4)

	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("evaluate_clearance", StatusOK)); got != 2 {
		t.Errorf("tool calls ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("evaluate_clearance", StatusError)); got != 1 {
		t.Errorf("tool calls error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Evaluations.WithLabelValues("clear")); got != 1 {
		t.Errorf("evaluations clear = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CachedProfiles); got != 4 {
		t.Errorf("cached profiles = %v, want 4", got)
	}
	if got := testutil.CollectAndCount(m.ToolDurations); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("second NewMetrics: %v", err)
	}
	if first.ToolCalls != second.ToolCalls {
		t.Error("second registration should reuse the existing collector")
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTool("x", StatusOK, time.Second)
	m.ObserveVerdict("clear")
	m.SetCachedProfiles(1)
	if m.Handler() == nil {
		t.Error("nil Metrics should still expose a handler")
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	m.ObserveVerdict("los_blocked")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `pathclear_evaluations_total{verdict="los_blocked"} 1`) {
		t.Errorf("metrics output missing evaluation counter:\n%s", rec.Body.String())
	}
}

func TestInitTracing(t *testing.T) {
	ctx := context.Background()
	log := pathtest.DiscardLogger()

	shutdown, err := InitTracing(ctx, DefaultTracingConfig(), nil, log)
	if err != nil {
		t.Fatalf("disabled InitTracing: %v", err)
	}
	if err := shutdown(ctx); err != nil {
		t.Errorf("noop shutdown: %v", err)
	}

	var buf bytes.Buffer
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	shutdown, err = InitTracing(ctx, cfg, &buf, log)
	if err != nil {
		t.Fatalf("stdout InitTracing: %v", err)
	}
	_, span := StartSpan(ctx, "evaluate", attribute.String("obstruction_id", "t1"))
	EndSpan(span, errors.New("boom"))
	ShutdownWithTimeout(ctx, shutdown, log)
	if !strings.Contains(buf.String(), `"evaluate"`) {
		t.Errorf("exported spans missing evaluate span:\n%s", buf.String())
	}

	// Leave the global provider as a noop for other tests.
	if _, err := InitTracing(ctx, DefaultTracingConfig(), nil, log); err != nil {
		t.Fatal(err)
	}

	cfg.Exporter = "zipkin"
	if _, err := InitTracing(ctx, cfg, nil, log); err == nil {
		t.Error("unknown exporter should fail")
	}
}
