// Package observability bundles the Prometheus collectors and the
// OpenTelemetry tracer setup of the pathclear binaries.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool call status label values.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

// Metrics holds the collectors recorded by the MCP tools and the batch CLI.
// All methods are safe on a nil receiver.
type Metrics struct {
	gatherer prometheus.Gatherer

	ToolCalls      *prometheus.CounterVec
	ToolDurations  *prometheus.HistogramVec
	Evaluations    *prometheus.CounterVec
	CachedProfiles prometheus.Gauge
}

// NewMetrics registers the collectors against reg, defaulting to the global
// Prometheus registry when nil. Registering twice against the same registry
// returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calls, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pathclear_tool_calls_total",
		Help: "Total number of MCP tool calls, labeled by tool and status.",
	}, []string{"tool", "status"}), "pathclear_tool_calls_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pathclear_tool_duration_seconds",
		Help:    "MCP tool call latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"tool"}), "pathclear_tool_duration_seconds")
	if err != nil {
		return nil, err
	}

	evaluations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pathclear_evaluations_total",
		Help: "Obstruction evaluations, labeled by verdict.",
	}, []string{"verdict"}), "pathclear_evaluations_total")
	if err != nil {
		return nil, err
	}

	cached, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pathclear_cached_profiles",
		Help: "Number of elevation profiles held by the profile store.",
	}), "pathclear_cached_profiles")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:       gatherer,
		ToolCalls:      calls,
		ToolDurations:  durations,
		Evaluations:    evaluations,
		CachedProfiles: cached,
	}, nil
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolDurations.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveVerdict counts one evaluated obstruction.
func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(verdict).Inc()
}

// SetCachedProfiles sets the profile store gauge.
func (m *Metrics) SetCachedProfiles(n int) {
	if m == nil {
		return
	}
	m.CachedProfiles.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
