package telemetry

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/careloop/healthbuddy/config"
)

// Telemetry tracks tool and answer metrics for the assistant.
type Telemetry struct {
	config   config.TelemetryConfig
	logger   *log.Logger
	registry *prometheus.Registry

	toolInvocations *prometheus.CounterVec
	toolFailures    *prometheus.CounterVec
	answersTotal    *prometheus.CounterVec
	answerLatency   prometheus.Histogram
}

// NewTelemetry creates a telemetry instance with its own registry so it can
// be exposed via /metrics without clashing with other collectors.
func NewTelemetry(cfg config.TelemetryConfig, logger *log.Logger) *Telemetry {
	if logger == nil {
		logger = log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags)
	}
	registry := prometheus.NewRegistry()

	t := &Telemetry{
		config:   cfg,
		logger:   logger,
		registry: registry,
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthbuddy_tool_invocations_total",
			Help: "Number of capability invocations by tool.",
		}, []string{"tool"}),
		toolFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthbuddy_tool_failures_total",
			Help: "Number of capability invocations that produced an error sentinel.",
		}, []string{"tool"}),
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "healthbuddy_answers_total",
			Help: "Number of answered questions by path and outcome.",
		}, []string{"path", "outcome"}),
		answerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "healthbuddy_answer_duration_seconds",
			Help:    "End-to-end latency of one question-answering cycle.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
	registry.MustRegister(t.toolInvocations, t.toolFailures, t.answersTotal, t.answerLatency)
	return t
}

// Registry exposes the prometheus registry for the /metrics handler.
func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

// RecordToolInvocation counts one capability call.
func (t *Telemetry) RecordToolInvocation(tool string, failed bool) {
	if !t.config.Enabled {
		return
	}
	t.toolInvocations.WithLabelValues(tool).Inc()
	if failed {
		t.toolFailures.WithLabelValues(tool).Inc()
	}
}

// RecordAnswer counts a completed answer cycle.
func (t *Telemetry) RecordAnswer(path string, success bool, duration time.Duration) {
	if !t.config.Enabled {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	t.answersTotal.WithLabelValues(path, outcome).Inc()
	t.answerLatency.Observe(duration.Seconds())
}
