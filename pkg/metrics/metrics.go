// Package metrics exposes Prometheus collectors for model calls and
// feature pipeline runs. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gherkin_ai"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	modelCalls     *prometheus.CounterVec
	modelDuration  *prometheus.HistogramVec
	pipelineRuns   *prometheus.CounterVec
	titleSkips     prometheus.Counter
	analyticsFails prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Language-model calls by call type and outcome.",
		}, []string{"call", "outcome"}),
		modelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Latency of language-model calls by call type.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"call"}),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feature_pipeline_runs_total",
			Help:      "Create-feature pipeline runs by the stage they ended in.",
		}, []string{"stage", "outcome"}),
		titleSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "title_suggestions_skipped_total",
			Help:      "Title suggestion requests answered without a model call because the story was too short.",
		}),
		analyticsFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_event_failures_total",
			Help:      "Analytics events that could not be written.",
		}),
	}
	m.registry.MustRegister(m.modelCalls, m.modelDuration, m.pipelineRuns, m.titleSkips, m.analyticsFails)
	return m
}

// ObserveModelCall records one model call of the given type.
func (m *Metrics) ObserveModelCall(call string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.modelCalls.WithLabelValues(call, outcome(err)).Inc()
	m.modelDuration.WithLabelValues(call).Observe(d.Seconds())
}

// ObservePipeline records the stage a create-feature run finished in.
func (m *Metrics) ObservePipeline(stage string, err error) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(stage, outcome(err)).Inc()
}

func (m *Metrics) TitleSuggestionSkipped() {
	if m == nil {
		return
	}
	m.titleSkips.Inc()
}

func (m *Metrics) AnalyticsEventFailed() {
	if m == nil {
		return
	}
	m.analyticsFails.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
