package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors, labelled by machine ID.
type Metrics struct {
	registry *prometheus.Registry
	steps    *prometheus.CounterVec
	halts    *prometheus.CounterVec
	undos    *prometheus.CounterVec
	resets   *prometheus.CounterVec
	runSteps *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turingviz_steps_total",
			Help: "Total number of applied transitions",
		}, []string{"machine"}),
		halts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turingviz_halts_total",
			Help: "Total number of halts, by outcome",
		}, []string{"machine", "result"}),
		undos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turingviz_step_backs_total",
			Help: "Total number of undone transitions",
		}, []string{"machine"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turingviz_resets_total",
			Help: "Total number of resets and restarts",
		}, []string{"machine"}),
		runSteps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "turingviz_run_steps",
			Help:    "Steps taken by a run before halting",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"machine"}),
	}
	reg.MustRegister(m.steps, m.halts, m.undos, m.resets, m.runSteps)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(e.Machine).Inc()
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			result := "reject"
			if e.Accepting {
				result = "accept"
			}
			m.halts.WithLabelValues(e.Machine, result).Inc()
			m.runSteps.WithLabelValues(e.Machine).Observe(float64(e.Steps))
		},
		OnUndo: func(_ context.Context, e *domain.ControlEvent) {
			m.undos.WithLabelValues(e.Machine).Inc()
		},
		OnReset: func(_ context.Context, e *domain.ControlEvent) {
			m.resets.WithLabelValues(e.Machine).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
