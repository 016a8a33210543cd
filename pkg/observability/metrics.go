package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/adflow/pkg/domain"
)

const namespace = "adflow"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	StageRuns           *prometheus.CounterVec
	CollaboratorLatency *prometheus.HistogramVec
	CollaboratorErrors  *prometheus.CounterVec
	Intents             *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg registers nothing, which suits tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_runs_total",
				Help:      "Stage executions by outcome (ok, cached, error).",
			},
			[]string{"stage", "outcome"},
		),
		CollaboratorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "collaborator_duration_seconds",
				Help:      "Duration of generator calls.",
				Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"collaborator"},
		),
		CollaboratorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collaborator_errors_total",
				Help:      "Failed generator calls.",
			},
			[]string{"collaborator"},
		),
		Intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Resolved navigation intents by rule.",
			},
			[]string{"source"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.StageRuns, m.CollaboratorLatency, m.CollaboratorErrors, m.Intents)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageLeave: func(_ context.Context, e *domain.StageEvent) {
			outcome := "ok"
			switch {
			case e.Error != "":
				outcome = "error"
			case e.Cached:
				outcome = "cached"
			}
			m.StageRuns.WithLabelValues(string(e.Stage), outcome).Inc()
		},
		OnCollaboratorReturn: func(_ context.Context, e *domain.CollaboratorEvent) {
			m.CollaboratorLatency.WithLabelValues(e.Collaborator).Observe(e.Duration.Seconds())
			if e.IsError {
				m.CollaboratorErrors.WithLabelValues(e.Collaborator).Inc()
			}
		},
		OnIntentResolved: func(_ context.Context, e *domain.IntentEvent) {
			m.Intents.WithLabelValues(e.Source).Inc()
		},
	}
}
