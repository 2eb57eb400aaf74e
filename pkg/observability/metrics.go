// Package observability turns engine lifecycle hooks into Prometheus
// metrics. Hooks run inline on the session's turn, so everything here is a
// cheap counter or histogram update.
package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evocall/pathway/pkg/domain"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	registry *prometheus.Registry

	NodeVisits       *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec

	ModelCallsTotal   *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec

	AppActionsTotal   *prometheus.CounterVec
	AppActionDuration *prometheus.HistogramVec

	CallsEndedTotal *prometheus.CounterVec
	CallTurns       prometheus.Histogram
}

// NewMetrics creates a Metrics instance with all metrics registered on a
// private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pathway"
	}

	registry := prometheus.NewRegistry()

	nodeVisits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Total number of node entries",
		},
		[]string{"pathway_id", "node_id"},
	)

	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of settled turns, moved or not",
		},
		[]string{"pathway_id"},
	)

	modelCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Total number of language model round-trips",
		},
		[]string{"outcome", "retried"},
	)

	modelCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Language model round-trip duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"outcome"},
	)

	appActionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "app_actions_total",
			Help:      "Total number of app action executions",
		},
		[]string{"app", "action", "outcome"},
	)

	appActionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "app_action_duration_seconds",
			Help:      "App action execution duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"app", "action"},
	)

	callsEndedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_ended_total",
			Help:      "Total number of sessions reaching a terminal state",
		},
		[]string{"status"},
	)

	callTurns := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_turns",
			Help:      "Turns taken by a call before it ended",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	registry.MustRegister(
		nodeVisits,
		transitionsTotal,
		modelCallsTotal,
		modelCallDuration,
		appActionsTotal,
		appActionDuration,
		callsEndedTotal,
		callTurns,
	)

	return &Metrics{
		registry:          registry,
		NodeVisits:        nodeVisits,
		TransitionsTotal:  transitionsTotal,
		ModelCallsTotal:   modelCallsTotal,
		ModelCallDuration: modelCallDuration,
		AppActionsTotal:   appActionsTotal,
		AppActionDuration: appActionDuration,
		CallsEndedTotal:   callsEndedTotal,
		CallTurns:         callTurns,
	}
}

// Registry exposes the private registry for custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks maps the metrics onto engine lifecycle hooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.TransitionEvent) {
			m.NodeVisits.WithLabelValues(e.PathwayID, e.NodeAfter).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.TransitionsTotal.WithLabelValues(e.PathwayID).Inc()
		},
		OnModelCall: func(_ context.Context, e *domain.ModelCallEvent) {
			outcome := outcomeLabel(e.IsError)
			m.ModelCallsTotal.WithLabelValues(outcome, strconv.FormatBool(e.Retried)).Inc()
			m.ModelCallDuration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
		},
		OnAppAction: func(_ context.Context, e *domain.AppActionEvent) {
			m.AppActionsTotal.WithLabelValues(e.App, e.Action, outcomeLabel(e.IsError)).Inc()
			m.AppActionDuration.WithLabelValues(e.App, e.Action).Observe(e.Duration.Seconds())
		},
		OnCallEnd: func(_ context.Context, e *domain.CallEndedEvent) {
			m.CallsEndedTotal.WithLabelValues(string(e.Status)).Inc()
			m.CallTurns.Observe(float64(e.Turns))
		},
	}
}

func outcomeLabel(isError bool) string {
	if isError {
		return "error"
	}
	return "ok"
}
