package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the engine's Prometheus collectors. Each engine gets its own
// registry so multiple engines (and tests) can coexist in one process; the
// health server exposes the registry on /metrics.
type metrics struct {
	registry *prometheus.Registry

	eventsTotal  *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	actionsTotal *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quartz_engine_events_total",
			Help: "Board events seen by the engine, by event type.",
		}, []string{"type"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quartz_engine_runs_total",
			Help: "Automation pipeline runs, by outcome.",
		}, []string{"outcome"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quartz_engine_actions_total",
			Help: "Automation actions executed, by type and status.",
		}, []string{"type", "status"}),
	}

	m.registry.MustRegister(m.eventsTotal, m.runsTotal, m.actionsTotal)
	return m
}

func (m *metrics) observeEvent(eventType string) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

func (m *metrics) observeRun(outcome RunOutcome) {
	m.runsTotal.WithLabelValues(string(outcome)).Inc()
}

func (m *metrics) observeAction(actionType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.actionsTotal.WithLabelValues(actionType, status).Inc()
}
