package worker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the worker's Prometheus collectors. There is no HTTP endpoint; the
// registry is written to a node_exporter textfile after each cycle when configured.
type Metrics struct {
	cycles              prometheus.Counter
	dispatched          *prometheus.CounterVec
	completed           prometheus.Counter
	failed              *prometheus.CounterVec
	unauthorizedPending prometheus.Gauge
	lastProcessed       prometheus.Gauge
}

// MustNewMetrics registers the collectors with reg and panics on conflicts.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agentfeed",
			Subsystem: "worker",
			Name:      "cycles_total",
			Help:      "Number of poll cycles run.",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentfeed",
			Subsystem: "worker",
			Name:      "tasks_dispatched_total",
			Help:      "Tasks handed to the executor, by resolved kind.",
		}, []string{"kind"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agentfeed",
			Subsystem: "worker",
			Name:      "tasks_completed_total",
			Help:      "Tasks recorded as task_complete.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentfeed",
			Subsystem: "worker",
			Name:      "tasks_failed_total",
			Help:      "Tasks recorded as task_failed, by reason.",
		}, []string{"reason"}),
		unauthorizedPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentfeed",
			Subsystem: "worker",
			Name:      "unauthorized_assignments",
			Help:      "Assignments newer than the cursor that were rejected by the allow-list in the last cycle.",
		}),
		lastProcessed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentfeed",
			Subsystem: "worker",
			Name:      "last_processed_timestamp_seconds",
			Help:      "Assignment timestamp of the last processed task.",
		}),
	}
	reg.MustRegister(m.cycles, m.dispatched, m.completed, m.failed, m.unauthorizedPending, m.lastProcessed)
	return m
}

const (
	failureError        = "error"
	failurePanic        = "panic"
	failureUnsuccessful = "unsuccessful"
)
