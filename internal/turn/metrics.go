package turn

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Turns            prometheus.Counter
	Corporations     prometheus.Counter
	Failures         prometheus.Counter
	TurnDuration     prometheus.Histogram
	SnapshotFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corpsim",
			Subsystem: "turn",
			Name:      "runs_total",
			Help:      "Completed turn runs.",
		}),
		Corporations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corpsim",
			Subsystem: "turn",
			Name:      "corporations_processed_total",
			Help:      "Corporations whose statements were computed and saved.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corpsim",
			Subsystem: "turn",
			Name:      "corporation_failures_total",
			Help:      "Corporations that failed during a turn.",
		}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corpsim",
			Subsystem: "turn",
			Name:      "duration_seconds",
			Help:      "Wall time of a full turn run.",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corpsim",
			Subsystem: "turn",
			Name:      "snapshot_failures_total",
			Help:      "Turns aborted because the price snapshot could not be loaded.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Turns, m.Corporations, m.Failures, m.TurnDuration, m.SnapshotFailures)
	}
	return m
}
