package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pollerTicksTotal, pollerDocumentsTotal, pollerTickDuration, activeSchedules) }

var (
	pollerTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_ticks_total",
			Help: "Poller passes, labeled by trigger source and status.",
		},
		[]string{"source", "status"}, // status: ok | error | locked
	)

	pollerDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_documents_total",
			Help: "Schedules handled by the poller, labeled by outcome.",
		},
		[]string{"outcome"}, // sent | deactivated | failed | skipped
	)

	pollerTickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poller_tick_duration_seconds",
			Help:    "Wall time of one poller pass.",
			Buckets: prometheus.DefBuckets,
		},
	)

	activeSchedules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "poller_active_schedules",
			Help: "Active schedules seen by the last poller pass.",
		},
	)
)

func IncPollerTick(source, status string) {
	pollerTicksTotal.WithLabelValues(norm(source), norm(status)).Inc()
}

func AddPollerDocuments(outcome string, n int) {
	if n <= 0 {
		return
	}
	pollerDocumentsTotal.WithLabelValues(norm(outcome)).Add(float64(n))
}

func ObservePollerTick(seconds float64) {
	pollerTickDuration.Observe(seconds)
}

func SetActiveSchedules(n int) {
	activeSchedules.Set(float64(n))
}
