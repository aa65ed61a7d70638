package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Current number of candidates held in the queue
	QueueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "otodoki_queue_size",
		Help: "Current number of candidate tracks in the queue",
	})

	QueueEnqueuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otodoki_queue_enqueued_total",
		Help: "Total candidate tracks accepted into the queue",
	})

	QueueDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otodoki_queue_dropped_total",
		Help: "Candidate tracks rejected by the queue, by reason",
	}, []string{"reason"})

	WorkerCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "otodoki_worker_cycle_duration_seconds",
		Help:    "Duration of one replenishment cycle",
		Buckets: prometheus.DefBuckets,
	})

	WorkerFetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otodoki_worker_fetch_failures_total",
		Help: "Catalog fetch failures seen by the worker, by kind",
	}, []string{"kind"})

	WorkerCyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otodoki_worker_cycles_total",
		Help: "Replenishment cycles by outcome",
	}, []string{"outcome"})

	SuggestionsServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "otodoki_suggestions_served_total",
		Help: "Tracks served by the suggestions endpoint, by ranking mode",
	}, []string{"mode"})

	SuggestionsLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "otodoki_suggestions_latency_seconds",
		Help:    "Latency of the suggestions handler",
		Buckets: prometheus.DefBuckets,
	})
)

func Init() {
	prometheus.MustRegister(
		QueueSize,
		QueueEnqueuedTotal,
		QueueDroppedTotal,
		WorkerCycleDuration,
		WorkerFetchFailures,
		WorkerCyclesTotal,
		SuggestionsServed,
		SuggestionsLatency,
	)
}
