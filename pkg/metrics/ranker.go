package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RankerMetrics records metadata for leaderboard rebuild passes.
type RankerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	ranked   prometheus.Gauge
}

// NewRankerMetrics registers the ranker metrics on the provided registerer.
func NewRankerMetrics(reg prometheus.Registerer) *RankerMetrics {
	if reg == nil {
		return &RankerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ranker_rebuild_duration_seconds",
		Help:    "Duration of leaderboard rebuild passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranker_rebuild_success",
		Help: "Successful leaderboard rebuild passes.",
	}, []string{"trigger"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranker_rebuild_failure",
		Help: "Failed leaderboard rebuild passes.",
	}, []string{"trigger"})
	ranked := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ranker_ranked_vehicles",
		Help: "Number of vehicles ranked by the latest rebuild.",
	})
	reg.MustRegister(duration, success, failure, ranked)
	return &RankerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		ranked:   ranked,
	}
}

// ObserveDuration records the duration of a rebuild for the named trigger.
func (r *RankerMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named trigger.
func (r *RankerMetrics) IncSuccess(trigger string) {
	if r == nil || r.success == nil {
		return
	}
	r.success.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncFailure increments the failure counter for the named trigger.
func (r *RankerMetrics) IncFailure(trigger string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// SetRankedVehicles records how many vehicles the latest pass ranked.
func (r *RankerMetrics) SetRankedVehicles(count int) {
	if r == nil || r.ranked == nil {
		return
	}
	r.ranked.Set(float64(count))
}

func normalizeLabel(trigger string) string {
	if trigger == "" {
		return "unknown"
	}
	return trigger
}
