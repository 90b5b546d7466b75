// Package metrics exposes Prometheus collectors for extraction outcomes.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

var (
	outcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkscout_outcomes_total",
			Help: "Total extraction outcomes by status and reason code",
		},
		[]string{"status", "reason"},
	)

	searchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linkscout_search_failures_total",
		Help: "Search provider calls that failed and were treated as empty",
	})

	extractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkscout_extract_duration_seconds",
		Help:    "Time spent handling one extraction request",
		Buckets: prometheus.DefBuckets,
	})

	registerOnce sync.Once
)

// Register adds the collectors to reg. Only the first call has any effect.
// Recording works whether or not the collectors are registered.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(outcomes, searchFailures, extractDuration)
	})
}

// Recorder records pipeline events.
type Recorder struct{}

// RecordOutcome counts one classified response.
func (Recorder) RecordOutcome(resp *profile.Response) {
	outcomes.WithLabelValues(string(resp.Status), string(resp.ReasonCode)).Inc()
}

// RecordSearchFailure counts one absorbed provider failure.
func (Recorder) RecordSearchFailure() {
	searchFailures.Inc()
}

// ObserveDuration records how long one extraction took.
func (Recorder) ObserveDuration(d time.Duration) {
	extractDuration.Observe(d.Seconds())
}
