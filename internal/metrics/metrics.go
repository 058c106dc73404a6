// Package metrics provides observability for the dev verification
// backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the backend's Prometheus collectors. A nil *Metrics is
// safe to call, so wiring stays optional in tests.
type Metrics struct {
	// Verification outcomes by terminal status.
	Outcomes *prometheus.CounterVec

	// Time from job creation to its terminal status.
	ProcessingLatency prometheus.Histogram

	// Submissions accepted by the initiate endpoint.
	Submissions prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veriflow_verification_outcomes_total",
			Help: "Total verification jobs reaching a terminal status",
		}, []string{"status"}),

		ProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veriflow_verification_processing_seconds",
			Help:    "Time from job submission to terminal status",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),

		Submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veriflow_verification_submissions_total",
			Help: "Total accepted verification submissions",
		}),
	}
}

// IncrementOutcome records a terminal verification outcome.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// ObserveProcessing records how long a job took to reach a terminal
// status.
func (m *Metrics) ObserveProcessing(d time.Duration) {
	if m != nil {
		m.ProcessingLatency.Observe(d.Seconds())
	}
}

// IncrementSubmissions records one accepted submission.
func (m *Metrics) IncrementSubmissions() {
	if m != nil {
		m.Submissions.Inc()
	}
}
