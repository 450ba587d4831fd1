// ABOUTME: Prometheus metrics for briefing generation and playback
// ABOUTME: Package-level collectors with small recorder helpers
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbrief_generations_total",
		Help: "Total number of briefing generation runs",
	}, []string{"status"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbrief_generation_duration_seconds",
		Help:    "Duration of briefing generation runs in seconds",
		Buckets: []float64{5, 10, 20, 30, 60, 120, 300},
	})

	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbrief_backend_requests_total",
		Help: "Total number of AI backend requests",
	}, []string{"step", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sportsbrief_backend_latency_seconds",
		Help:    "AI backend request latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"step"})

	playbackDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbrief_playback_decode_errors_total",
		Help: "Total number of briefing payloads that failed to decode",
	})
)

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordGeneration records one finished generation run
func RecordGeneration(started time.Time, success bool) {
	generationsTotal.WithLabelValues(statusLabel(success)).Inc()
	generationDuration.Observe(time.Since(started).Seconds())
}

// RecordBackendCall records one backend request for a pipeline step
func RecordBackendCall(step string, started time.Time, err error) {
	backendRequests.WithLabelValues(step, statusLabel(err == nil)).Inc()
	backendLatency.WithLabelValues(step).Observe(time.Since(started).Seconds())
}

// RecordDecodeError counts a payload that could not be decoded for playback
func RecordDecodeError() {
	playbackDecodeErrors.Inc()
}
