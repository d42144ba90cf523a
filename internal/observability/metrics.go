// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Provider metrics
	ProviderRequests     *prometheus.CounterVec
	ProviderErrors       *prometheus.CounterVec
	ProviderEventsParsed *prometheus.CounterVec
	ProviderCallLatency  *prometheus.HistogramVec

	// Discovery run metrics
	DiscoveryRunsTotal  *prometheus.CounterVec
	DiscoveryDuration   prometheus.Histogram
	ArtistsSearched     prometheus.Counter
	EventsDiscovered    prometheus.Counter
	DuplicatesCollapsed prometheus.Counter
	BatchesProcessed    prometheus.Counter

	// Auth metrics
	TokenRefreshes *prometheus.CounterVec

	// Storage metrics
	EventsSaved     prometheus.Counter
	EventSaveErrors prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "concert_scout"
	}

	return &Metrics{
		// Provider metrics
		ProviderRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of provider search requests by source",
		}, []string{"source"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Total number of provider search failures by source and kind",
		}, []string{"source", "kind"}),
		ProviderEventsParsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "events_parsed_total",
			Help:      "Total number of canonical events parsed by source",
		}, []string{"source"}),
		ProviderCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_latency_seconds",
			Help:      "Provider search call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		// Discovery run metrics
		DiscoveryRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "runs_total",
			Help:      "Total number of discovery runs by status",
		}, []string{"status"}),
		DiscoveryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "duration_seconds",
			Help:      "Discovery run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		ArtistsSearched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "artists_searched_total",
			Help:      "Total number of artists searched across all runs",
		}),
		EventsDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "events_discovered_total",
			Help:      "Total number of events surviving deduplication",
		}),
		DuplicatesCollapsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "duplicates_collapsed_total",
			Help:      "Total number of duplicate listings collapsed",
		}),
		BatchesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "batches_processed_total",
			Help:      "Total number of artist batches processed",
		}),

		// Auth metrics
		TokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_refreshes_total",
			Help:      "Total number of access token refreshes by status",
		}, []string{"status"}),

		// Storage metrics
		EventsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "events_saved_total",
			Help:      "Total number of events persisted",
		}),
		EventSaveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "event_save_errors_total",
			Help:      "Total number of event persistence failures",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordProviderRequest records one provider search outcome. An empty errKind
// means the call succeeded.
func RecordProviderRequest(source string, events int, seconds float64, errKind string) {
	DefaultMetrics.ProviderRequests.WithLabelValues(source).Inc()
	DefaultMetrics.ProviderCallLatency.WithLabelValues(source).Observe(seconds)
	if errKind != "" {
		DefaultMetrics.ProviderErrors.WithLabelValues(source, errKind).Inc()
		return
	}
	DefaultMetrics.ProviderEventsParsed.WithLabelValues(source).Add(float64(events))
}

// RecordDiscoveryRun records a completed discovery run.
func RecordDiscoveryRun(status string, durationSeconds float64) {
	DefaultMetrics.DiscoveryRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.DiscoveryDuration.Observe(durationSeconds)
}

// RecordBatch records one finished artist batch.
func RecordBatch(artists int) {
	DefaultMetrics.BatchesProcessed.Inc()
	DefaultMetrics.ArtistsSearched.Add(float64(artists))
}

// RecordDedup records the deduplication outcome of one run.
func RecordDedup(input, output int) {
	DefaultMetrics.EventsDiscovered.Add(float64(output))
	if input > output {
		DefaultMetrics.DuplicatesCollapsed.Add(float64(input - output))
	}
}

// RecordTokenRefresh records one token refresh attempt.
func RecordTokenRefresh(status string) {
	DefaultMetrics.TokenRefreshes.WithLabelValues(status).Inc()
}

// RecordEventSave records the outcome of one event upsert.
func RecordEventSave(err error) {
	if err != nil {
		DefaultMetrics.EventSaveErrors.Inc()
		return
	}
	DefaultMetrics.EventsSaved.Inc()
}
