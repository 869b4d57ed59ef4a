package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hx-hudson/Music-datbase/internal/models"
)

// Outcome label values for batches and queries.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Manager owns the metric collectors and the registry they live on.
//
// A disabled Manager accepts every Record call and drops it.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Loader metrics
	batchesTotal     *prometheus.CounterVec
	recordsAccepted  *prometheus.CounterVec
	recordsRejected  *prometheus.CounterVec
	tracksSkipped    prometheus.Counter
	batchDuration    *prometheus.HistogramVec
	lastBatchRecords *prometheus.GaugeVec

	// Query metrics
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager on its own registry unless [WithRegistry] is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "musicdb",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.batchesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_batches_total",
		Help:      "Loader batches by loader and outcome",
	}, []string{"loader", "outcome"})

	m.recordsAccepted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_records_accepted_total",
		Help:      "Input records applied to the catalog",
	}, []string{"loader"})

	m.recordsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_records_rejected_total",
		Help:      "Input records rejected by reason",
	}, []string{"loader", "reason"})

	m.tracksSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_album_tracks_skipped_total",
		Help:      "Album tracks skipped because the artist already had a song with that title",
	})

	m.batchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_batch_duration_seconds",
		Help:      "Wall time of a loader batch",
		Buckets:   m.histogramBuckets,
	}, []string{"loader"})

	m.lastBatchRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_last_batch_records",
		Help:      "Number of input records in the most recent batch",
	}, []string{"loader"})

	m.queriesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queries_total",
		Help:      "Catalog queries by name and outcome",
	}, []string{"query", "outcome"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_duration_seconds",
		Help:      "Catalog query latency",
		Buckets:   m.histogramBuckets,
	}, []string{"query"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   m.histogramBuckets,
	}, []string{"route"})
}

// Enabled reports whether metrics are being collected.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Registry returns the registry backing [Manager.Handler].
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBatch records one finished loader batch.
func (m *Manager) RecordBatch(loader string, records, accepted, skipped int, elapsed time.Duration, err error) {
	if !m.enabled {
		return
	}

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.batchesTotal.WithLabelValues(loader, outcome).Inc()
	m.batchDuration.WithLabelValues(loader).Observe(elapsed.Seconds())
	m.lastBatchRecords.WithLabelValues(loader).Set(float64(records))

	if err != nil {
		return
	}
	m.recordsAccepted.WithLabelValues(loader).Add(float64(accepted))
	m.tracksSkipped.Add(float64(skipped))
}

// RecordRejection counts one rejected record.
func (m *Manager) RecordRejection(loader string, reason models.Reason) {
	if !m.enabled {
		return
	}
	m.recordsRejected.WithLabelValues(loader, string(reason)).Inc()
}

// RecordQuery records one query execution.
func (m *Manager) RecordQuery(query string, elapsed time.Duration, err error) {
	if !m.enabled {
		return
	}

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.queriesTotal.WithLabelValues(query, outcome).Inc()
	m.queryDuration.WithLabelValues(query).Observe(elapsed.Seconds())
}

// RecordHTTPRequest records one served HTTP request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
