// Package metrics exposes prometheus collectors for the lookup pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Drop reasons recorded on the dropped counters
const (
	ReasonMissingData       = "missing_data"
	ReasonUnsupportedScheme = "unsupported_scheme"
	ReasonNotFound          = "not_found"
	ReasonError             = "error"
)

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Registry *prometheus.Registry

	UpstreamRequests        *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	RecordsDropped          *prometheus.CounterVec
	RepositoriesDropped     *prometheus.CounterVec
	RepositoriesRanked      prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exploitscout_upstream_requests_total",
			Help: "Requests sent to upstream APIs by source and HTTP status code",
		},
		[]string{"source", "code"},
	)

	m.UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exploitscout_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	m.RecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exploitscout_records_dropped_total",
			Help: "Vulnerability records excluded because they could not be built",
		},
		[]string{"reason"},
	)

	m.RepositoriesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exploitscout_repositories_dropped_total",
			Help: "Exploit repositories left out of a ranking because resolution failed",
		},
		[]string{"reason"},
	)

	m.RepositoriesRanked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exploitscout_repositories_ranked_total",
			Help: "Exploit repositories resolved and ranked",
		},
	)

	m.Registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamRequestDuration,
		m.RecordsDropped,
		m.RepositoriesDropped,
		m.RepositoriesRanked,
	)

	return m
}

// ObserveRequest records one upstream request. code is 0 when no response arrived.
func (m *Metrics) ObserveRequest(source string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(source, strconv.Itoa(code)).Inc()
	m.UpstreamRequestDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// RecordDropped counts a vulnerability record excluded from a query result
func (m *Metrics) RecordDropped(reason string) {
	if m == nil {
		return
	}
	m.RecordsDropped.WithLabelValues(reason).Inc()
}

// RepositoryDropped counts a repository excluded from a ranking
func (m *Metrics) RepositoryDropped(reason string) {
	if m == nil {
		return
	}
	m.RepositoriesDropped.WithLabelValues(reason).Inc()
}

// RepositoriesResolved counts n repositories that made it into a ranking
func (m *Metrics) RepositoriesResolved(n int) {
	if m == nil {
		return
	}
	m.RepositoriesRanked.Add(float64(n))
}

// WriteToFile writes the registry in text exposition format to path
func (m *Metrics) WriteToFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
