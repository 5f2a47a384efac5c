package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/lfarias/meubolso/internal/domain"
)

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	statementsParsed *prometheus.CounterVec
	transactionsFate *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "meubolso_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meubolso_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meubolso_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meubolso_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		statementsParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meubolso_statements_parsed_total",
				Help: "Total OFX statements parsed, by parse strategy.",
			},
			[]string{"strategy"},
		),
		transactionsFate: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meubolso_transactions_imported_total",
				Help: "Total imported transactions by outcome.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrStatementParsed counts a parsed statement per strategy
// (structured or scan).
func (m *Metrics) IncrStatementParsed(strategy string) {
	m.statementsParsed.WithLabelValues(strategy).Inc()
}

// IncrTransactionOutcome counts one imported transaction by outcome
// (inserted, skipped, failed).
func (m *Metrics) IncrTransactionOutcome(status string) {
	m.transactionsFate.WithLabelValues(status).Inc()
}

// AddTransactionOutcomes bulk-adds import outcomes after a run.
func (m *Metrics) AddTransactionOutcomes(inserted, skipped, failed int) {
	m.transactionsFate.WithLabelValues("inserted").Add(float64(inserted))
	m.transactionsFate.WithLabelValues("skipped").Add(float64(skipped))
	m.transactionsFate.WithLabelValues("failed").Add(float64(failed))
}

// GetImportSnapshot reads back the import counters for the
// GET /v1/metrics/imports endpoint.
func (m *Metrics) GetImportSnapshot() *domain.ImportMetrics {
	return &domain.ImportMetrics{
		StatementsParsed: map[string]int64{
			"structured": int64(getCounterValue(m.statementsParsed, "structured")),
			"scan":       int64(getCounterValue(m.statementsParsed, "scan")),
		},
		TransactionsByFate: map[string]int64{
			"inserted": int64(getCounterValue(m.transactionsFate, "inserted")),
			"skipped":  int64(getCounterValue(m.transactionsFate, "skipped")),
			"failed":   int64(getCounterValue(m.transactionsFate, "failed")),
		},
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
