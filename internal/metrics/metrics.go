// Package metrics provides Prometheus metrics for the column store
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the column store
type Metrics struct {
	// Query operation metrics
	QueryOperationsTotal   *prometheus.CounterVec
	QueryOperationDuration *prometheus.HistogramVec

	// Table metrics
	BaseRecordsTotal prometheus.Gauge
	TailRecordsTotal prometheus.Gauge
	TablesTotal      prometheus.Gauge

	// Index metrics
	IndexLookupsTotal *prometheus.GaugeVec
	IndexEntriesTotal *prometheus.GaugeVec
	IndexPendingTotal *prometheus.GaugeVec

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// Query operation metrics
	m.QueryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "columnstore_query_operations_total",
			Help: "Total number of query operations",
		},
		[]string{"operation", "status"},
	)

	m.QueryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "columnstore_query_operation_duration_seconds",
			Help:    "Duration of query operations in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// Table metrics
	m.BaseRecordsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "columnstore_base_records_total",
			Help: "Total number of base records across tables",
		},
	)

	m.TailRecordsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "columnstore_tail_records_total",
			Help: "Total number of tail records across tables",
		},
	)

	m.TablesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "columnstore_tables_total",
			Help: "Number of tables in the database",
		},
	)

	// Index metrics
	m.IndexLookupsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "columnstore_index_lookups_total",
			Help: "Lookups served per indexed column",
		},
		[]string{"column", "kind"},
	)

	m.IndexEntriesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "columnstore_index_entries_total",
			Help: "Entries held per indexed column",
		},
		[]string{"column"},
	)

	m.IndexPendingTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "columnstore_index_pending_total",
			Help: "Entries buffered in the maintenance pool per column",
		},
		[]string{"column"},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "columnstore_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordQueryOperation records a query operation with its status
func (m *Metrics) RecordQueryOperation(operation string, status string, duration time.Duration) {
	m.QueryOperationsTotal.WithLabelValues(operation, status).Inc()
	m.QueryOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateTableStats updates record counts
func (m *Metrics) UpdateTableStats(baseRecords, tailRecords, tables int64) {
	m.BaseRecordsTotal.Set(float64(baseRecords))
	m.TailRecordsTotal.Set(float64(tailRecords))
	m.TablesTotal.Set(float64(tables))
}

// UpdateIndexStats updates per-column index gauges
func (m *Metrics) UpdateIndexStats(column string, pointLookups, rangeLookups int64, entries, pending int) {
	m.IndexLookupsTotal.WithLabelValues(column, "point").Set(float64(pointLookups))
	m.IndexLookupsTotal.WithLabelValues(column, "range").Set(float64(rangeLookups))
	m.IndexEntriesTotal.WithLabelValues(column).Set(float64(entries))
	m.IndexPendingTotal.WithLabelValues(column).Set(float64(pending))
}
