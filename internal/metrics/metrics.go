// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics instruments the Dynamic Data Access Engine with
// Prometheus metrics: ingest/query throughput and latency, statement-cache
// efficiency, and scatter-gather fan-out width.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestBatchDuration measures end-to-end IngestEngine.IngestBatch latency.
	IngestBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_duration_seconds",
			Help:    "Duration of ingest batch processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tenant_id", "periodicity", "data_type"},
	)

	// IngestBatchErrors counts ingest failures by taxonomy error kind.
	IngestBatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_batch_errors_total",
			Help: "Total number of ingest batch failures by error kind",
		},
		[]string{"tenant_id", "error_kind"},
	)

	// IngestPartitionBatches counts logged batches submitted per ingest call.
	IngestPartitionBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_partition_batches_total",
			Help: "Total number of per-partition logged batches submitted",
		},
	)

	// QueryDuration measures end-to-end QueryEngine.Retrieve latency.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_retrieve_duration_seconds",
			Help:    "Duration of query retrieve processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tenant_id", "periodicity", "data_type"},
	)

	// QueryScatterGatherSelects counts SELECTs issued per retrieve call.
	QueryScatterGatherSelects = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "query_scatter_gather_selects",
			Help:    "Number of bucket SELECTs issued per retrieve call",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	// QueryErrors counts query failures by taxonomy error kind.
	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_errors_total",
			Help: "Total number of query failures by error kind",
		},
		[]string{"tenant_id", "error_kind"},
	)

	// StatementCacheHits/Misses track StatementCache effectiveness.
	StatementCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statement_cache_hits_total",
			Help: "Total number of prepared-statement cache hits",
		},
	)
	StatementCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statement_cache_misses_total",
			Help: "Total number of prepared-statement cache misses (prepare issued)",
		},
	)
	StatementCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statement_cache_evictions_total",
			Help: "Total number of prepared statements evicted from the cache",
		},
	)

	// UDTMetadataLookups tracks UdtCodec's keyspace metadata fetch volume.
	UDTMetadataLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "udt_metadata_lookups_total",
			Help: "Total number of UDT metadata lookups by keyspace",
		},
		[]string{"keyspace", "result"},
	)

	// StoreCircuitBreakerState exposes the gobreaker state as a gauge
	// (0=closed, 1=half-open, 2=open).
	StoreCircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_circuit_breaker_state",
			Help: "Current state of the store circuit breaker (0=closed,1=half-open,2=open)",
		},
	)
)
