// Package metrics exposes Prometheus counters for table persistence. The
// in-memory column operations are never instrumented; metrics are recorded
// where tables cross a file, snapshot or object-store boundary.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	n, err := writeTable(w, table)
//	metrics.ObserveWrite("parquet", table.Len(), n, timer.Stop())
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsWritten counts rows persisted, by format (parquet/arrow/avro/snapshot)
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structcol_rows_written_total",
			Help: "Total number of table rows written",
		},
		[]string{"format"},
	)

	// RowsRead counts rows loaded, by format
	RowsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structcol_rows_read_total",
			Help: "Total number of table rows read",
		},
		[]string{"format"},
	)

	// BytesWritten counts encoded bytes, by format
	BytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structcol_bytes_written_total",
			Help: "Total number of encoded bytes written",
		},
		[]string{"format"},
	)

	// Snapshots counts snapshot encode/decode calls.
	// Labels: operation (encode/decode), algorithm
	Snapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structcol_snapshots_total",
			Help: "Total number of column snapshots encoded or decoded",
		},
		[]string{"operation", "algorithm"},
	)

	// ObjectsStored counts objects put to or fetched from a store.
	// Labels: store (local/s3/gcs), operation (put/get)
	ObjectsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structcol_store_objects_total",
			Help: "Total number of objects transferred through a store",
		},
		[]string{"store", "operation"},
	)

	// PersistLatency tracks write and read durations in seconds.
	// Labels: operation (write/read), format
	PersistLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "structcol_persist_latency_seconds",
			Help:    "Table persistence latency in seconds",
			Buckets: []float64{1e-4, 1e-3, 1e-2, 0.1, 1, 10},
		},
		[]string{"operation", "format"},
	)
)

// ObserveWrite records one completed table write
func ObserveWrite(format string, rows int, bytes int64, d time.Duration) {
	RowsWritten.WithLabelValues(format).Add(float64(rows))
	if bytes > 0 {
		BytesWritten.WithLabelValues(format).Add(float64(bytes))
	}
	PersistLatency.WithLabelValues("write", format).Observe(d.Seconds())
}

// ObserveRead records one completed table read
func ObserveRead(format string, rows int, d time.Duration) {
	RowsRead.WithLabelValues(format).Add(float64(rows))
	PersistLatency.WithLabelValues("read", format).Observe(d.Seconds())
}

// Timer measures the duration of one operation
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
