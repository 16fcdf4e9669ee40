// Package metrics exposes Prometheus collectors for query execution and
// store loading.
//
// Collectors are registered on the default registry at init, so Handler
// serves them without further wiring:
//
//	timer := metrics.NewTimer()
//	report, err := run()
//	metrics.ObserveQuery("memory", timer.Elapsed(), err)
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

const namespace = "weatherscan"

var (
	// QueriesTotal counts finished queries by backend and status.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of extreme-value queries",
		},
		[]string{"backend", "status"},
	)

	// QueryDuration tracks end-to-end query latency.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"backend"},
	)

	// RowsMatched counts positions surviving each filter stage.
	RowsMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_matched_total",
			Help:      "Row positions kept by each filter stage",
		},
		[]string{"backend", "stage"},
	)

	// StoreRows is the row count of each loaded store.
	StoreRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_rows",
			Help:      "Rows held by a column store",
		},
		[]string{"backend"},
	)

	// ResidentMemory is the process RSS sampled after a store is loaded.
	ResidentMemory = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_resident_bytes",
			Help:      "Resident set size sampled after loading data",
		},
	)
)

// Timer measures elapsed time from creation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ObserveQuery records one finished query.
func ObserveQuery(backend string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	QueriesTotal.WithLabelValues(backend, status).Inc()
	QueryDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// ObserveRows adds the number of positions kept by a filter stage.
func ObserveRows(backend, stage string, n int) {
	RowsMatched.WithLabelValues(backend, stage).Add(float64(n))
}

// SampleResidentMemory reads the current process RSS, stores it in
// ResidentMemory and returns it.
func SampleResidentMemory() (uint64, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, fmt.Errorf("failed to inspect process: %w", err)
	}
	info, err := p.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("failed to read memory info: %w", err)
	}
	ResidentMemory.Set(float64(info.RSS))
	return info.RSS, nil
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
