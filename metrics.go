package fieldsort

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/fieldsort/strategy"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    sortCounter   *prometheus.CounterVec
//	    sortHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSort(s strategy.Strategy, candidates, returned int, d time.Duration, err error) {
//	    p.sortCounter.WithLabelValues(s.String()).Inc()
//	    p.sortHistogram.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordSort is called when a sort sequence is exhausted or abandoned,
	// or when Sort rejects its arguments (err is then set).
	// duration covers the time from the Sort call until then.
	RecordSort(s strategy.Strategy, candidates, returned int, duration time.Duration, err error)

	// RecordIndex is called after each index operation.
	RecordIndex(duration time.Duration, err error)

	// RecordUnindex is called after each unindex operation.
	RecordUnindex(duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSort(strategy.Strategy, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordIndex(time.Duration, error)                             {}
func (NoopMetricsCollector) RecordUnindex(time.Duration)                                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SortCount        atomic.Int64
	SortErrors       atomic.Int64
	SortTotalNanos   atomic.Int64
	SortReturned     atomic.Int64
	ScanForwardCount atomic.Int64
	NBestCount       atomic.Int64
	FullSortCount    atomic.Int64
	IndexCount       atomic.Int64
	IndexErrors      atomic.Int64
	IndexTotalNanos  atomic.Int64
	UnindexCount     atomic.Int64
}

// RecordSort implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSort(s strategy.Strategy, candidates, returned int, duration time.Duration, err error) {
	b.SortCount.Add(1)
	b.SortTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SortErrors.Add(1)
		return
	}
	b.SortReturned.Add(int64(returned))
	switch s {
	case strategy.ScanForward:
		b.ScanForwardCount.Add(1)
	case strategy.NBest:
		b.NBestCount.Add(1)
	case strategy.FullSort:
		b.FullSortCount.Add(1)
	}
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(duration time.Duration, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
	}
}

// RecordUnindex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUnindex(time.Duration) {
	b.UnindexCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SortCount:        b.SortCount.Load(),
		SortErrors:       b.SortErrors.Load(),
		SortAvgNanos:     avg(b.SortTotalNanos.Load(), b.SortCount.Load()),
		SortReturned:     b.SortReturned.Load(),
		ScanForwardCount: b.ScanForwardCount.Load(),
		NBestCount:       b.NBestCount.Load(),
		FullSortCount:    b.FullSortCount.Load(),
		IndexCount:       b.IndexCount.Load(),
		IndexErrors:      b.IndexErrors.Load(),
		IndexAvgNanos:    avg(b.IndexTotalNanos.Load(), b.IndexCount.Load()),
		UnindexCount:     b.UnindexCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SortCount        int64
	SortErrors       int64
	SortAvgNanos     int64
	SortReturned     int64
	ScanForwardCount int64
	NBestCount       int64
	FullSortCount    int64
	IndexCount       int64
	IndexErrors      int64
	IndexAvgNanos    int64
	UnindexCount     int64
}
