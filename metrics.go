package knnlite

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prometheus package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordInitialize is called after each Initialize.
	RecordInitialize(dim int)

	// RecordAdd is called after each Add. count is the number of records
	// appended, err is nil if successful.
	RecordAdd(count int, duration time.Duration, err error)

	// RecordSearch is called after each search. k is the number of
	// neighbors requested and results the number returned.
	RecordSearch(k, results int, duration time.Duration, err error)

	// RecordSave is called after each snapshot save with the number of
	// records written.
	RecordSave(count int, duration time.Duration, err error)

	// RecordLoad is called after each snapshot load with the number of
	// records restored.
	RecordLoad(count int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInitialize(int)                        {}
func (NoopMetricsCollector) RecordAdd(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InitializeCount  atomic.Int64
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddedVectors     atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	SaveCount        atomic.Int64
	SaveErrors       atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
}

// RecordInitialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInitialize(int) {
	b.InitializeCount.Add(1)
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(count int, _ time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddedVectors.Add(int64(count))
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_, _ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ int, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InitializeCount: b.InitializeCount.Load(),
		AddCount:        b.AddCount.Load(),
		AddErrors:       b.AddErrors.Load(),
		AddedVectors:    b.AddedVectors.Load(),
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchAvgNanos:  b.getAvgSearchNanos(),
		SaveCount:       b.SaveCount.Load(),
		SaveErrors:      b.SaveErrors.Load(),
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InitializeCount int64
	AddCount        int64
	AddErrors       int64
	AddedVectors    int64
	SearchCount     int64
	SearchErrors    int64
	SearchAvgNanos  int64
	SaveCount       int64
	SaveErrors      int64
	LoadCount       int64
	LoadErrors      int64
}
