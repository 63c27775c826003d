package knnlite

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/knnlite/persistence"
)

type options struct {
	dimension        int
	hasDimension     bool
	workers          int
	metricsCollector MetricsCollector
	logger           *Logger
	snapshot         persistence.EncodeOptions
	memoryLimit      int64
	autosavePath     string
	autosaveInterval time.Duration
	backend          Backend
}

// Option configures an Engine.
type Option func(*options)

// WithDimension initializes the engine with dim at construction, as if
// Initialize(ctx, dim) had been called.
func WithDimension(dim int) Option {
	return func(o *options) {
		o.dimension = dim
		o.hasDimension = true
	}
}

// WithWorkers sets the number of goroutines a search fans out to.
// 0 (the default) uses one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &knnlite.BasicMetricsCollector{}
//	eng, _ := knnlite.New(knnlite.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := knnlite.NewJSONLogger(slog.LevelInfo)
//	eng, _ := knnlite.New(knnlite.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSnapshotFormat selects the layout Save writes. The default is the raw
// v0 layout; compression requires persistence.FormatV1.
func WithSnapshotFormat(format persistence.Format, compression persistence.Compression) Option {
	return func(o *options) {
		o.snapshot = persistence.EncodeOptions{Format: format, Compression: compression}
	}
}

// WithMemoryLimit caps the bytes held by stored ids and vectors. An Add or
// Load that would exceed it fails with ErrMemoryLimitExceeded.
// 0 (the default) means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithAutosave saves the index to path in the background after successful
// adds, at most once per minInterval. Close flushes a pending save.
func WithAutosave(path string, minInterval time.Duration) Option {
	return func(o *options) {
		o.autosavePath = path
		o.autosaveInterval = minInterval
	}
}

// WithBackend selects the search strategy used by Open.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		backend:          BackendExact,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) validate() error {
	if o.workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrConfiguration, o.workers)
	}
	if o.memoryLimit < 0 {
		return fmt.Errorf("%w: memory limit must not be negative, got %d", ErrConfiguration, o.memoryLimit)
	}
	if o.autosaveInterval < 0 {
		return fmt.Errorf("%w: autosave interval must not be negative, got %s", ErrConfiguration, o.autosaveInterval)
	}
	if o.autosavePath == "" && o.autosaveInterval > 0 {
		return fmt.Errorf("%w: autosave interval set without a path", ErrConfiguration)
	}
	if err := o.snapshot.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}
