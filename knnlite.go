package knnlite

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/knnlite/distance"
	"github.com/hupe1980/knnlite/internal/resource"
	"github.com/hupe1980/knnlite/internal/scan"
	"github.com/hupe1980/knnlite/internal/store"
)

// Engine is an exact nearest-neighbor index over float32 vectors.
//
// An Engine starts Uninitialized unless WithDimension is given. Initialize
// or a successful Load moves it to Ready; Close ends its life.
type Engine struct {
	mu     sync.Mutex
	store  *store.Store // nil until Initialize or Load
	closed bool

	opts     options
	rc       *resource.Controller
	logger   *Logger
	metrics  MetricsCollector
	autosave *autosaver
}

// New creates an Engine.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.backend != BackendExact {
		return nil, unavailable(o.backend)
	}
	return newEngine(o), nil
}

func newEngine(o options) *Engine {
	e := &Engine{
		opts: o,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   o.memoryLimit,
			MaxBackgroundSaves: 1,
			SaveInterval:       o.autosaveInterval,
		}),
		logger:  o.logger,
		metrics: o.metricsCollector,
	}

	if o.hasDimension {
		e.store = store.New(o.dimension, e.rc)
	}
	if o.autosavePath != "" {
		e.autosave = newAutosaver(e, o.autosavePath)
	}
	return e
}

// Initialize discards every record and sets the dimension. It succeeds on
// any open engine.
func (e *Engine) Initialize(ctx context.Context, dim int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	if e.store == nil {
		e.store = store.New(dim, e.rc)
	} else {
		e.store.Reset(dim)
	}

	e.metrics.RecordInitialize(dim)
	e.logger.LogInitialize(ctx, dim)
	return nil
}

// Add appends len(ids) records. vectors holds the rows back to back, so it
// must contain exactly len(ids)*dim values, and dim must equal the engine's
// dimension. Either every record is added or none is. Ids are not
// deduplicated.
func (e *Engine) Add(ctx context.Context, ids []int64, vectors []float32, dim int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, ErrClosed
	}
	if e.store == nil {
		return 0, ErrNotInitialized
	}

	n, err := e.store.Append(ids, vectors, dim)
	err = translateError(err)

	elapsed := time.Since(start)
	e.metrics.RecordAdd(n, elapsed, err)
	e.logger.LogAdd(ctx, n, e.store.Len(), elapsed, err)

	if err == nil && n > 0 {
		e.autosave.schedule()
	}
	return n, err
}

// Dimension returns the engine's dimension, or 0 if it is not initialized.
func (e *Engine) Dimension() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return 0
	}
	return e.store.Dim()
}

// Len returns the number of stored records.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return 0
	}
	return e.store.Len()
}

// Ready reports whether the engine is initialized and open.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return !e.closed && e.store != nil
}

// Stats describes the engine state.
type Stats struct {
	Ready       bool
	Closed      bool
	Dimension   int
	Count       int
	DistinctIDs uint64
	SizeBytes   int64
	MemoryLimit int64
	Workers     int
	Kernel      string
	Lanes       int
}

// Stats returns the current engine statistics. Its cost does not depend on
// the number of stored records.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	k := distance.Default()
	s := Stats{
		Ready:       !e.closed && e.store != nil,
		Closed:      e.closed,
		MemoryLimit: e.rc.MemoryLimit(),
		Workers:     e.workers(),
		Kernel:      k.Name(),
		Lanes:       k.Lanes(),
	}

	if e.store != nil {
		v := e.store.View()
		s.Dimension = v.Dim
		s.Count = v.Len()
		s.SizeBytes = e.store.SizeBytes()
		s.DistinctIDs = e.store.DistinctIDs()
	}
	return s
}

func (e *Engine) workers() int {
	if e.opts.workers > 0 {
		return e.opts.workers
	}
	return scan.DefaultWorkers()
}
