package knnlite

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/knnlite/internal/scan"
	"github.com/hupe1980/knnlite/internal/topk"
)

// Result is one search hit.
type Result struct {
	ID       int64
	Distance float32 // squared L2
}

// SearchOptions contains options for a search.
type SearchOptions struct {
	// Filter restricts candidates to ids contained in the bitmap. Ids are
	// stored as uint64(id), see NewIDFilter.
	Filter *roaring64.Bitmap
}

// SearchOption configures a search.
type SearchOption func(*SearchOptions)

// WithFilter only considers records whose id is in filter. A nil filter
// considers every record.
func WithFilter(filter *roaring64.Bitmap) SearchOption {
	return func(o *SearchOptions) {
		o.Filter = filter
	}
}

// NewIDFilter builds a filter bitmap for WithFilter.
func NewIDFilter(ids ...int64) *roaring64.Bitmap {
	b := roaring64.New()
	for _, id := range ids {
		b.Add(uint64(id))
	}
	return b
}

// Search returns the ids of the k records nearest to query, nearest first.
// Ties are broken by insertion order. The result is empty, with a nil
// error, when len(query) differs from the engine's dimension, the engine
// holds no records, or k <= 0.
func (e *Engine) Search(ctx context.Context, query []float32, k int) ([]int64, error) {
	results, err := e.SearchResults(ctx, query, k)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids, nil
}

// SearchResults is like Search but also returns the squared L2 distance of
// every hit.
func (e *Engine) SearchResults(ctx context.Context, query []float32, k int, optFns ...SearchOption) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts SearchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if e.store == nil {
		e.metrics.RecordSearch(k, 0, time.Since(start), ErrNotInitialized)
		e.logger.LogSearch(ctx, k, 0, 0, 0, time.Since(start), ErrNotInitialized)
		return nil, ErrNotInitialized
	}

	v := e.store.View()
	if len(query) != v.Dim || v.Len() == 0 || k <= 0 {
		elapsed := time.Since(start)
		e.metrics.RecordSearch(k, 0, elapsed, nil)
		e.logger.LogSearch(ctx, k, v.Len(), 0, 0, elapsed, nil)
		return []Result{}, nil
	}

	scanStart := time.Now()
	scores := make([]float32, v.Len())
	scan.Scan(query, v.Vectors, v.Dim, scores, e.opts.workers)
	scanned := time.Since(scanStart)

	var keep func(row int) bool
	if opts.Filter != nil {
		keep = func(row int) bool {
			return opts.Filter.Contains(uint64(v.IDs[row]))
		}
	}

	rows := topk.SelectFunc(scores, k, keep)

	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{ID: v.IDs[row], Distance: scores[row]}
	}

	elapsed := time.Since(start)
	e.metrics.RecordSearch(k, len(results), elapsed, nil)
	e.logger.LogSearch(ctx, k, v.Len(), len(results), scanned, elapsed, nil)
	return results, nil
}
