// Package scan computes query distances to every stored row in parallel.
//
// The rows are split into at most T contiguous, non-overlapping ranges of
// ceil(N/T) rows. Each range is scored by its own goroutine, which writes
// only its slice of the output buffer. Scan returns after every goroutine
// has finished.
package scan

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knnlite/internal/simd"
)

// fallbackWorkers is used when the runtime reports no usable CPU count.
const fallbackWorkers = 2

// Range is a half-open row interval [Start, End).
type Range struct {
	Start int
	End   int
}

// DefaultWorkers returns the number of workers used when none is configured.
func DefaultWorkers() int {
	if n := runtime.NumCPU(); n >= 1 {
		return n
	}
	return fallbackWorkers
}

// Ranges partitions n rows into contiguous ranges of ceil(n/workers) rows.
// workers <= 0 selects DefaultWorkers.
func Ranges(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	chunk := (n + workers - 1) / workers
	ranges := make([]Range, 0, (n+chunk-1)/chunk)
	for start := 0; start < n; start += chunk {
		ranges = append(ranges, Range{Start: start, End: min(start+chunk, n)})
	}
	return ranges
}

// Scan writes the squared L2 distance from query to row i of vectors into
// out[i] for every i < len(out). vectors must hold at least len(out) rows
// of width dim.
func Scan(query, vectors []float32, dim int, out []float32, workers int) {
	n := len(out)
	if n == 0 || dim <= 0 {
		return
	}

	var g errgroup.Group
	for _, r := range Ranges(n, workers) {
		g.Go(func() error {
			simd.SquaredL2Batch(query, vectors[r.Start*dim:r.End*dim], dim, out[r.Start:r.End])
			return nil
		})
	}
	_ = g.Wait()
}
