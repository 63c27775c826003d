package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnlite/internal/simd"
	"github.com/hupe1980/knnlite/internal/testutil"
)

func TestRanges(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		want    []Range
	}{
		{"Empty", 0, 4, nil},
		{"Even split", 8, 4, []Range{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"Uneven split", 10, 4, []Range{{0, 3}, {3, 6}, {6, 9}, {9, 10}}},
		{"Fewer rows than workers", 3, 8, []Range{{0, 1}, {1, 2}, {2, 3}}},
		{"Single worker", 5, 1, []Range{{0, 5}}},
		// ceil(5/4) = 2 yields only three ranges
		{"Fewer ranges than workers", 5, 4, []Range{{0, 2}, {2, 4}, {4, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ranges(tt.n, tt.workers))
		})
	}
}

func TestRangesCoverAllRows(t *testing.T) {
	for n := 1; n < 200; n += 13 {
		for workers := 1; workers <= 16; workers++ {
			ranges := Ranges(n, workers)
			require.LessOrEqual(t, len(ranges), workers)

			next := 0
			for _, r := range ranges {
				assert.Equal(t, next, r.Start)
				assert.Greater(t, r.End, r.Start)
				next = r.End
			}
			assert.Equal(t, n, next)
		}
	}
}

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
	assert.NotEmpty(t, Ranges(10, 0))
}

func TestScan(t *testing.T) {
	vectors := []float32{0, 0, 3, 4, 1, 1}
	out := make([]float32, 3)

	Scan([]float32{0, 0}, vectors, 2, out, 2)
	assert.Equal(t, []float32{0, 25, 2}, out)
}

func TestScanMatchesSequential(t *testing.T) {
	rng := testutil.NewRNG(99)
	const dim = 37

	for _, n := range []int{1, 7, 64, 1001} {
		vectors := rng.UniformRangeVectors(n, dim)
		query := rng.UniformRangeVectors(1, dim)

		want := make([]float32, n)
		for i := range n {
			want[i] = simd.SquaredL2(query, testutil.Row(vectors, dim, i))
		}

		for _, workers := range []int{0, 1, 3, 16} {
			got := make([]float32, n)
			Scan(query, vectors, dim, got, workers)
			assert.Equalf(t, want, got, "n=%d workers=%d", n, workers)
		}
	}
}

func TestScanEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		Scan([]float32{1}, nil, 1, nil, 4)
		Scan(nil, []float32{1, 2}, 0, make([]float32, 2), 4)
	})
}

func BenchmarkScan(b *testing.B) {
	rng := testutil.NewRNG(1)
	const n, dim = 10_000, 384
	vectors := rng.UniformVectors(n, dim)
	query := rng.UniformVectors(1, dim)
	out := make([]float32, n)

	for b.Loop() {
		Scan(query, vectors, dim, out, 0)
	}
}
