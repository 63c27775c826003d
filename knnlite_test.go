package knnlite

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnlite/distance"
	"github.com/hupe1980/knnlite/internal/testutil"
)

func newTestEngine(t *testing.T, optFns ...Option) *Engine {
	t.Helper()
	eng, err := New(optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestEngine_ConcreteScenario(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	require.NoError(t, eng.Initialize(ctx, 2))

	n, err := eng.Add(ctx, []int64{1, 2, 3}, []float32{0, 0, 3, 4, 1, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ids, err := eng.Search(ctx, []float32{0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)

	results, err := eng.SearchResults(ctx, []float32{0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, []Result{{ID: 1, Distance: 0}, {ID: 3, Distance: 2}, {ID: 2, Distance: 25}}, results)
}

func TestEngine_NotInitialized(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	assert.False(t, eng.Ready())
	assert.Equal(t, 0, eng.Dimension())
	assert.Equal(t, 0, eng.Len())

	_, err := eng.Add(ctx, []int64{1}, []float32{1}, 1)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = eng.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = eng.Save(ctx, t.TempDir()+"/index.bin")
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, eng.Initialize(ctx, 1))
	assert.True(t, eng.Ready())
}

func TestEngine_WithDimension(t *testing.T) {
	eng := newTestEngine(t, WithDimension(3))

	assert.True(t, eng.Ready())
	assert.Equal(t, 3, eng.Dimension())

	n, err := eng.Add(context.Background(), []int64{1}, []float32{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEngine_SearchEdgeCases(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithDimension(2))

	// Empty store
	ids, err := eng.Search(ctx, []float32{0, 0}, 5)
	require.NoError(t, err)
	require.NotNil(t, ids)
	assert.Empty(t, ids)

	_, err = eng.Add(ctx, []int64{1, 2, 3}, []float32{0, 0, 3, 4, 1, 1}, 2)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query []float32
		k     int
		want  []int64
	}{
		{"k zero", []float32{0, 0}, 0, []int64{}},
		{"k negative", []float32{0, 0}, -1, []int64{}},
		{"k larger than store", []float32{0, 0}, 10, []int64{1, 3, 2}},
		{"Query too short", []float32{0}, 2, []int64{}},
		{"Query too long", []float32{0, 0, 0}, 2, []int64{}},
		{"Nil query", nil, 2, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := eng.Search(ctx, tt.query, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestEngine_ValidationGuard(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithDimension(2))

	_, err := eng.Add(ctx, []int64{1, 2, 3}, []float32{0, 0, 3, 4, 1, 1}, 2)
	require.NoError(t, err)

	before, err := eng.SearchResults(ctx, []float32{0.5, 0.5}, 3)
	require.NoError(t, err)

	t.Run("Dimension mismatch", func(t *testing.T) {
		n, err := eng.Add(ctx, []int64{9}, []float32{0, 0, 0}, 3)
		assert.Equal(t, 0, n)

		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})

	t.Run("Length mismatch", func(t *testing.T) {
		n, err := eng.Add(ctx, []int64{9, 10}, []float32{0, 0, 0}, 2)
		assert.Equal(t, 0, n)

		var lm *ErrLengthMismatch
		require.ErrorAs(t, err, &lm)
		assert.Equal(t, 2, lm.IDs)
		assert.Equal(t, 3, lm.Vectors)
		assert.NotNil(t, lm.Unwrap())
	})

	after, err := eng.SearchResults(ctx, []float32{0.5, 0.5}, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 3, eng.Len())
}

func TestEngine_Exactness(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(4711)

	const n, dim = 2000, 24
	vectors := rng.ClusteredVectors(n, dim, 8, 0.5)
	// Duplicate rows force distance ties.
	copy(vectors[10*dim:11*dim], vectors[500*dim:501*dim])
	copy(vectors[1500*dim:1501*dim], vectors[500*dim:501*dim])
	ids := testutil.SequentialIDs(n, -1000)

	for _, workers := range []int{1, 3, 0} {
		eng := newTestEngine(t, WithDimension(dim), WithWorkers(workers))
		_, err := eng.Add(ctx, ids, vectors, dim)
		require.NoError(t, err)

		queries := [][]float32{testutil.Row(vectors, dim, 500), rng.UniformRangeVectors(1, dim), rng.GaussianVectors(1, dim)}
		for _, q := range queries {
			for _, k := range []int{1, 3, 10, 100, n} {
				want := testutil.BruteForceSearch(ids, vectors, dim, q, k, distance.SquaredL2)

				got, err := eng.SearchResults(ctx, q, k)
				require.NoError(t, err)
				require.Len(t, got, len(want))
				for i := range want {
					assert.Equal(t, want[i].ID, got[i].ID, "workers=%d k=%d rank=%d", workers, k, i)
					assert.Equal(t, want[i].Distance, got[i].Distance)
				}
			}
		}
	}
}

func TestEngine_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithDimension(1))

	_, err := eng.Add(ctx, []int64{30, 10, 20, 10}, []float32{1, -1, 1, 5}, 1)
	require.NoError(t, err)

	ids, err := eng.Search(ctx, []float32{0}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10, 20, 10}, ids)
}

func TestEngine_InitializeResets(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithDimension(2))

	_, err := eng.Add(ctx, []int64{1}, []float32{1, 1}, 2)
	require.NoError(t, err)

	require.NoError(t, eng.Initialize(ctx, 3))
	assert.Equal(t, 3, eng.Dimension())
	assert.Equal(t, 0, eng.Len())

	_, err = eng.Add(ctx, []int64{1}, []float32{1, 1}, 2)
	var dm *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}

func TestEngine_NonPositiveDimension(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	require.NoError(t, eng.Initialize(ctx, 0))
	assert.True(t, eng.Ready())

	_, err := eng.Add(ctx, []int64{1}, nil, 0)
	assert.ErrorIs(t, err, ErrConfiguration)

	ids, err := eng.Search(ctx, nil, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = eng.Save(ctx, t.TempDir()+"/index.bin")
	assert.ErrorIs(t, err, ErrConfiguration)

	require.NoError(t, eng.Initialize(ctx, -5))
	assert.Equal(t, -5, eng.Dimension())
}

func TestEngine_Filter(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(1)

	const n, dim = 500, 8
	vectors := rng.UniformVectors(n, dim)
	ids := testutil.SequentialIDs(n, -250)

	eng := newTestEngine(t, WithDimension(dim))
	_, err := eng.Add(ctx, ids, vectors, dim)
	require.NoError(t, err)

	var subIDs []int64
	var subVectors []float32
	for i, id := range ids {
		if id%3 == 0 {
			subIDs = append(subIDs, id)
			subVectors = append(subVectors, testutil.Row(vectors, dim, i)...)
		}
	}
	filter := NewIDFilter(subIDs...)

	q := rng.UniformVectors(1, dim)
	for _, k := range []int{1, 7, 1000} {
		got, err := eng.SearchResults(ctx, q, k, WithFilter(filter))
		require.NoError(t, err)

		want := testutil.BruteForceSearch(subIDs, subVectors, dim, q, k, distance.SquaredL2)
		gotIDs := make([]int64, len(got))
		for i, r := range got {
			gotIDs[i] = r.ID
		}
		assert.Equal(t, testutil.IDs(want), gotIDs)
	}

	empty, err := eng.SearchResults(ctx, q, 5, WithFilter(NewIDFilter()))
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := eng.SearchResults(ctx, q, 5, WithFilter(nil))
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestEngine_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	// Two records of dimension 2 take 2*(8+8) bytes.
	eng := newTestEngine(t, WithDimension(2), WithMemoryLimit(32))

	_, err := eng.Add(ctx, []int64{1, 2}, []float32{1, 1, 2, 2}, 2)
	require.NoError(t, err)

	n, err := eng.Add(ctx, []int64{3}, []float32{3, 3}, 2)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, 0, n)
	assert.Equal(t, 2, eng.Len())

	// Initialize releases the budget.
	require.NoError(t, eng.Initialize(ctx, 2))
	_, err = eng.Add(ctx, []int64{3, 4}, []float32{3, 3, 4, 4}, 2)
	require.NoError(t, err)
}

func TestEngine_Stats(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithDimension(2), WithWorkers(3), WithMemoryLimit(1<<20))

	_, err := eng.Add(ctx, []int64{1, 2, 1}, []float32{0, 0, 1, 1, 2, 2}, 2)
	require.NoError(t, err)

	s := eng.Stats()
	assert.True(t, s.Ready)
	assert.False(t, s.Closed)
	assert.Equal(t, 2, s.Dimension)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, uint64(2), s.DistinctIDs)
	assert.Equal(t, int64(3*8+6*4), s.SizeBytes)
	assert.Equal(t, int64(1<<20), s.MemoryLimit)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, distance.Default().Name(), s.Kernel)
	assert.Equal(t, distance.Default().Lanes(), s.Lanes)

	require.NoError(t, eng.Close())
	s = eng.Stats()
	assert.False(t, s.Ready)
	assert.True(t, s.Closed)
	assert.Equal(t, 0, s.Count)
}

func TestEngine_Closed(t *testing.T) {
	ctx := context.Background()
	eng, err := New(WithDimension(2))
	require.NoError(t, err)

	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close())
	assert.False(t, eng.Ready())

	assert.ErrorIs(t, eng.Initialize(ctx, 2), ErrClosed)

	_, err = eng.Add(ctx, []int64{1}, []float32{1, 1}, 2)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = eng.Search(ctx, []float32{1, 1}, 1)
	assert.ErrorIs(t, err, ErrClosed)

	path := t.TempDir() + "/index.bin"
	assert.ErrorIs(t, eng.Save(ctx, path), ErrClosed)
	assert.ErrorIs(t, eng.Load(ctx, path), ErrClosed)

	_, err = eng.LoadIfExists(ctx, path)
	assert.ErrorIs(t, err, ErrClosed)

	var nilEngine *Engine
	assert.NoError(t, nilEngine.Close())
}

func TestEngine_CanceledContext(t *testing.T) {
	eng := newTestEngine(t, WithDimension(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, eng.Initialize(ctx, 1), context.Canceled)

	_, err := eng.Add(ctx, []int64{1}, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = eng.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, eng.Save(ctx, "unused"), context.Canceled)
	assert.ErrorIs(t, eng.Load(ctx, "unused"), context.Canceled)
	assert.Equal(t, 0, eng.Len())
}

func TestEngine_Concurrency(t *testing.T) {
	ctx := context.Background()
	const dim, writers, batches, batch = 16, 4, 25, 10

	eng := newTestEngine(t, WithDimension(dim))
	rng := testutil.NewRNG(9)

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batches {
				ids := testutil.SequentialIDs(batch, int64((w*batches+b)*batch))
				_, err := eng.Add(ctx, ids, rng.UniformVectors(batch, dim), dim)
				assert.NoError(t, err)
			}
		}()
	}

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := rng.UniformVectors(1, dim)
			for range 50 {
				ids, err := eng.Search(ctx, q, 5)
				assert.NoError(t, err)
				assert.LessOrEqual(t, len(ids), 5)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, writers*batches*batch, eng.Len())
	assert.Equal(t, uint64(writers*batches*batch), eng.Stats().DistinctIDs)
}

func TestEngine_ConcurrentSaveLoad(t *testing.T) {
	ctx := context.Background()
	const dim, batch, rounds, k = 8, 10, 30, 5

	path := filepath.Join(t.TempDir(), "index.bin")
	eng := newTestEngine(t, WithDimension(dim))
	rng := testutil.NewRNG(11)

	var (
		wg     sync.WaitGroup
		nextID atomic.Int64
		// loadGen is odd while a Load is in flight.
		loadGen atomic.Int64
	)

	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				start := nextID.Add(batch) - batch
				n, err := eng.Add(ctx, testutil.SequentialIDs(batch, start), rng.UniformVectors(batch, dim), dim)
				assert.NoError(t, err)
				assert.Equal(t, batch, n)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range rounds {
			results, err := eng.SearchResults(ctx, rng.UniformVectors(1, dim), k)
			assert.NoError(t, err)
			assert.LessOrEqual(t, len(results), k)
			assert.True(t, slices.IsSortedFunc(results, func(a, b Result) int {
				return cmp.Compare(a.Distance, b.Distance)
			}))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range rounds {
			assert.NoError(t, eng.Save(ctx, path))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range rounds {
			loadGen.Add(1)
			_, err := eng.LoadIfExists(ctx, path)
			loadGen.Add(1)
			assert.NoError(t, err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		prevGen, prevLen := int64(-1), 0
		for range rounds * 4 {
			gen := loadGen.Load()
			n := eng.Len()
			after := loadGen.Load()

			// Every Add and every snapshot holds whole batches.
			assert.Zero(t, n%batch)
			// Without a Load in between, the store only grows.
			if prevGen == after && after%2 == 0 {
				assert.GreaterOrEqual(t, n, prevLen)
			}
			prevGen, prevLen = gen, n
		}
	}()

	wg.Wait()

	require.NoError(t, eng.Save(ctx, path))
	restored := newTestEngine(t)
	require.NoError(t, restored.Load(ctx, path))
	assert.Equal(t, eng.Len(), restored.Len())
	assert.Equal(t, eng.Stats().DistinctIDs, restored.Stats().DistinctIDs)
}

func TestEngine_AddCopiesInput(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, WithDimension(2))

	ids := []int64{1}
	vectors := []float32{5, 5}
	_, err := eng.Add(ctx, ids, vectors, 2)
	require.NoError(t, err)

	ids[0] = 99
	vectors[0] = 0
	vectors[1] = 0

	results, err := eng.SearchResults(ctx, []float32{5, 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Result{{ID: 1, Distance: 0}}, results)
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"Negative workers", WithWorkers(-1)},
		{"Negative memory limit", WithMemoryLimit(-1)},
		{"Autosave interval without path", WithAutosave("", 1)},
		{"Negative autosave interval", WithAutosave("index.bin", -1)},
		{"Compressed v0", WithSnapshotFormat(0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
