package topk

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reference returns the first k rows of a full stable sort.
func reference(scores []float32, k int, keep func(int) bool) []int {
	rows := make([]int, 0, len(scores))
	for i := range scores {
		if keep == nil || keep(i) {
			rows = append(rows, i)
		}
	}
	slices.SortStableFunc(rows, func(a, b int) int {
		return CompareDistance(scores[a], scores[b])
	})
	if k < len(rows) {
		rows = rows[:k]
	}
	return rows
}

func TestSelect(t *testing.T) {
	scores := []float32{0, 25, 2}

	tests := []struct {
		name string
		k    int
		want []int
	}{
		{"Two nearest", 2, []int{0, 2}},
		{"One", 1, []int{0}},
		{"All", 3, []int{0, 2, 1}},
		{"More than N", 10, []int{0, 2, 1}},
		{"Zero", 0, []int{}},
		{"Negative", -3, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(scores, tt.k)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectEmpty(t *testing.T) {
	got := Select(nil, 5)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectTiesKeepRowOrder(t *testing.T) {
	scores := []float32{1, 0, 1, 0, 1}

	assert.Equal(t, []int{1, 3, 0}, Select(scores, 3))
	assert.Equal(t, []int{1, 3, 0, 2, 4}, Select(scores, 5))
}

func TestSelectNaNLast(t *testing.T) {
	nan := float32(math.NaN())
	scores := []float32{nan, 3, nan, 1, 2}

	assert.Equal(t, []int{3, 4, 1}, Select(scores, 3))
	assert.Equal(t, []int{3, 4, 1, 0, 2}, Select(scores, 5))
}

func TestSelectMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 2, 3, 10, 100, 1000, 5000} {
		scores := make([]float32, n)
		for i := range scores {
			// Coarse values force many ties
			scores[i] = float32(rng.Intn(n/4 + 1))
		}

		for _, k := range []int{1, 2, n / 2, n - 1, n, n + 1} {
			if k <= 0 {
				continue
			}
			assert.Equalf(t, reference(scores, k, nil), Select(scores, k), "n=%d k=%d", n, k)
		}
	}
}

func TestSelectFunc(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scores := make([]float32, 500)
	for i := range scores {
		scores[i] = rng.Float32()
	}
	even := func(row int) bool { return row%2 == 0 }

	for _, k := range []int{1, 10, 250, 400} {
		got := SelectFunc(scores, k, even)
		assert.Equal(t, reference(scores, k, even), got)
		for _, row := range got {
			assert.Zero(t, row%2)
		}
	}

	none := SelectFunc(scores, 5, func(int) bool { return false })
	require.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSelectKDepthFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	scores := make([]float32, 300)
	for i := range scores {
		scores[i] = rng.Float32()
	}
	compare := byScore(scores)

	for _, depth := range []int{0, 1, 3} {
		rows := make([]int, len(scores))
		for i := range rows {
			rows[i] = i
		}
		selectK(rows, 20, compare, depth)

		got := slices.Clone(rows[:20])
		slices.SortFunc(got, compare)
		assert.Equal(t, reference(scores, 20, nil), got, "depth=%d", depth)
	}
}

func TestCompareDistance(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	assert.Equal(t, -1, CompareDistance(0, 1))
	assert.Equal(t, 0, CompareDistance(2, 2))
	assert.Equal(t, -1, CompareDistance(inf, nan))
	assert.Equal(t, 1, CompareDistance(nan, inf))
	assert.Equal(t, 0, CompareDistance(nan, nan))
}

func BenchmarkSelect(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	scores := make([]float32, 100_000)
	for i := range scores {
		scores[i] = rng.Float32()
	}

	for b.Loop() {
		Select(scores, 10)
	}
}
