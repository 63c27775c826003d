package testutil

import (
	"math/rand"
	"slices"
	"sync"
)

// SearchResult represents a search result.
type SearchResult struct {
	ID       int64
	Distance float32
}

// RNG is a seeded random source for test data. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformVectors generates num row-major vectors with values in range [0, 1).
func (r *RNG) UniformVectors(num, dim int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	for i := range data {
		data[i] = r.rand.Float32()
	}
	return data
}

// UniformRangeVectors generates num row-major vectors with values in range [-1, 1).
func (r *RNG) UniformRangeVectors(num, dim int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	for i := range data {
		data[i] = r.rand.Float32()*2 - 1
	}
	return data
}

// GaussianVectors generates num row-major vectors from a standard normal distribution.
func (r *RNG) GaussianVectors(num, dim int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	for i := range data {
		data[i] = float32(r.rand.NormFloat64())
	}
	return data
}

// ClusteredVectors generates num row-major vectors around the given number
// of random centroids. Values are centroid + uniform noise in [-spread, spread).
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	clusters = max(clusters, 1)
	centroids := make([]float32, clusters*dim)
	for i := range centroids {
		centroids[i] = r.rand.Float32()*20 - 10
	}

	data := make([]float32, num*dim)
	for i := range num {
		c := r.rand.Intn(clusters)
		for j := range dim {
			data[i*dim+j] = centroids[c*dim+j] + (r.rand.Float32()*2-1)*spread
		}
	}
	return data
}

// SequentialIDs returns n ids starting at start.
func SequentialIDs(n int, start int64) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = start + int64(i)
	}
	return ids
}

// Row returns row i of a row-major buffer.
func Row(vectors []float32, dim, i int) []float32 {
	return vectors[i*dim : (i+1)*dim]
}

// BruteForceSearch performs exact search for ground truth.
// Every row is scored with dist and the rows are stably sorted by distance,
// so equal distances keep insertion order.
func BruteForceSearch(ids []int64, vectors []float32, dim int, query []float32, k int, dist func(a, b []float32) float32) []SearchResult {
	if k <= 0 || dim <= 0 {
		return []SearchResult{}
	}

	results := make([]SearchResult, len(ids))
	for i := range ids {
		results[i] = SearchResult{ID: ids[i], Distance: dist(query, Row(vectors, dim, i))}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return compareDistance(a.Distance, b.Distance)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// IDs extracts the ids of results.
func IDs(results []SearchResult) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

// compareDistance orders NaN after every number.
func compareDistance(a, b float32) int {
	aNaN, bNaN := a != a, b != b
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
