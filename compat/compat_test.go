package compat

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnlite"
)

func newSearcher(t *testing.T) (*Searcher, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := knnlite.NewLogger(slog.NewTextHandler(&buf, nil))

	s, err := Open(nil, WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, &buf
}

func TestSearcher(t *testing.T) {
	s, _ := newSearcher(t)

	require.True(t, s.Init(2))
	require.True(t, s.AddVectors([]int64{1, 2, 3}, []float32{0, 0, 3, 4, 1, 1}, 2))

	assert.Equal(t, []int64{1, 3}, s.Search([]float32{0, 0}, 2))
}

func TestSearcherFailures(t *testing.T) {
	s, logs := newSearcher(t)

	// Before Init
	assert.False(t, s.AddVectors([]int64{1}, []float32{1}, 1))
	ids := s.Search([]float32{1}, 1)
	require.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.False(t, s.SaveIndex(filepath.Join(t.TempDir(), "index.bin")))

	require.True(t, s.Init(2))
	assert.False(t, s.AddVectors([]int64{1}, []float32{1, 2, 3}, 3))
	assert.False(t, s.AddVectors([]int64{1, 2}, []float32{1, 2, 3}, 2))
	assert.False(t, s.LoadIndex(filepath.Join(t.TempDir(), "missing.bin")))

	// Validation failures left nothing behind.
	assert.Empty(t, s.Search([]float32{0, 0}, 5))

	out := logs.String()
	assert.Contains(t, out, "add vectors failed")
	assert.Contains(t, out, "search failed")
	assert.Contains(t, out, "save index failed")
	assert.Contains(t, out, "load index failed")
}

func TestSearcherEmptyResults(t *testing.T) {
	s, _ := newSearcher(t)
	require.True(t, s.Init(2))
	require.True(t, s.AddVectors([]int64{1}, []float32{1, 1}, 2))

	for _, tc := range []struct {
		query []float32
		k     int32
	}{
		{[]float32{0, 0}, 0},
		{[]float32{0, 0}, -1},
		{[]float32{0}, 1},
	} {
		ids := s.Search(tc.query, tc.k)
		require.NotNil(t, ids)
		assert.Empty(t, ids)
	}
}

func TestSearcherSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")

	src, _ := newSearcher(t)
	require.True(t, src.Init(3))
	require.True(t, src.AddVectors([]int64{5, 6}, []float32{1, 2, 3, 4, 5, 6}, 3))
	require.True(t, src.SaveIndex(path))

	dst, _ := newSearcher(t)
	require.True(t, dst.LoadIndex(path))
	assert.Equal(t, []int64{6, 5}, dst.Search([]float32{4, 5, 6}, 5))
}

func TestOpenUnavailableBackend(t *testing.T) {
	_, err := Open([]knnlite.Option{knnlite.WithBackend(knnlite.BackendANN)})
	assert.ErrorIs(t, err, knnlite.ErrBackendUnavailable)
}
