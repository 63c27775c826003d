// Package knnlite provides an on-device, in-memory exact nearest-neighbor
// search engine for float32 embeddings.
//
// Vectors live in one contiguous row-major buffer next to their caller
// assigned int64 ids. A search computes the squared Euclidean distance from
// the query to every stored vector in parallel, selects the k smallest and
// returns their ids nearest first. Results are exact: the returned ids are
// always the first k of a full sort by (distance, insertion order).
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := knnlite.New(knnlite.WithDimension(2))
//	defer eng.Close()
//
//	eng.Add(ctx, []int64{1, 2, 3}, []float32{0, 0, 3, 4, 1, 1}, 2)
//	ids, _ := eng.Search(ctx, []float32{0, 0}, 2) // [1 3]
//
// # Snapshots
//
// The whole store can be written to and restored from a single file:
//
//	eng.Save(ctx, "index.bin")
//	eng.Load(ctx, "index.bin")
//
// The default layout is the raw v0 snapshot (dim, count, ids, vectors in
// native byte order). WithSnapshotFormat selects the v1 layout, which adds a
// version tag, optional zstd or lz4 compression and a CRC32. Load accepts
// both. A failed Load leaves the engine unchanged.
//
// # Concurrency
//
// An Engine is safe for concurrent use. Every operation holds one exclusive
// lock for its whole duration, so no operation observes a partially applied
// Add or Load. Inside a search the distance scan fans out over all CPUs.
//
// # Key Features
//
//   - Exact brute-force search, no approximation
//   - Lane-batched distance kernels picked by CPU (AVX-512/AVX2/NEON/SVE2)
//   - Filtered search over a Roaring bitmap of ids
//   - Rate-limited background autosave
//   - Optional memory budget for the vector store
//   - Structured logging (log/slog) and pluggable metrics
package knnlite
