// Package testutil provides testing utilities for knnlite.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random flat vector buffers and
// computing exact nearest neighbors as ground truth.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vectors := rng.UniformVectors(n, dim)   // flat, row-major, [0, 1)
//	ids := testutil.SequentialIDs(n, 100)   // 100, 101, ...
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceSearch(ids, vectors, dim, query, k, distance.SquaredL2)
package testutil
