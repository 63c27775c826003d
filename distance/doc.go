// Package distance exposes the squared Euclidean distance used by knnlite.
//
// The active kernel is picked at startup from CPU features:
//   - AVX-512 (16 lanes) or AVX2 (8 lanes) on x86-64
//   - NEON/SVE2 (4 lanes) on ARM64
//   - a sequential scalar loop everywhere else
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	k := distance.Default()   // kernel in use
//	s := distance.Scalar()    // guaranteed fallback
package distance
