// Package store holds the append-only vector collection searched by knnlite.
//
// Records are kept as two parallel arrays: ids and a flat row-major float32
// buffer where row i belongs to ids[i]. Every row has the store's fixed
// dimension. The store is not safe for concurrent use; the engine guards it
// with a single lock.
package store
