// Package persistence reads and writes knnlite snapshots.
//
// A snapshot is the whole vector store written verbatim. Two layouts exist,
// both in native byte order:
//
//	v0: int32 dim | int64 count | count × int64 ids | count×dim × float32 vectors
//
//	v1: int32 dim | uint32 tag 0x4B4E4C01 | uint8 compression | 3 reserved bytes |
//	    int64 count | int64 payload size | payload | uint32 CRC32
//
// The v1 tag sits where v0 keeps the first half of count, so Decode tells the
// layouts apart from the first 12 bytes. The v1 payload is the v0 body (ids
// then vectors), stored raw or as a zstd or lz4 stream; the CRC32 (IEEE)
// covers the uncompressed body.
//
// Decode never returns a partially filled snapshot. SaveFile writes through a
// temporary file and renames it over the destination.
package persistence
