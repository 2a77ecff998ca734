// Package invindex builds the inverted index from fingerprint value to its
// first occurrence offset within a fingerprint stream (spec §4.3).
package invindex

// Index maps a fingerprint value to the 0-based offset of its first
// occurrence in the stream. Later duplicates are not recorded.
type Index map[uint32]uint32

// Build constructs the inverted index for stream in O(n).
func Build(stream []uint32) Index {
	idx := make(Index, len(stream))
	for offset, v := range stream {
		if _, exists := idx[v]; exists {
			continue
		}
		idx[v] = uint32(offset)
	}
	return idx
}
