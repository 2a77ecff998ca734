// Package bitutil provides the Hamming-weight primitive used to compare
// XORed fingerprint elements.
package bitutil

import "math/bits"

// Popcount returns the number of set bits in x.
func Popcount(x uint32) int {
	return bits.OnesCount32(x)
}
