// Package dedup implements exact (SHA-256) and near (SimHash +
// pigeonhole-block banding) duplicate detection over token-weight bags,
// the way pkg/hyperloglog/hll.go estimates cardinality from a stream of
// hashed values: a fixed-size accumulator updated bit by bit from a
// deterministic hash of each input.
package dedup

import (
	"crypto/md5"
	"encoding/binary"
	"math/bits"
)

// NumBits is the width of a SimHash fingerprint.
const NumBits = 64

// ComputeSimHash builds a 64-bit fingerprint from a token->weight bag.
// Positive-weight terms only contribute; each of a term's hash bits votes
// +weight or -weight into a 64-wide accumulator, and the fingerprint bit is
// 1 wherever the accumulator ended up positive. Deterministic and
// bit-exact for identical input.
func ComputeSimHash(weights map[string]int) uint64 {
	var acc [NumBits]int64

	for term, weight := range weights {
		if weight <= 0 {
			continue
		}
		h := termHash(term)
		for i := 0; i < NumBits; i++ {
			if (h>>uint(i))&1 == 1 {
				acc[i] += int64(weight)
			} else {
				acc[i] -= int64(weight)
			}
		}
	}

	var fp uint64
	for i := 0; i < NumBits; i++ {
		if acc[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// termHash is the first 8 bytes of MD5(utf8(term)) read as a big-endian
// uint64, matching spec.md §4.C's fingerprint-seed construction.
func termHash(term string) uint64 {
	sum := md5.Sum([]byte(term))
	return binary.BigEndian.Uint64(sum[:8])
}

// HammingDistance is the population count of the XOR of a and b, masked to
// the low NumBits bits.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
