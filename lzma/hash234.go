// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "hash/crc32"

// Sizes of the 2-byte and 3-byte hash tables.
const (
	hash2Size = 1 << 10
	hash2Mask = hash2Size - 1
	hash3Size = 1 << 16
	hash3Mask = hash3Size - 1
)

// crcTable supplies the byte mixing for the hash values.
var crcTable = crc32.IEEETable

// hash4Size returns the size of the 4-byte hash table for the given
// dictionary size. The table has at least 1<<16 entries.
func hash4Size(dictSize int) int {
	h := uint32(dictSize - 1)
	h |= h >> 1
	h |= h >> 2
	h |= h >> 4
	h |= h >> 8
	h >>= 1
	h |= 0xffff
	if h > 1<<24 {
		h >>= 1
	}
	return int(h) + 1
}

// hash234 maintains the hash tables for 2, 3 and 4 bytes. The tables
// store positions of the match finder; zero marks an empty entry.
type hash234 struct {
	hash2 []int32
	hash3 []int32
	hash4 []int32

	hash4Mask uint32

	h2 uint32
	h3 uint32
	h4 uint32
}

// init allocates the hash tables.
func (h *hash234) init(dictSize int) {
	n := hash4Size(dictSize)
	*h = hash234{
		hash2:     make([]int32, hash2Size),
		hash3:     make([]int32, hash3Size),
		hash4:     make([]int32, n),
		hash4Mask: uint32(n - 1),
	}
}

// reset clears all tables.
func (h *hash234) reset() {
	clear(h.hash2)
	clear(h.hash3)
	clear(h.hash4)
}

// calcHashes computes the hash values for the first four bytes of p.
func (h *hash234) calcHashes(p []byte) {
	_ = p[3]
	tmp := crcTable[p[0]] ^ uint32(p[1])
	h.h2 = tmp & hash2Mask
	tmp ^= uint32(p[2]) << 8
	h.h3 = tmp & hash3Mask
	tmp ^= crcTable[p[3]] << 5
	h.h4 = tmp & h.hash4Mask
}

func (h *hash234) hash2Pos() int32 { return h.hash2[h.h2] }
func (h *hash234) hash3Pos() int32 { return h.hash3[h.h3] }
func (h *hash234) hash4Pos() int32 { return h.hash4[h.h4] }

// updateTables stores pos under the hash values of the last calcHashes
// call.
func (h *hash234) updateTables(pos int32) {
	h.hash2[h.h2] = pos
	h.hash3[h.h3] = pos
	h.hash4[h.h4] = pos
}

// normalize subtracts offset from all positions. Positions that would
// become zero or negative are marked empty.
func (h *hash234) normalize(offset int32) {
	normalizePositions(h.hash2, offset)
	normalizePositions(h.hash3, offset)
	normalizePositions(h.hash4, offset)
}

// normalizePositions subtracts offset from all positions in a.
func normalizePositions(a []int32, offset int32) {
	for i, v := range a {
		if v <= offset {
			a[i] = 0
		} else {
			a[i] = v - offset
		}
	}
}

// hash234MemoryUsageKiB returns the memory used by the hash tables in KiB.
func hash234MemoryUsageKiB(dictSize int) int64 {
	return int64(hash2Size+hash3Size+hash4Size(dictSize))/256 + 4
}
