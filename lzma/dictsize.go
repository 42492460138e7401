// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// Limits of the dictionary size.
const (
	// MinDictSize is the minimum dictionary size.
	MinDictSize = 1 << 12
	// maxDictSize defines the maximum dictionary size supported by the
	// LZMA2 dictionary size encoding.
	maxDictSize = 1<<32 - 1
	// maxEncoderDictSize limits the dictionary of the encoder. The match
	// finder uses int32 positions.
	maxEncoderDictSize = 768 << 20
)

// maxDictSizeCode defines the maximum dictionary size code.
const maxDictSizeCode = 40

// decodeDictSize decodes the dictionary size byte, but doesn't check for
// the correct range of the given byte.
func decodeDictSize(c byte) int64 {
	return (2 | int64(c)&1) << (11 + (c>>1)&0x1f)
}

// DecodeDictSize decodes the encoded dictionary size. The function returns
// an error if the code is out of range.
func DecodeDictSize(c byte) (n int64, err error) {
	if c >= maxDictSizeCode {
		if c == maxDictSizeCode {
			return maxDictSize, nil
		}
		return 0, corruptf("invalid dictionary size code %d", c)
	}
	return decodeDictSize(c), nil
}

// EncodeDictSize encodes a dictionary size. The function returns the code
// for the size that is greater or equal n. If n exceeds the maximum
// supported dictionary size, the maximum value is returned.
func EncodeDictSize(n int64) byte {
	a, b := byte(0), byte(40)
	for a < b {
		c := a + (b-a)>>1
		m := decodeDictSize(c)
		if n <= m {
			if n == m {
				return c
			}
			b = c
		} else {
			a = c + 1
		}
	}
	return a
}
