// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"errors"
	"fmt"
	"io"
)

// chunkType represents the type of an LZMA2 chunk. The values are the
// control bytes without the size bits.
type chunkType byte

// Possible chunk types.
const (
	// end of stream
	cEOS chunkType = 0x00
	// uncompressed; reset dictionary
	cUD chunkType = 0x01
	// uncompressed; no reset of dictionary
	cU chunkType = 0x02
	// LZMA compressed; no reset
	cL chunkType = 0x80
	// LZMA compressed; reset state
	cLR chunkType = 0xa0
	// LZMA compressed; reset state; new property value
	cLRN chunkType = 0xc0
	// LZMA compressed; reset state; new property value; reset dictionary
	cLRND chunkType = 0xe0
)

// chunkTypeStrings provide a string representation for the chunk types.
var chunkTypeStrings = map[chunkType]string{
	cEOS:  "EOS",
	cU:    "U",
	cUD:   "UD",
	cL:    "L",
	cLR:   "LR",
	cLRN:  "LRN",
	cLRND: "LRND",
}

// String returns a string representation of the chunk type.
func (c chunkType) String() string {
	if s, ok := chunkTypeStrings[c]; ok {
		return s
	}
	return fmt.Sprintf("chunkType(%#02x)", byte(c))
}

// isLZMA reports whether the chunk contains LZMA compressed data.
func (c chunkType) isLZMA() bool { return c&0x80 != 0 }

// hasProps reports whether the header carries a properties byte.
func (c chunkType) hasProps() bool { return c == cLRN || c == cLRND }

// chunkHeader represents the header of an LZMA2 chunk. The sizes are the
// actual sizes, not the stored sizes minus one.
type chunkHeader struct {
	ctype chunkType
	usize int
	csize int
	props Properties
}

// String returns a string representation of the chunk header.
func (h chunkHeader) String() string {
	return fmt.Sprintf("%s %d %d %s", h.ctype, h.usize, h.csize,
		&h.props)
}

// errChunkHeader indicates an invalid chunk header that cannot be
// written.
var errChunkHeader = errors.New("lzma: invalid chunk header")

// append appends the binary representation of the header to p.
func (h chunkHeader) append(p []byte) ([]byte, error) {
	switch h.ctype {
	case cEOS:
		return append(p, byte(cEOS)), nil
	case cU, cUD:
		if !(1 <= h.usize && h.usize <= maxChunkCSize) {
			return p, fmt.Errorf("%w: stored size %d out of range",
				errChunkHeader, h.usize)
		}
		u := h.usize - 1
		return append(p, byte(h.ctype), byte(u>>8), byte(u)), nil
	case cL, cLR, cLRN, cLRND:
	default:
		return p, fmt.Errorf("%w: unknown chunk type %#02x",
			errChunkHeader, byte(h.ctype))
	}
	if !(1 <= h.usize && h.usize <= maxChunkUSize) {
		return p, fmt.Errorf("%w: uncompressed size %d out of range",
			errChunkHeader, h.usize)
	}
	if !(1 <= h.csize && h.csize <= maxChunkCSize) {
		return p, fmt.Errorf("%w: compressed size %d out of range",
			errChunkHeader, h.csize)
	}
	u, c := h.usize-1, h.csize-1
	p = append(p, byte(h.ctype)|byte(u>>16), byte(u>>8), byte(u),
		byte(c>>8), byte(c))
	if h.ctype.hasProps() {
		if err := h.props.verify2(); err != nil {
			return p, fmt.Errorf("%w: %w", errChunkHeader, err)
		}
		p = append(p, h.props.Code())
	}
	return p, nil
}

// parseChunkHeader reads the chunk header from br.
func parseChunkHeader(br io.ByteReader) (h chunkHeader, err error) {
	var buf [5]byte
	c, err := br.ReadByte()
	if err != nil {
		return h, err
	}
	switch {
	case c == byte(cEOS):
		h.ctype = cEOS
		return h, nil
	case c == byte(cU) || c == byte(cUD):
		h.ctype = chunkType(c)
		if err = readBytes(br, buf[:2]); err != nil {
			return h, err
		}
		h.usize = (int(buf[0])<<8 | int(buf[1])) + 1
		return h, nil
	case c < 0x80:
		return h, corruptf("invalid chunk control byte %#02x", c)
	}
	h.ctype = chunkType(c & 0xe0)
	n := 4
	if h.ctype.hasProps() {
		n = 5
	}
	if err = readBytes(br, buf[:n]); err != nil {
		return h, err
	}
	h.usize = (int(c&0x1f)<<16 | int(buf[0])<<8 | int(buf[1])) + 1
	h.csize = (int(buf[2])<<8 | int(buf[3])) + 1
	if n == 5 {
		if h.props, err = PropertiesForCode(buf[4]); err != nil {
			return h, err
		}
		if h.props.LC+h.props.LP > 4 {
			return h, corruptf("lc+lp of chunk properties exceeds 4")
		}
	}
	return h, nil
}

// readBytes fills p from br. A missing byte is reported as truncation.
func readBytes(br io.ByteReader, p []byte) error {
	for i := range p {
		c, err := br.ReadByte()
		if err != nil {
			return inputErr(err)
		}
		p[i] = c
	}
	return nil
}

// chunkState represents a state of the chunk sequence validation. It
// returns the next state for the given chunk type.
type chunkState func(c chunkType) (next chunkState, err error)

// errChunkSequence indicates a chunk type that is not allowed at its
// position in the stream.
func errChunkSequence(c chunkType) error {
	return corruptf("chunk type %s not allowed here", c)
}

// chunkStart is the state at the beginning of an LZMA2 stream. The first
// chunk must reset the dictionary.
func chunkStart(c chunkType) (chunkState, error) {
	switch c {
	case cEOS:
		return chunkFinal, nil
	case cUD:
		return chunkS1, nil
	case cLRND:
		return chunkS2, nil
	}
	return nil, errChunkSequence(c)
}

// chunkS1 is the state after a dictionary reset by a stored chunk; the
// next LZMA chunk must provide properties.
func chunkS1(c chunkType) (chunkState, error) {
	switch c {
	case cEOS:
		return chunkFinal, nil
	case cU, cUD:
		return chunkS1, nil
	case cLRN, cLRND:
		return chunkS2, nil
	}
	return nil, errChunkSequence(c)
}

// chunkS2 is the state after an LZMA chunk with properties.
func chunkS2(c chunkType) (chunkState, error) {
	switch c {
	case cEOS:
		return chunkFinal, nil
	case cUD:
		return chunkS1, nil
	case cU, cL, cLR, cLRN, cLRND:
		return chunkS2, nil
	}
	return nil, errChunkSequence(c)
}

// chunkFinal is the state after the end-of-stream chunk.
func chunkFinal(c chunkType) (chunkState, error) {
	return nil, corruptf("chunk after end of stream")
}
