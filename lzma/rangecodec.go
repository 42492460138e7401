// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"io"
)

// topValue limits the range; the coders normalize if the range drops
// below it.
const topValue = 1 << 24

// rangeEncoder implements range encoding of single bits. The low value can
// overflow therefore we need uint64. The cache value is used to handle
// overflows.
type rangeEncoder struct {
	w        io.ByteWriter
	nrange   uint32
	low      uint64
	cacheLen int64
	cache    byte
	// number of bytes written to w
	n int64
}

// init initializes the range encoder for a new sequence of bits.
func (e *rangeEncoder) init(w io.ByteWriter) {
	*e = rangeEncoder{
		w:        w,
		nrange:   0xffffffff,
		cacheLen: 1,
	}
}

// pending returns the number of bytes that have been written to the
// underlying writer plus the bytes Close would still write.
func (e *rangeEncoder) pending() int64 {
	return e.n + e.cacheLen + 4
}

// encodeBit encodes the least significant bit of b. The p value will be
// updated by the function depending on the bit encoded.
func (e *rangeEncoder) encodeBit(b uint32, p *prob) error {
	bound := p.bound(e.nrange)
	if b&1 == 0 {
		e.nrange = bound
		p.inc()
	} else {
		e.low += uint64(bound)
		e.nrange -= bound
		p.dec()
	}
	return e.normalize()
}

// directEncodeBit encodes the least-significant bit of b with probability
// 1/2.
func (e *rangeEncoder) directEncodeBit(b uint32) error {
	e.nrange >>= 1
	e.low += uint64(e.nrange) & (0 - (uint64(b) & 1))
	return e.normalize()
}

// normalize shifts bytes out if the range became too small.
func (e *rangeEncoder) normalize() error {
	if e.nrange >= topValue {
		return nil
	}
	e.nrange <<= 8
	return e.shiftLow()
}

// shiftLow shifts the top byte of low into the output. A carry is
// propagated through the cached 0xff bytes.
func (e *rangeEncoder) shiftLow() error {
	if uint32(e.low) < 0xff000000 || (e.low>>32) != 0 {
		tmp := e.cache
		for {
			if err := e.w.WriteByte(tmp + byte(e.low>>32)); err != nil {
				return err
			}
			e.n++
			tmp = 0xff
			e.cacheLen--
			if e.cacheLen <= 0 {
				if e.cacheLen < 0 {
					panic("negative cacheLen")
				}
				break
			}
		}
		e.cache = byte(uint32(e.low) >> 24)
	}
	e.cacheLen++
	e.low = uint64(uint32(e.low) << 8)
	return nil
}

// Close writes a complete copy of the low value.
func (e *rangeEncoder) Close() error {
	for i := 0; i < 5; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}

// rangeDecoder decodes single bits of the range encoding stream.
type rangeDecoder struct {
	br     io.ByteReader
	nrange uint32
	code   uint32
}

// init initializes the range decoder by reading the five initial bytes.
// The first byte must be zero and the code must be smaller than the
// range.
func (d *rangeDecoder) init(br io.ByteReader) error {
	*d = rangeDecoder{br: br, nrange: 0xffffffff}
	b, err := br.ReadByte()
	if err != nil {
		return inputErr(err)
	}
	if b != 0 {
		return corruptf("first byte of range coding not zero")
	}
	for i := 0; i < 4; i++ {
		if err = d.updateCode(); err != nil {
			return err
		}
	}
	if d.code >= d.nrange {
		return corruptf("range decoder code out of range")
	}
	return nil
}

// possiblyAtEnd checks whether the decoder may be at the end of the
// stream.
func (d *rangeDecoder) possiblyAtEnd() bool {
	return d.code == 0
}

// directDecodeBit decodes a bit with probability 1/2. The return value b
// will contain the bit at the least-significant position. All other bits
// will be zero.
func (d *rangeDecoder) directDecodeBit() (b uint32, err error) {
	d.nrange >>= 1
	d.code -= d.nrange
	t := 0 - (d.code >> 31)
	d.code += d.nrange & t
	b = (t + 1) & 1
	if d.nrange < topValue {
		d.nrange <<= 8
		if err = d.updateCode(); err != nil {
			return 0, err
		}
	}
	return b, nil
}

// decodeBit decodes a single bit. The bit will be returned at the
// least-significant position. All other bits will be zero. The probability
// value will be updated.
func (d *rangeDecoder) decodeBit(p *prob) (b uint32, err error) {
	bound := p.bound(d.nrange)
	if d.code < bound {
		d.nrange = bound
		p.inc()
		b = 0
	} else {
		d.code -= bound
		d.nrange -= bound
		p.dec()
		b = 1
	}
	if d.nrange < topValue {
		d.nrange <<= 8
		if err = d.updateCode(); err != nil {
			return 0, err
		}
	}
	return b, nil
}

// updateCode reads a new byte into the code.
func (d *rangeDecoder) updateCode() error {
	b, err := d.br.ReadByte()
	if err != nil {
		return inputErr(err)
	}
	d.code = (d.code << 8) | uint32(b)
	return nil
}
