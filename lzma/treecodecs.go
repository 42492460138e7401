// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// treeCodec encodes or decodes values with a fixed bit size. It uses a
// tree of probabilities, starting with the most-significant bit.
type treeCodec struct {
	probs []prob
	bits  int
}

// makeTreeCodec makes a tree codec. The bits value must be inside the
// range [1,32].
func makeTreeCodec(bits int) treeCodec {
	if !(1 <= bits && bits <= 32) {
		panic("bits outside of range [1,32]")
	}
	t := treeCodec{probs: make([]prob, 1<<uint(bits)), bits: bits}
	initProbs(t.probs)
	return t
}

// reset sets all probabilities back to their initial value.
func (t *treeCodec) reset() { initProbs(t.probs) }

// Encode uses the range encoder to encode a fixed-bit-size value.
func (t *treeCodec) Encode(e *rangeEncoder, v uint32) error {
	m := uint32(1)
	for i := t.bits - 1; i >= 0; i-- {
		b := (v >> uint(i)) & 1
		if err := e.encodeBit(b, &t.probs[m]); err != nil {
			return err
		}
		m = (m << 1) | b
	}
	return nil
}

// Decode uses the range decoder to decode a fixed-bit-size value.
func (t *treeCodec) Decode(d *rangeDecoder) (v uint32, err error) {
	m := uint32(1)
	for j := 0; j < t.bits; j++ {
		b, err := d.decodeBit(&t.probs[m])
		if err != nil {
			return 0, err
		}
		m = (m << 1) | b
	}
	return m - (1 << uint(t.bits)), nil
}

// treeReverseCodec is another tree codec, where the least-significant bit
// is the start of the probability tree.
type treeReverseCodec struct {
	probs []prob
	bits  int
}

// makeTreeReverseCodec creates a treeReverseCodec value. The function
// panics if bits is outside the range [1,32].
func makeTreeReverseCodec(bits int) treeReverseCodec {
	if !(1 <= bits && bits <= 32) {
		panic("bits outside of range [1,32]")
	}
	t := treeReverseCodec{probs: make([]prob, 1<<uint(bits)), bits: bits}
	initProbs(t.probs)
	return t
}

// reset sets all probabilities back to their initial value.
func (t *treeReverseCodec) reset() { initProbs(t.probs) }

// Encode uses the range encoder to encode a fixed-bit-size value. The
// range encoder may cause errors.
func (t *treeReverseCodec) Encode(e *rangeEncoder, v uint32) error {
	m := uint32(1)
	for i := 0; i < t.bits; i++ {
		b := v & 1
		if err := e.encodeBit(b, &t.probs[m]); err != nil {
			return err
		}
		m = (m << 1) | b
		v >>= 1
	}
	return nil
}

// Decode uses the range decoder to decode a fixed-bit-size value. Errors
// returned by the range decoder will be returned.
func (t *treeReverseCodec) Decode(d *rangeDecoder) (v uint32, err error) {
	m := uint32(1)
	for j := 0; j < t.bits; j++ {
		b, err := d.decodeBit(&t.probs[m])
		if err != nil {
			return 0, err
		}
		m = (m << 1) | b
		v |= b << uint(j)
	}
	return v, nil
}

// directCodec allows the encoding and decoding of values with a fixed
// number of bits. The number of bits must be in the range [1,32].
type directCodec byte

// Bits returns the number of bits supported by this codec.
func (dc directCodec) Bits() int {
	return int(dc)
}

// Encode uses the range encoder to encode a value with the fixed number of
// bits. The most-significant bit is encoded first.
func (dc directCodec) Encode(e *rangeEncoder, v uint32) error {
	for i := int(dc) - 1; i >= 0; i-- {
		if err := e.directEncodeBit(v >> uint(i)); err != nil {
			return err
		}
	}
	return nil
}

// Decode uses the range decoder to decode a value with the given number of
// given bits. The most-significant bit is decoded first.
func (dc directCodec) Decode(d *rangeDecoder) (v uint32, err error) {
	for i := int(dc) - 1; i >= 0; i-- {
		x, err := d.directDecodeBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | x
	}
	return v, nil
}
