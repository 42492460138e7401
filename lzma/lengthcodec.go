// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// maxPosBits defines the number of bits of the position value that are
// used to compute the posState value. The value is used to select the tree
// codec for length encoding and decoding.
const maxPosBits = 4

// minMatchLen and maxMatchLen give the minimum and maximum values for
// encoding and decoding length values. minMatchLen is also used as base
// for the encoded length values.
const (
	minMatchLen = 2
	maxMatchLen = minMatchLen + 16 + 256 - 1
)

// lengthCodec supports the encoding of the length value.
type lengthCodec struct {
	choice [2]prob
	low    [1 << maxPosBits]treeCodec
	mid    [1 << maxPosBits]treeCodec
	high   treeCodec
}

// init initializes a new length codec.
func (lc *lengthCodec) init() {
	lc.choice = [2]prob{probInit, probInit}
	if lc.high.probs != nil {
		for i := range lc.low {
			lc.low[i].reset()
			lc.mid[i].reset()
		}
		lc.high.reset()
		return
	}
	for i := range lc.low {
		lc.low[i] = makeTreeCodec(3)
	}
	for i := range lc.mid {
		lc.mid[i] = makeTreeCodec(3)
	}
	lc.high = makeTreeCodec(8)
}

// Encode encodes the length offset. The length offset l can be compute by
// subtracting minMatchLen (2) from the actual length.
//
//	l = length - minMatchLen
func (lc *lengthCodec) Encode(e *rangeEncoder, l uint32, posState uint32,
) error {
	if l > maxMatchLen-minMatchLen {
		panic("l out of range")
	}
	if l < 8 {
		if err := e.encodeBit(0, &lc.choice[0]); err != nil {
			return err
		}
		return lc.low[posState].Encode(e, l)
	}
	if err := e.encodeBit(1, &lc.choice[0]); err != nil {
		return err
	}
	if l < 16 {
		if err := e.encodeBit(0, &lc.choice[1]); err != nil {
			return err
		}
		return lc.mid[posState].Encode(e, l-8)
	}
	if err := e.encodeBit(1, &lc.choice[1]); err != nil {
		return err
	}
	return lc.high.Encode(e, l-16)
}

// Decode reads the length offset. Add minMatchLen to compute the actual
// length to the length offset l.
func (lc *lengthCodec) Decode(d *rangeDecoder, posState uint32,
) (l uint32, err error) {
	var b uint32
	if b, err = d.decodeBit(&lc.choice[0]); err != nil {
		return
	}
	if b == 0 {
		return lc.low[posState].Decode(d)
	}
	if b, err = d.decodeBit(&lc.choice[1]); err != nil {
		return
	}
	if b == 0 {
		l, err = lc.mid[posState].Decode(d)
		return l + 8, err
	}
	l, err = lc.high.Decode(d)
	return l + 16, err
}
