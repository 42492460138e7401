// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"

	"github.com/lzmago/codec/lzma"
)

// Limits for the distance of the delta filter.
const (
	MinDeltaDistance = 1
	MaxDeltaDistance = 256
)

// DeltaConverter computes the differences between bytes that are
// distance bytes apart. The decoder computes the running sums.
type DeltaConverter struct {
	enc      bool
	distance byte
	// last 256 bytes of the original data
	history [256]byte
	pos     byte
}

// NewDelta creates a delta converter. The distance must be in the range
// [1,256].
func NewDelta(enc bool, distance int) (*DeltaConverter, error) {
	if !(MinDeltaDistance <= distance && distance <= MaxDeltaDistance) {
		return nil, fmt.Errorf("%w: delta distance %d out of range [%d,%d]",
			lzma.ErrInvalidConfig, distance, MinDeltaDistance,
			MaxDeltaDistance)
	}
	// distance 256 wraps to 0, which addresses the oldest byte
	return &DeltaConverter{enc: enc, distance: byte(distance)}, nil
}

// Code converts all bytes of p.
func (c *DeltaConverter) Code(p []byte) int {
	if c.enc {
		for i, b := range p {
			p[i] = b - c.history[c.distance+c.pos]
			c.history[c.pos] = b
			c.pos--
		}
		return len(p)
	}
	for i, b := range p {
		b += c.history[c.distance+c.pos]
		p[i] = b
		c.history[c.pos] = b
		c.pos--
	}
	return len(p)
}
