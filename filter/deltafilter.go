// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"
	"io"
)

// DeltaFilter stores the differences of bytes that are Distance bytes
// apart. It supports data with fixed-size records like images or audio.
type DeltaFilter struct {
	Distance int
}

func (f DeltaFilter) String() string {
	return fmt.Sprintf("delta distance %d", f.Distance)
}

// ID returns the ID of the delta filter.
func (f DeltaFilter) ID() uint64 { return DeltaFilterID }

// MarshalBinary encodes the distance as single byte.
func (f DeltaFilter) MarshalBinary() (data []byte, err error) {
	if !(MinDeltaDistance <= f.Distance && f.Distance <= MaxDeltaDistance) {
		return nil, configf("delta distance %d out of range", f.Distance)
	}
	return []byte{DeltaFilterID, 1, byte(f.Distance - 1)}, nil
}

// UnmarshalBinary decodes the filter.
func (f *DeltaFilter) UnmarshalBinary(data []byte) error {
	if len(data) != 3 || data[0] != DeltaFilterID || data[1] != 1 {
		return corruptf("invalid delta filter properties %02x", data)
	}
	f.Distance = int(data[2]) + 1
	return nil
}

// NewReader returns a reader that decodes the data read from r.
func (f DeltaFilter) NewReader(r io.Reader, c *ReaderConfig) (fr io.Reader,
	err error) {
	d, err := NewDelta(false, f.Distance)
	if err != nil {
		return nil, err
	}
	return NewConvReader(r, d), nil
}

// NewWriteCloser returns a writer that encodes the data before writing it
// to w.
func (f DeltaFilter) NewWriteCloser(w io.Writer, c *WriterConfig,
) (fw io.WriteCloser, err error) {
	d, err := NewDelta(true, f.Distance)
	if err != nil {
		return nil, err
	}
	return NewConvWriter(w, d), nil
}

func (f DeltaFilter) last() bool { return false }
