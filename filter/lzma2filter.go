// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"fmt"
	"io"

	"github.com/lzmago/codec/lzma"
)

// LZMA2Filter declares the LZMA2 compression of a filter chain. It must
// be the last filter.
type LZMA2Filter struct {
	DictSize int64
}

// String returns a representation of the LZMA2 filter.
func (f LZMA2Filter) String() string {
	return fmt.Sprintf("LZMA2 dict size %#x", f.DictSize)
}

// ID returns the ID for the LZMA2 filter.
func (f LZMA2Filter) ID() uint64 { return LZMA2FilterID }

// MarshalBinary converts the LZMA2Filter in its encoded representation.
// The dictionary size is rounded up to the next size that can be
// encoded.
func (f LZMA2Filter) MarshalBinary() (data []byte, err error) {
	if f.DictSize < lzma.MinDictSize {
		return nil, configf("LZMA2 dictionary size %d too small",
			f.DictSize)
	}
	return []byte{LZMA2FilterID, 1, lzma.EncodeDictSize(f.DictSize)}, nil
}

// UnmarshalBinary unmarshals the given data representation of the LZMA2
// filter.
func (f *LZMA2Filter) UnmarshalBinary(data []byte) error {
	if len(data) != 3 || data[0] != LZMA2FilterID || data[1] != 1 {
		return corruptf("invalid LZMA2 filter properties %02x", data)
	}
	n, err := lzma.DecodeDictSize(data[2])
	if err != nil {
		return err
	}
	f.DictSize = n
	return nil
}

// NewReader creates a new reader for the LZMA2 filter.
func (f LZMA2Filter) NewReader(r io.Reader, c *ReaderConfig) (fr io.Reader,
	err error) {

	var config lzma.Reader2Config
	if c != nil {
		config.DictSize = c.DictSize
		config.MemLimitKiB = c.MemLimitKiB
	}
	if f.DictSize < 1 {
		return nil, configf("LZMA2 dictionary size %d", f.DictSize)
	}
	config.DictSize = max(config.DictSize, f.DictSize)
	return config.NewReader2(r)
}

// NewWriteCloser creates a io.WriteCloser for the LZMA2 filter.
func (f LZMA2Filter) NewWriteCloser(w io.Writer, c *WriterConfig,
) (fw io.WriteCloser, err error) {
	var config lzma.Writer2Config
	if c != nil {
		config = lzma.Writer2Config{
			Properties:  c.Properties,
			DictSize:    c.DictSize,
			NiceLen:     c.NiceLen,
			DepthLimit:  c.DepthLimit,
			MemLimitKiB: c.MemLimitKiB,
		}
	}
	if !(1 <= f.DictSize && f.DictSize <= 1<<31-1) {
		return nil, configf("LZMA2 dictionary size %d out of range",
			f.DictSize)
	}
	config.DictSize = max(config.DictSize, int(f.DictSize))
	return config.NewWriter2(w)
}

// last returns true, because an LZMA2 filter must be the last filter in
// the filter list.
func (f LZMA2Filter) last() bool { return true }
