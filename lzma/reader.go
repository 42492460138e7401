// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"io"
	"math"
)

// Reader decompresses a classic LZMA stream.
type Reader struct {
	in   bufReader
	h    header
	dict decoderDict
	dec  decoder
	// uncompressed bytes still to decode if the size is known
	remaining int64
	err       error
}

// NewReader creates a reader for a classic LZMA stream using the default
// configuration.
func NewReader(r io.Reader) (*Reader, error) {
	var cfg ReaderConfig
	return cfg.NewReader(r)
}

// NewReader reads the header and creates the reader for the stream. The
// memory required by the dictionary is checked against the limit of the
// configuration.
func (cfg ReaderConfig) NewReader(r io.Reader) (*Reader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	in := asBufReader(r)
	h, err := readHeader(in)
	if err != nil {
		return nil, err
	}
	dictSize := max(int64(h.dictSize), MinDictSize)
	if err = checkMemLimit(decoderMemoryUsageKiB(dictSize, h.properties),
		cfg.MemLimitKiB); err != nil {
		return nil, err
	}
	zr := &Reader{in: in, h: h, remaining: h.size}
	zr.dict.init(dictSize)
	zr.dec.init(&zr.dict, h.properties)
	if err = zr.dec.rd.init(in); err != nil {
		return nil, err
	}
	return zr, nil
}

// fill decodes more data into the dictionary.
func (r *Reader) fill() error {
	if r.h.size >= 0 && r.remaining == 0 {
		return io.EOF
	}
	limit := math.MaxInt
	if r.h.size >= 0 {
		limit = int(min(r.remaining, math.MaxInt32))
	}
	for r.dict.available() >= maxMatchLen && limit > 0 {
		n, err := r.dec.decodeOp(limit)
		if err != nil {
			if err != errEOS {
				return err
			}
			if r.h.size >= 0 {
				return corruptf("end-of-stream marker before declared size")
			}
			if !r.dec.rd.possiblyAtEnd() {
				return corruptf("range decoder not at end after marker")
			}
			return io.EOF
		}
		limit -= n
		if r.h.size >= 0 {
			r.remaining -= int64(n)
		}
	}
	return nil
}

// Read reads uncompressed data from the stream.
func (r *Reader) Read(p []byte) (n int, err error) {
	for {
		k, _ := r.dict.Read(p[n:])
		n += k
		if n == len(p) {
			return n, nil
		}
		if r.err != nil {
			return n, r.err
		}
		if err = r.fill(); err != nil {
			r.err = err
		}
	}
}
