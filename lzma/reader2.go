// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"bufio"
	"bytes"
	"io"
)

// bufReader combines io.Reader and io.ByteReader.
type bufReader interface {
	io.Reader
	io.ByteReader
}

// asBufReader returns r if it supports io.ByteReader, otherwise r is
// wrapped by a bufio.Reader.
func asBufReader(r io.Reader) bufReader {
	if br, ok := r.(bufReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Reader2 decompresses a raw LZMA2 stream.
type Reader2 struct {
	in  bufReader
	cfg Reader2Config

	dict decoderDict
	dec  decoder

	cstate chunkState
	ctype  chunkType
	// uncompressed bytes of the current chunk still to be decoded
	remaining int
	// compressed data of the current chunk
	cbuf *[]byte
	cr   bytes.Reader

	err error
}

// NewReader2 creates a reader for a raw LZMA2 stream using the default
// configuration. The dictionary size defaults to 8 MiB.
func NewReader2(r io.Reader) (*Reader2, error) {
	var cfg Reader2Config
	return cfg.NewReader2(r)
}

// NewReader2 creates an LZMA2 reader using the given configuration.
func (cfg Reader2Config) NewReader2(r io.Reader) (*Reader2, error) {
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if err := checkMemLimit(cfg.MemoryUsageKiB(), cfg.MemLimitKiB); err != nil {
		return nil, err
	}
	zr := &Reader2{
		in:     asBufReader(r),
		cfg:    cfg,
		cstate: chunkStart,
		cbuf:   acquireChunkBuf(),
	}
	zr.dict.init(cfg.DictSize)
	zr.dec.init(&zr.dict, defaultProperties())
	return zr, nil
}

// startChunk reads the next chunk header and prepares the decoding of
// the chunk. It returns io.EOF for the end-of-stream chunk.
func (r *Reader2) startChunk() error {
	h, err := parseChunkHeader(r.in)
	if err != nil {
		return inputErr(err)
	}
	if r.cstate, err = r.cstate(h.ctype); err != nil {
		return err
	}
	debugPrintf("read chunk %s", h)
	r.ctype = h.ctype
	if h.ctype == cEOS {
		return io.EOF
	}
	if h.ctype == cUD || h.ctype == cLRND {
		r.dict.reset()
	}
	r.remaining = h.usize
	switch h.ctype {
	case cU, cUD:
		return nil
	case cLRN, cLRND:
		r.dec.state.init(h.props)
	case cLR:
		r.dec.state.reset()
	}
	buf := (*r.cbuf)[:h.csize]
	if _, err = io.ReadFull(r.in, buf); err != nil {
		return inputErr(err)
	}
	r.cr.Reset(buf)
	return r.dec.rd.init(&r.cr)
}

// fill decodes more data into the dictionary.
func (r *Reader2) fill() error {
	if r.remaining == 0 {
		if r.ctype.isLZMA() {
			if !(r.cr.Len() == 0 && r.dec.rd.possiblyAtEnd()) {
				return corruptf("compressed chunk data not consumed")
			}
		}
		return r.startChunk()
	}
	if !r.ctype.isLZMA() {
		n := min(r.remaining, r.dict.available())
		k, err := r.dict.readFrom(r.in, n)
		r.remaining -= k
		return inputErr(err)
	}
	for r.remaining > 0 && r.dict.available() >= maxMatchLen {
		n, err := r.dec.decodeOp(r.remaining)
		if err != nil {
			if err == errEOS {
				return corruptf("end-of-stream marker in LZMA2 chunk")
			}
			return err
		}
		r.remaining -= n
	}
	return nil
}

// Read reads uncompressed data from the LZMA2 stream.
func (r *Reader2) Read(p []byte) (n int, err error) {
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
			releaseChunkBuf(r.cbuf)
			r.cbuf = nil
		}
	}
}
