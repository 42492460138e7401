// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"bufio"
	"errors"
	"io"
)

// errSize indicates that the number of bytes written doesn't match the
// size stored in the header.
var errSize = errors.New("lzma: number of bytes written doesn't match size in header")

// Writer compresses data into a classic LZMA stream.
type Writer struct {
	bw  *bufio.Writer
	cfg WriterConfig
	mf  *bt4
	enc encoder
	// number of bytes written
	n   int64
	err error
}

// NewWriter creates a new LZMA writer for the classic format using the
// default configuration. The stream will have an end-of-stream marker
// and no size in the header.
func NewWriter(w io.Writer) (*Writer, error) {
	var cfg WriterConfig
	return cfg.NewWriter(w)
}

// NewWriter creates a new writer for the classic LZMA format. The header
// is written immediately.
func (cfg WriterConfig) NewWriter(w io.Writer) (*Writer, error) {
	cfg.ApplyDefaults()
	props := *cfg.Properties
	cfg.Properties = &props
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if err := checkMemLimit(cfg.MemoryUsageKiB(), cfg.MemLimitKiB); err != nil {
		return nil, err
	}
	h := header{properties: props, dictSize: uint32(cfg.DictSize), size: -1}
	if cfg.SizeInHeader {
		h.size = cfg.Size
	}
	data, err := h.marshalBinary()
	if err != nil {
		return nil, err
	}
	zw := &Writer{
		bw:  bufio.NewWriter(w),
		cfg: cfg,
		mf:  newBT4(cfg.DictSize, cfg.NiceLen, cfg.DepthLimit),
	}
	if _, err = zw.bw.Write(data); err != nil {
		return nil, err
	}
	zw.enc.init(zw.mf, props, cfg.NiceLen)
	zw.enc.re.init(zw.bw)
	return zw, nil
}

// Write puts the data into the stream. It returns an error if more data
// is written than the size in the header allows.
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	var sizeErr error
	if w.cfg.SizeInHeader && w.n+int64(len(p)) > w.cfg.Size {
		p = p[:w.cfg.Size-w.n]
		sizeErr = errSize
	}
	for len(p) > 0 {
		k := w.mf.fill(p)
		p = p[k:]
		n += k
		w.n += int64(k)
		if err = w.enc.encodeAll(); err != nil {
			w.err = err
			return n, err
		}
	}
	return n, sizeErr
}

// Close finishes the stream. The end-of-stream marker is written if
// required. The underlying writer is not closed.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if w.cfg.SizeInHeader && w.n != w.cfg.Size {
		w.err = errSize
		return errSize
	}
	w.mf.setFinishing()
	err := w.enc.encodeAll()
	if err == nil && w.cfg.EOSMarker {
		err = w.enc.encodeEOS()
	}
	if err == nil {
		err = w.enc.re.Close()
	}
	if err == nil {
		err = w.bw.Flush()
	}
	if err != nil {
		w.err = err
		return err
	}
	w.err = errClosed
	return nil
}
