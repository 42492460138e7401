// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"errors"
	"io"

	"github.com/ulikunitz/lz"
)

// errClosed is returned for operations on a closed writer.
var errClosed = errors.New("lzma: writer closed")

// Writer2 supports the creation of a raw LZMA2 stream. The data is
// split into chunks; chunks that don't compress are stored.
type Writer2 struct {
	w   io.Writer
	cfg Writer2Config

	// match finder; nil if a sequencer is used
	mf *bt4
	// window holding the data to encode
	win *lzWindow
	enc encoder

	seq lz.InputSequencer
	blk lz.Block
	// bytes written to the sequencer but not sequenced yet
	unseq int

	// compressed data of the current chunk
	buf *[]byte
	hdr []byte

	// bytes in the window that have not been written as chunk
	pending int

	dictResetNeeded  bool
	stateResetNeeded bool
	propsNeeded      bool

	err error
}

// NewWriter2 creates an LZMA2 writer using the default configuration.
func NewWriter2(w io.Writer) (*Writer2, error) {
	var cfg Writer2Config
	return cfg.NewWriter2(w)
}

// NewWriter2 creates a new LZMA2 writer using the given configuration.
// A memory limit that the writer would exceed is reported as
// *MemoryLimitError.
func (cfg Writer2Config) NewWriter2(w io.Writer) (*Writer2, error) {
	cfg.ApplyDefaults()
	props := *cfg.Properties
	cfg.Properties = &props
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	zw := &Writer2{
		w:                w,
		cfg:              cfg,
		dictResetNeeded:  true,
		stateResetNeeded: true,
		propsNeeded:      true,
	}
	if cfg.LZ != nil {
		if err := zw.initSeq(cfg.LZ, props); err != nil {
			return nil, err
		}
	} else {
		err := checkMemLimit(cfg.MemoryUsageKiB(), cfg.MemLimitKiB)
		if err != nil {
			return nil, err
		}
		zw.mf = newBT4(cfg.DictSize, cfg.NiceLen, cfg.DepthLimit)
		zw.win = &zw.mf.lzWindow
		zw.enc.init(zw.mf, props, cfg.NiceLen)
	}
	zw.buf = acquireChunkBuf()
	zw.enc.re.init(sliceWriter{zw.buf})
	return zw, nil
}

// fail makes the error sticky.
func (w *Writer2) fail(err error) error {
	if w.err == nil {
		w.err = err
	}
	return w.err
}

// Write writes the bytes of p into the writer. Chunks are written to the
// underlying writer once they are full.
func (w *Writer2) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.seq != nil {
		n, err = w.writeSeq(p)
		if err != nil {
			return n, w.fail(err)
		}
		return n, nil
	}
	for len(p) > 0 {
		k := w.mf.fill(p)
		p = p[k:]
		n += k
		w.pending += k
		full, err := w.enc.encodeForLZMA2()
		if err != nil {
			return n, w.fail(err)
		}
		if full {
			if err = w.writeChunk(); err != nil {
				return n, w.fail(err)
			}
		}
	}
	return n, nil
}

// writeChunk closes the current chunk and writes it. The chunk is stored
// if the compression doesn't save at least the larger header.
func (w *Writer2) writeChunk() error {
	if err := w.enc.re.Close(); err != nil {
		return err
	}
	csize := len(*w.buf)
	usize := w.enc.uncompressed
	var err error
	if csize+2 < usize {
		err = w.writeLZMA(usize, csize)
	} else {
		w.enc.resetState()
		usize = w.enc.uncompressed
		err = w.writeStored(usize)
	}
	if err != nil {
		return err
	}
	w.pending -= usize
	w.enc.uncompressed = 0
	*w.buf = (*w.buf)[:0]
	w.enc.re.init(sliceWriter{w.buf})
	return nil
}

// writeLZMA writes an LZMA chunk.
func (w *Writer2) writeLZMA(usize, csize int) error {
	h := chunkHeader{usize: usize, csize: csize, props: *w.cfg.Properties}
	switch {
	case w.propsNeeded && w.dictResetNeeded:
		h.ctype = cLRND
	case w.propsNeeded:
		h.ctype = cLRN
	case w.stateResetNeeded:
		h.ctype = cLR
	default:
		h.ctype = cL
	}
	var err error
	if w.hdr, err = h.append(w.hdr[:0]); err != nil {
		return err
	}
	debugPrintf("chunk %s", h)
	if _, err = w.w.Write(w.hdr); err != nil {
		return err
	}
	if _, err = w.w.Write(*w.buf); err != nil {
		return err
	}
	w.propsNeeded = false
	w.stateResetNeeded = false
	w.dictResetNeeded = false
	return nil
}

// writeStored writes the last usize bytes as stored chunks.
func (w *Writer2) writeStored(usize int) error {
	for usize > 0 {
		n := min(usize, maxChunkCSize)
		h := chunkHeader{ctype: cU, usize: n}
		if w.dictResetNeeded {
			h.ctype = cUD
		}
		var err error
		if w.hdr, err = h.append(w.hdr[:0]); err != nil {
			return err
		}
		debugPrintf("chunk %s", h)
		if _, err = w.w.Write(w.hdr); err != nil {
			return err
		}
		if _, err = w.w.Write(w.win.uncompressed(usize, n)); err != nil {
			return err
		}
		usize -= n
		w.dictResetNeeded = false
	}
	w.stateResetNeeded = true
	return nil
}

// writePending encodes all data in the window and writes it as chunks.
func (w *Writer2) writePending() error {
	if w.seq != nil {
		if err := w.sequence(); err != nil {
			return err
		}
		if w.pending > 0 {
			return w.writeChunk()
		}
		return nil
	}
	for w.pending > 0 {
		if _, err := w.enc.encodeForLZMA2(); err != nil {
			return err
		}
		if err := w.writeChunk(); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes all buffered data as chunks. The next Write starts a new
// chunk.
func (w *Writer2) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.mf != nil {
		w.mf.setFlushing()
	}
	if err := w.writePending(); err != nil {
		return w.fail(err)
	}
	return nil
}

// ResetState flushes the writer and requests a state reset for the next
// LZMA chunk. The chunks following the reset can be decoded without the
// coder state of the preceding chunks.
func (w *Writer2) ResetState() error {
	if err := w.Flush(); err != nil {
		return err
	}
	w.enc.resetState()
	w.stateResetNeeded = true
	debugPrintf("state reset")
	return nil
}

// ResetDict flushes the writer and resets the dictionary. The next chunk
// doesn't reference any data written before.
func (w *Writer2) ResetDict() error {
	if err := w.Flush(); err != nil {
		return err
	}
	w.enc.resetDict()
	if w.seq != nil {
		w.seq.Reset()
	}
	w.dictResetNeeded = true
	w.stateResetNeeded = true
	w.propsNeeded = true
	debugPrintf("dictionary reset")
	return nil
}

// Close writes all buffered data and the end-of-stream chunk. It doesn't
// close the underlying writer.
func (w *Writer2) Close() error {
	if w.err != nil {
		return w.err
	}
	if w.mf != nil {
		w.mf.setFinishing()
	}
	if err := w.writePending(); err != nil {
		return w.fail(err)
	}
	if _, err := w.w.Write([]byte{byte(cEOS)}); err != nil {
		return w.fail(err)
	}
	releaseChunkBuf(w.buf)
	w.buf = nil
	w.err = errClosed
	return nil
}
