// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"errors"
	"io"
)

// convBufSize is the size of the buffers used by the conversion reader
// and writer.
const convBufSize = 4096

// convReader applies a converter to the data read from an underlying
// reader.
type convReader struct {
	r io.Reader
	c Converter
	// buf[start:conv] is converted, buf[conv:end] is not
	buf   []byte
	start int
	conv  int
	end   int
	eof   bool
	err   error
}

// NewConvReader returns a reader that converts the data read from r. The
// trailing bytes that the converter cannot handle are returned
// unconverted.
func NewConvReader(r io.Reader, c Converter) io.Reader {
	return &convReader{r: r, c: c, buf: make([]byte, convBufSize)}
}

// Read reads converted data.
func (r *convReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if r.start < r.conv {
			n = copy(p, r.buf[r.start:r.conv])
			r.start += n
			return n, nil
		}
		if r.err != nil {
			return 0, r.err
		}
		if r.eof {
			if r.conv < r.end {
				r.conv = r.end
				continue
			}
			r.err = io.EOF
			continue
		}
		r.end = copy(r.buf, r.buf[r.conv:r.end])
		r.start, r.conv = 0, 0
		k, err := r.r.Read(r.buf[r.end:])
		r.end += k
		r.conv = r.c.Code(r.buf[:r.end])
		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			r.err = err
		}
	}
}

// errWriterClosed indicates a write to a closed conversion writer.
var errWriterClosed = errors.New("filter: writer closed")

// convWriter applies a converter to the data before it is written to the
// underlying writer.
type convWriter struct {
	w io.Writer
	c Converter
	// unconverted bytes
	buf []byte
	n   int
	err error
}

// NewConvWriter returns a writer that converts the data before writing
// it to w. Close writes the remaining bytes unconverted; it doesn't
// close w.
func NewConvWriter(w io.Writer, c Converter) io.WriteCloser {
	return &convWriter{w: w, c: c, buf: make([]byte, convBufSize)}
}

// Write converts p and writes the converted data.
func (w *convWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	for len(p) > 0 {
		k := copy(w.buf[w.n:], p)
		w.n += k
		p = p[k:]
		n += k
		c := w.c.Code(w.buf[:w.n])
		if _, err = w.w.Write(w.buf[:c]); err != nil {
			w.err = err
			return n, err
		}
		w.n = copy(w.buf, w.buf[c:w.n])
	}
	return n, nil
}

// Close writes the unconverted rest of the data.
func (w *convWriter) Close() error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.w.Write(w.buf[:w.n]); err != nil {
		w.err = err
		return err
	}
	w.n = 0
	w.err = errWriterClosed
	return nil
}
