// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "io"

// decoderDict provides the dictionary for the decoder. It is a cyclic
// buffer that also holds the decoded bytes that have not been read yet.
type decoderDict struct {
	buf []byte
	// index of the next byte to write
	pos int
	// number of bytes that can be used as match source
	full int
	// number of decoded bytes not yet read
	unread int
	// bytes written since the last dictionary reset
	head int64
}

// dictBufSize returns the buffer size for a dictionary; it is rounded up
// to a multiple of 16.
func dictBufSize(dictSize int64) int {
	if dictSize < MinDictSize {
		dictSize = MinDictSize
	}
	return int((dictSize + 15) &^ 15)
}

// init initializes the dictionary. The buffer is allocated again only
// if the capacity is too small.
func (d *decoderDict) init(dictSize int64) {
	n := dictBufSize(dictSize)
	if cap(d.buf) >= n {
		d.buf = d.buf[:n]
	} else {
		d.buf = make([]byte, n)
	}
	d.pos = 0
	d.unread = 0
	d.reset()
}

// reset resets the dictionary. The unread bytes can still be read.
func (d *decoderDict) reset() {
	d.full = 0
	d.head = 0
}

// available returns the number of bytes that can be written without
// overwriting unread bytes.
func (d *decoderDict) available() int { return len(d.buf) - d.unread }

// byteAt returns the byte dist bytes back in the dictionary. Zero is
// returned for distances outside of the dictionary.
func (d *decoderDict) byteAt(dist int) byte {
	if !(0 < dist && dist <= d.full) {
		return 0
	}
	i := d.pos - dist
	if i < 0 {
		i += len(d.buf)
	}
	return d.buf[i]
}

// advanced accounts for n written bytes.
func (d *decoderDict) advanced(n int) {
	d.head += int64(n)
	d.unread += n
	d.full = min(d.full+n, len(d.buf))
}

// writeByte writes a single byte into the dictionary.
func (d *decoderDict) writeByte(c byte) {
	d.buf[d.pos] = c
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
	d.advanced(1)
}

// writeMatch copies n bytes from distance dist. The function returns an
// error if the distance is outside of the dictionary. Overlapping
// matches repeat the bytes between the source and the write position.
func (d *decoderDict) writeMatch(dist, n int) error {
	if !(0 < dist && dist <= d.full) {
		return corruptf("match distance %d exceeds dictionary content %d",
			dist, d.full)
	}
	if n > d.available() {
		panic("match doesn't fit into the dictionary")
	}
	src := d.pos - dist
	if src < 0 {
		src += len(d.buf)
	}
	for k := n; k > 0; {
		m := min(k, dist, len(d.buf)-src, len(d.buf)-d.pos)
		copy(d.buf[d.pos:d.pos+m], d.buf[src:src+m])
		d.pos += m
		if d.pos == len(d.buf) {
			d.pos = 0
		}
		src += m
		if src == len(d.buf) {
			src = 0
		}
		k -= m
	}
	d.advanced(n)
	return nil
}

// readFrom copies up to n bytes from r into the dictionary. The value n
// must not exceed the available space.
func (d *decoderDict) readFrom(r io.Reader, n int) (k int, err error) {
	if n > d.available() {
		panic("not enough space in dictionary")
	}
	for k < n {
		m := min(n-k, len(d.buf)-d.pos)
		m, err = io.ReadFull(r, d.buf[d.pos:d.pos+m])
		d.pos += m
		if d.pos == len(d.buf) {
			d.pos = 0
		}
		d.advanced(m)
		k += m
		if err != nil {
			return k, err
		}
	}
	return k, nil
}

// Read reads decoded bytes from the dictionary.
func (d *decoderDict) Read(p []byte) (n int, err error) {
	for n < len(p) && d.unread > 0 {
		start := d.pos - d.unread
		if start < 0 {
			start += len(d.buf)
		}
		end := start + d.unread
		if end > len(d.buf) {
			end = len(d.buf)
		}
		k := copy(p[n:], d.buf[start:end])
		d.unread -= k
		n += k
	}
	return n, nil
}
