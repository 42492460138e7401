// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// lzWindow is the linear input buffer of the encoder. It keeps the
// dictionary behind the read position and the lookahead in front of it.
// The buffer content is moved to the start of the slice if the read
// position approaches the end.
type lzWindow struct {
	buf []byte
	// bytes to keep before readPos for the dictionary
	before int

	readPos   int
	readLimit int
	writePos  int
	finishing bool
	// positions skipped because of missing lookahead
	pendingSize int
}

// keepAfter is the number of bytes that must follow the read position
// before data is encoded.
const keepAfter = maxMatchLen - 1 + maxMatchLen

// keepBefore returns the number of bytes kept before the read position.
// The bytes must cover the dictionary and a complete stored chunk.
func keepBefore(dictSize int) int {
	return 1 + max(dictSize, maxChunkCSize+maxMatchLen)
}

// windowSize computes the size of the window buffer for the given
// dictionary size.
func windowSize(dictSize int) int {
	reserve := dictSize/2 + 256<<10
	if reserve > 512<<20 {
		reserve = 512 << 20
	}
	return keepBefore(dictSize) + keepAfter + reserve
}

// init allocates the buffer of the window.
func (w *lzWindow) init(dictSize int) {
	n := windowSize(dictSize)
	var buf []byte
	if cap(w.buf) >= n {
		buf = w.buf[:n]
	} else {
		buf = make([]byte, n)
	}
	*w = lzWindow{
		buf:    buf,
		before: keepBefore(dictSize),
	}
	w.reset()
}

// reset discards all data in the window.
func (w *lzWindow) reset() {
	w.readPos = -1
	w.readLimit = -1
	w.writePos = 0
	w.finishing = false
	w.pendingSize = 0
}

// move moves the data to the start of the buffer. The offset is a
// multiple of 16 so that positions modulo 16 are preserved.
func (w *lzWindow) move() {
	off := (w.readPos + 1 - w.before) &^ 15
	n := w.writePos - off
	copy(w.buf, w.buf[off:off+n])
	w.readPos -= off
	w.readLimit -= off
	w.writePos -= off
}

// fill copies as much of p into the buffer as possible and returns the
// number of bytes copied.
func (w *lzWindow) fill(p []byte) int {
	if w.readPos >= len(w.buf)-keepAfter {
		w.move()
	}
	n := copy(w.buf[w.writePos:], p)
	w.writePos += n
	if w.writePos >= keepAfter {
		w.readLimit = w.writePos - keepAfter
	}
	return n
}

// put appends p to the window without the lookahead bookkeeping of
// fill. The window is moved if p doesn't fit behind the write position.
func (w *lzWindow) put(p []byte) int {
	if len(w.buf)-w.writePos < len(p) && w.readPos+1-w.before >= 16 {
		w.move()
	}
	n := copy(w.buf[w.writePos:], p)
	w.writePos += n
	return n
}

// started reports whether the first byte has been consumed.
func (w *lzWindow) started() bool { return w.readPos != -1 }

// hasEnoughData reports whether data can be encoded at the position
// alreadyRead bytes before the read position.
func (w *lzWindow) hasEnoughData(alreadyRead int) bool {
	return w.readPos-alreadyRead < w.readLimit
}

// avail returns the number of bytes available at the read position.
func (w *lzWindow) avail() int { return w.writePos - w.readPos }

// pos returns the read position. The position modulo 16 equals the
// number of bytes consumed since the last reset modulo 16.
func (w *lzWindow) pos() int { return w.readPos }

// advance increments the read position. It returns the available bytes
// for the new position, or zero if the position has to be processed
// again after more input arrived.
func (w *lzWindow) advance(requiredForFlushing, requiredForFinishing int) int {
	w.readPos++
	a := w.writePos - w.readPos
	if a < requiredForFlushing {
		if a < requiredForFinishing || !w.finishing {
			w.pendingSize++
			a = 0
		}
	}
	return a
}

// byteAt returns the byte backward bytes before the read position. It
// returns zero for positions before the start of the data.
func (w *lzWindow) byteAt(backward int) byte {
	i := w.readPos - backward
	if i < 0 {
		return 0
	}
	return w.buf[i]
}

// matchLen returns the length of the match at distance dist+1 from the
// position forward bytes ahead of the read position. The length is
// limited by limit.
func (w *lzWindow) matchLen(forward int, dist int, limit int) int {
	cur := w.readPos + forward
	back := cur - dist - 1
	if back < 0 {
		return 0
	}
	n := 0
	for n < limit && w.buf[cur+n] == w.buf[back+n] {
		n++
	}
	return n
}

// uncompressed returns the n bytes starting backward bytes before the
// next read position.
func (w *lzWindow) uncompressed(backward, n int) []byte {
	i := w.readPos + 1 - backward
	return w.buf[i : i+n]
}
