// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "sync"

// chunkBufSize is the capacity of the chunk buffers. It covers the
// largest compressed chunk including the range encoder overhead.
const chunkBufSize = maxChunkCSize + 64

// chunkBufPool recycles the buffers for compressed chunks across
// streams.
var chunkBufPool = sync.Pool{
	New: func() any {
		p := make([]byte, 0, chunkBufSize)
		return &p
	},
}

// acquireChunkBuf returns an empty buffer from the pool.
func acquireChunkBuf() *[]byte {
	p := chunkBufPool.Get().(*[]byte)
	*p = (*p)[:0]
	return p
}

// releaseChunkBuf returns the buffer to the pool. The argument may be
// nil.
func releaseChunkBuf(p *[]byte) {
	if p == nil || cap(*p) != chunkBufSize {
		return
	}
	chunkBufPool.Put(p)
}

// sliceWriter appends all bytes written to a slice.
type sliceWriter struct {
	p *[]byte
}

// WriteByte appends c to the slice.
func (w sliceWriter) WriteByte(c byte) error {
	*w.p = append(*w.p, c)
	return nil
}
