// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "math"

// match describes a match candidate. The dist field stores the distance
// minus one.
type match struct {
	len  int
	dist int
}

// bt4 is the binary-tree match finder. It uses the hash tables for 2, 3
// and 4 bytes and a binary search tree over the last dictSize+1 positions.
type bt4 struct {
	lzWindow
	hash hash234

	// two entries per cyclic position: the smaller subtree at 2*i, the
	// larger at 2*i+1
	tree       []int32
	cyclicSize int32
	cyclicPos  int32
	lzPos      int32
	// lzPos value that triggers the normalization of all positions
	normLimit int32

	niceLen     int
	depthLimit  int
	matchLenMax int

	matches []match
}

// newBT4 creates a new match finder.
func newBT4(dictSize, niceLen, depthLimit int) *bt4 {
	mf := &bt4{
		niceLen:     niceLen,
		depthLimit:  depthLimit,
		matchLenMax: maxMatchLen,
		cyclicSize:  int32(dictSize) + 1,
		normLimit:   math.MaxInt32,
		matches:     make([]match, 0, 16),
	}
	if mf.depthLimit <= 0 {
		mf.depthLimit = 16 + niceLen/2
	}
	mf.lzWindow.init(dictSize)
	mf.hash.init(dictSize)
	mf.tree = make([]int32, 2*int(mf.cyclicSize))
	mf.lzPos = mf.cyclicSize
	return mf
}

// reset clears the window and all match finder structures.
func (mf *bt4) reset() {
	mf.lzWindow.reset()
	mf.hash.reset()
	clear(mf.tree)
	mf.cyclicPos = 0
	mf.lzPos = mf.cyclicSize
}

// fill adds data to the window and processes positions that had been
// skipped for missing lookahead.
func (mf *bt4) fill(p []byte) int {
	n := mf.lzWindow.fill(p)
	mf.processPending()
	return n
}

// setFlushing allows the encoder to consume all data in the window.
func (mf *bt4) setFlushing() {
	mf.readLimit = mf.writePos - 1
	mf.processPending()
}

// setFinishing marks the end of the input. The last positions are
// processed without the usual lookahead.
func (mf *bt4) setFinishing() {
	mf.readLimit = mf.writePos - 1
	mf.finishing = true
	mf.processPending()
}

// processPending inserts the pending positions once more input or the
// flushing request allows it.
func (mf *bt4) processPending() {
	if mf.pendingSize > 0 && mf.readPos < mf.readLimit {
		mf.readPos -= mf.pendingSize
		n := mf.pendingSize
		mf.pendingSize = 0
		mf.skip(n)
	}
}

// movePos advances all positions. It returns the available bytes or zero
// if the position cannot be processed.
func (mf *bt4) movePos() int {
	a := mf.advance(mf.niceLen, 4)
	if a == 0 {
		return 0
	}
	mf.lzPos++
	if mf.lzPos == mf.normLimit {
		offset := mf.normLimit - mf.cyclicSize
		mf.hash.normalize(offset)
		normalizePositions(mf.tree, offset)
		mf.lzPos -= offset
		debugPrintf("bt4: positions normalized by %d", offset)
	}
	mf.cyclicPos++
	if mf.cyclicPos == mf.cyclicSize {
		mf.cyclicPos = 0
	}
	return a
}

// getMatches finds the matches for the next position and advances the
// position by one byte. The matches are sorted by strictly increasing
// length. The returned slice is valid until the next call.
func (mf *bt4) getMatches() []match {
	mf.matches = mf.matches[:0]
	lenLimit := mf.matchLenMax
	niceLimit := mf.niceLen
	a := mf.movePos()
	if a < lenLimit {
		if a == 0 {
			return mf.matches
		}
		lenLimit = a
		if niceLimit > a {
			niceLimit = a
		}
	}

	buf := mf.buf
	r := mf.readPos
	mf.hash.calcHashes(buf[r : r+4])
	delta2 := mf.lzPos - mf.hash.hash2Pos()
	delta3 := mf.lzPos - mf.hash.hash3Pos()
	current := mf.hash.hash4Pos()
	mf.hash.updateTables(mf.lzPos)

	lenBest := 0
	if delta2 < mf.cyclicSize && buf[r-int(delta2)] == buf[r] {
		lenBest = 2
		mf.matches = append(mf.matches, match{len: 2, dist: int(delta2) - 1})
	}
	if delta2 != delta3 && delta3 < mf.cyclicSize &&
		buf[r-int(delta3)] == buf[r] {
		lenBest = 3
		mf.matches = append(mf.matches, match{dist: int(delta3) - 1})
		delta2 = delta3
	}
	if k := len(mf.matches); k > 0 {
		d := int(delta2)
		for lenBest < lenLimit && buf[r+lenBest-d] == buf[r+lenBest] {
			lenBest++
		}
		mf.matches[k-1].len = lenBest
		if lenBest >= niceLimit {
			mf.skipTree(niceLimit, current)
			return mf.matches
		}
	}
	if lenBest < 3 {
		lenBest = 3
	}

	depth := mf.depthLimit
	ptr0 := 2*mf.cyclicPos + 1
	ptr1 := 2 * mf.cyclicPos
	len0, len1 := 0, 0
	for {
		delta := mf.lzPos - current
		if depth == 0 || delta >= mf.cyclicSize {
			mf.tree[ptr0] = 0
			mf.tree[ptr1] = 0
			return mf.matches
		}
		depth--
		pair := mf.cyclicPos - delta
		if delta > mf.cyclicPos {
			pair += mf.cyclicSize
		}
		pair <<= 1
		d := int(delta)
		n := min(len0, len1)
		if buf[r+n-d] == buf[r+n] {
			for n++; n < lenLimit; n++ {
				if buf[r+n-d] != buf[r+n] {
					break
				}
			}
			if n > lenBest {
				lenBest = n
				mf.matches = append(mf.matches,
					match{len: n, dist: d - 1})
				if n >= niceLimit {
					mf.tree[ptr1] = mf.tree[pair]
					mf.tree[ptr0] = mf.tree[pair+1]
					return mf.matches
				}
			}
		}
		if buf[r+n-d] < buf[r+n] {
			mf.tree[ptr1] = current
			ptr1 = pair + 1
			current = mf.tree[ptr1]
			len1 = n
		} else {
			mf.tree[ptr0] = current
			ptr0 = pair
			current = mf.tree[ptr0]
			len0 = n
		}
	}
}

// skipTree inserts the current position into the tree without collecting
// matches.
func (mf *bt4) skipTree(niceLimit int, current int32) {
	buf := mf.buf
	r := mf.readPos
	depth := mf.depthLimit
	ptr0 := 2*mf.cyclicPos + 1
	ptr1 := 2 * mf.cyclicPos
	len0, len1 := 0, 0
	for {
		delta := mf.lzPos - current
		if depth == 0 || delta >= mf.cyclicSize {
			mf.tree[ptr0] = 0
			mf.tree[ptr1] = 0
			return
		}
		depth--
		pair := mf.cyclicPos - delta
		if delta > mf.cyclicPos {
			pair += mf.cyclicSize
		}
		pair <<= 1
		d := int(delta)
		n := min(len0, len1)
		if buf[r+n-d] == buf[r+n] {
			for {
				n++
				if n == niceLimit {
					mf.tree[ptr1] = mf.tree[pair]
					mf.tree[ptr0] = mf.tree[pair+1]
					return
				}
				if buf[r+n-d] != buf[r+n] {
					break
				}
			}
		}
		if buf[r+n-d] < buf[r+n] {
			mf.tree[ptr1] = current
			ptr1 = pair + 1
			current = mf.tree[ptr1]
			len1 = n
		} else {
			mf.tree[ptr0] = current
			ptr0 = pair
			current = mf.tree[ptr0]
			len0 = n
		}
	}
}

// skip advances n positions and updates hash tables and tree for each of
// them.
func (mf *bt4) skip(n int) {
	for ; n > 0; n-- {
		niceLimit := mf.niceLen
		a := mf.movePos()
		if a < niceLimit {
			if a == 0 {
				continue
			}
			niceLimit = a
		}
		r := mf.readPos
		mf.hash.calcHashes(mf.buf[r : r+4])
		current := mf.hash.hash4Pos()
		mf.hash.updateTables(mf.lzPos)
		mf.skipTree(niceLimit, current)
	}
}

// bt4MemoryUsageKiB estimates the memory required by the match finder
// without the window buffer.
func bt4MemoryUsageKiB(dictSize int) int64 {
	return hash234MemoryUsageKiB(dictSize) + int64(dictSize)/(1024/8) + 10
}
