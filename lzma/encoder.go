// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// Limits for the chunks of an LZMA2 stream. A chunk is finished if one of
// the limits is exceeded; the last symbol must still fit into the chunk.
const (
	maxChunkUSize = 2 << 20
	maxChunkCSize = 64 << 10

	chunkUncompressedLimit = maxChunkUSize - maxMatchLen
	chunkCompressedLimit   = maxChunkCSize - 26
)

// encoder encodes the data in the window of the match finder into LZMA
// operations. It selects between literals, matches and repeated matches
// by looking at the longest matches of the current and the next position.
type encoder struct {
	mf *bt4
	// window providing the bytes to encode; it is the window of mf if a
	// match finder is used
	win   *lzWindow
	state state
	re    rangeEncoder

	niceLen int
	// number of positions the match finder is ahead of the position of
	// the next symbol minus one
	readAhead int
	matches   []match
	// result of nextSymbol: -1 for a literal, 0..3 for a repeated
	// distance, otherwise the distance offset plus numReps
	back int
	// bytes encoded since the last call of resetUncompressed
	uncompressed int
}

// init initializes the encoder.
func (e *encoder) init(mf *bt4, p Properties, niceLen int) {
	e.mf = mf
	e.win = &mf.lzWindow
	e.niceLen = niceLen
	e.state.init(p)
	e.readAhead = -1
	e.matches = nil
	e.uncompressed = 0
}

// resetState resets the coder state. Bytes already read by the match
// finder are counted as encoded; they will be stored by the caller.
func (e *encoder) resetState() {
	e.state.reset()
	e.uncompressed += e.readAhead + 1
	e.readAhead = -1
}

// resetDict resets the coder state and the match finder.
func (e *encoder) resetDict() {
	e.state.reset()
	if e.mf != nil {
		e.mf.reset()
	} else {
		e.win.reset()
	}
	e.readAhead = -1
	e.uncompressed = 0
}

// nextMatches asks the match finder for the matches at the next position.
func (e *encoder) nextMatches() {
	e.readAhead++
	e.matches = e.mf.getMatches()
}

// skip lets the match finder skip n positions.
func (e *encoder) skip(n int) {
	e.readAhead += n
	e.mf.skip(n)
}

// changePair reports whether the match with the bigger distance should be
// preferred over the one with the smaller distance although it is one
// byte shorter.
func changePair(smallDist, bigDist int) bool {
	return smallDist < bigDist>>7
}

// nextSymbol selects the next symbol to encode. It returns the length of
// the symbol and sets e.back.
func (e *encoder) nextSymbol() int {
	if e.readAhead == -1 {
		e.nextMatches()
	}
	e.back = -1
	avail := min(e.mf.avail(), maxMatchLen)
	if avail < minMatchLen {
		return 1
	}

	bestRepLen, bestRepIndex := 0, 0
	for rep := 0; rep < numReps; rep++ {
		n := e.mf.matchLen(0, int(e.state.rep[rep]), avail)
		if n < minMatchLen {
			continue
		}
		if n >= e.niceLen {
			e.back = rep
			e.skip(n - 1)
			return n
		}
		if n > bestRepLen {
			bestRepIndex = rep
			bestRepLen = n
		}
	}

	mainLen, mainDist := 0, 0
	if k := len(e.matches); k > 0 {
		mainLen = e.matches[k-1].len
		mainDist = e.matches[k-1].dist
		if mainLen >= e.niceLen {
			e.back = mainDist + numReps
			e.skip(mainLen - 1)
			return mainLen
		}
		for k > 1 && mainLen == e.matches[k-2].len+1 {
			if !changePair(e.matches[k-2].dist, mainDist) {
				break
			}
			k--
			mainLen = e.matches[k-1].len
			mainDist = e.matches[k-1].dist
		}
		if mainLen == minMatchLen && mainDist >= 0x80 {
			mainLen = 1
		}
	}

	if bestRepLen >= minMatchLen {
		if bestRepLen+1 >= mainLen ||
			(bestRepLen+2 >= mainLen && mainDist >= 1<<9) ||
			(bestRepLen+3 >= mainLen && mainDist >= 1<<15) {
			e.back = bestRepIndex
			e.skip(bestRepLen - 1)
			return bestRepLen
		}
	}

	if mainLen < minMatchLen || avail <= minMatchLen {
		return 1
	}

	// lazy evaluation: look at the matches of the next position
	e.nextMatches()
	if k := len(e.matches); k > 0 {
		newLen := e.matches[k-1].len
		newDist := e.matches[k-1].dist
		if (newLen >= mainLen && newDist < mainDist) ||
			(newLen == mainLen+1 && !changePair(mainDist, newDist)) ||
			newLen > mainLen+1 ||
			(newLen+1 >= mainLen && mainLen >= minMatchLen+1 &&
				changePair(newDist, mainDist)) {
			return 1
		}
	}
	limit := max(mainLen-1, minMatchLen)
	for rep := 0; rep < numReps; rep++ {
		if e.mf.matchLen(0, int(e.state.rep[rep]), limit) == limit {
			return 1
		}
	}

	e.back = mainDist + numReps
	e.skip(mainLen - 2)
	return mainLen
}

// position returns the position of the next symbol.
func (e *encoder) position() int {
	return e.win.pos() - e.readAhead
}

// encodeInit encodes the first byte after a dictionary reset as literal.
func (e *encoder) encodeInit() (ok bool, err error) {
	if !e.mf.hasEnoughData(0) {
		return false, nil
	}
	e.skip(1)
	if err = e.encodeLiteral(); err != nil {
		return false, err
	}
	e.readAhead--
	e.uncompressed++
	return true, nil
}

// encodeSymbol encodes the next symbol. It returns false if the window
// doesn't contain enough data.
func (e *encoder) encodeSymbol() (ok bool, err error) {
	if !e.mf.hasEnoughData(e.readAhead + 1) {
		return false, nil
	}
	n := e.nextSymbol()
	pos := int64(e.position())
	state, state2, posState := e.state.states(pos)
	switch {
	case e.back < 0 && e.shortRepPossible():
		if err = e.re.encodeBit(1, &e.state.isMatch[state2]); err != nil {
			return false, err
		}
		if err = e.re.encodeBit(1, &e.state.isRep[state]); err != nil {
			return false, err
		}
		err = e.encodeRepMatch(0, 1, posState)
	case e.back < 0:
		err = e.encodeLiteral()
	default:
		if err = e.re.encodeBit(1, &e.state.isMatch[state2]); err != nil {
			return false, err
		}
		if e.back < numReps {
			if err = e.re.encodeBit(1, &e.state.isRep[state]); err != nil {
				return false, err
			}
			err = e.encodeRepMatch(e.back, n, posState)
		} else {
			if err = e.re.encodeBit(0, &e.state.isRep[state]); err != nil {
				return false, err
			}
			err = e.encodeMatch(uint32(e.back-numReps), n, posState)
		}
	}
	if err != nil {
		return false, err
	}
	e.readAhead -= n
	e.uncompressed += n
	return true, nil
}

// shortRepPossible reports whether the byte at the position of the next
// symbol equals the byte at the most recent distance.
func (e *encoder) shortRepPossible() bool {
	if e.position() == 0 {
		return false
	}
	return e.win.byteAt(e.readAhead) ==
		e.win.byteAt(int(e.state.rep[0])+1+e.readAhead)
}

// encodeLiteral encodes the byte at the position of the next symbol as a
// literal.
func (e *encoder) encodeLiteral() error {
	pos := int64(e.position())
	state, state2, _ := e.state.states(pos)
	if err := e.re.encodeBit(0, &e.state.isMatch[state2]); err != nil {
		return err
	}
	c := e.win.byteAt(e.readAhead)
	prev := e.win.byteAt(1 + e.readAhead)
	matchByte := e.win.byteAt(int(e.state.rep[0]) + 1 + e.readAhead)
	litState := e.state.litState(prev, pos)
	err := e.state.litCodec.Encode(&e.re, c, state, matchByte, litState)
	if err != nil {
		return err
	}
	e.state.updateStateLiteral()
	return nil
}

// encodeMatch encodes a simple match. The dist value is the distance
// minus one.
func (e *encoder) encodeMatch(dist uint32, n int, posState uint32) error {
	s := &e.state
	l := uint32(n - minMatchLen)
	if err := s.lenCodec.Encode(&e.re, l, posState); err != nil {
		return err
	}
	if err := s.distCodec.Encode(&e.re, dist, l); err != nil {
		return err
	}
	s.updateStateMatch()
	s.rep[3], s.rep[2], s.rep[1], s.rep[0] = s.rep[2], s.rep[1], s.rep[0], dist
	return nil
}

// encodeRepMatch encodes a match using the repeated distance with the
// given index. A length of 1 is encoded as short repetition.
func (e *encoder) encodeRepMatch(rep int, n int, posState uint32) error {
	s := &e.state
	state, state2, _ := s.states(int64(e.position()))
	if rep == 0 {
		if err := e.re.encodeBit(0, &s.isRepG0[state]); err != nil {
			return err
		}
		if err := e.re.encodeBit(iverson(n != 1), &s.isRepG0Long[state2]); err != nil {
			return err
		}
	} else {
		dist := s.rep[rep]
		if err := e.re.encodeBit(1, &s.isRepG0[state]); err != nil {
			return err
		}
		if rep == 1 {
			if err := e.re.encodeBit(0, &s.isRepG1[state]); err != nil {
				return err
			}
		} else {
			if err := e.re.encodeBit(1, &s.isRepG1[state]); err != nil {
				return err
			}
			if err := e.re.encodeBit(uint32(rep-2), &s.isRepG2[state]); err != nil {
				return err
			}
			if rep == 3 {
				s.rep[3] = s.rep[2]
			}
			s.rep[2] = s.rep[1]
		}
		s.rep[1] = s.rep[0]
		s.rep[0] = dist
	}
	if n == 1 {
		s.updateStateShortRep()
		return nil
	}
	if err := s.repLenCodec.Encode(&e.re, uint32(n-minMatchLen), posState); err != nil {
		return err
	}
	s.updateStateRep()
	return nil
}

// encodeEOS writes the end-of-stream marker of classic LZMA streams.
func (e *encoder) encodeEOS() error {
	state, state2, posState := e.state.states(int64(e.position()))
	if err := e.re.encodeBit(1, &e.state.isMatch[state2]); err != nil {
		return err
	}
	if err := e.re.encodeBit(0, &e.state.isRep[state]); err != nil {
		return err
	}
	return e.encodeMatch(eosDist, minMatchLen, posState)
}

// encodeAll encodes all symbols the window permits.
func (e *encoder) encodeAll() error {
	if !e.mf.started() {
		ok, err := e.encodeInit()
		if !ok || err != nil {
			return err
		}
	}
	for {
		ok, err := e.encodeSymbol()
		if !ok || err != nil {
			return err
		}
	}
}

// encodeForLZMA2 encodes symbols until the window runs out of data or the
// chunk limits are reached. It returns true if the chunk is full.
func (e *encoder) encodeForLZMA2() (full bool, err error) {
	if !e.mf.started() {
		ok, err := e.encodeInit()
		if !ok || err != nil {
			return false, err
		}
	}
	for e.uncompressed <= chunkUncompressedLimit &&
		e.re.pending() <= chunkCompressedLimit {
		ok, err := e.encodeSymbol()
		if !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}

// iverson implements the Iverson operator as proposed by Donald Knuth in
// his book Concrete Mathematics.
func iverson(ok bool) uint32 {
	if ok {
		return 1
	}
	return 0
}

// encoderMemoryUsageKiB estimates the memory required by an encoder in
// KiB.
func encoderMemoryUsageKiB(dictSize int, p Properties) int64 {
	lit := int64(2*0x300<<uint(p.LC+p.LP)) / 1024
	return 80 + int64(windowSize(dictSize))/1024 +
		bt4MemoryUsageKiB(dictSize) + lit
}
