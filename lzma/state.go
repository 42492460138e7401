// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// states defines the number of supported coder states.
const states = 12

// numReps is the number of repeat distances kept by the coder state.
const numReps = 4

// state maintains the full state of the operation encoding or decoding
// process: the probability bank, the state number and the repeat
// distances.
type state struct {
	isMatch     [states << maxPosBits]prob
	isRepG0Long [states << maxPosBits]prob
	isRep       [states]prob
	isRepG0     [states]prob
	isRepG1     [states]prob
	isRepG2     [states]prob
	litCodec    literalCodec
	lenCodec    lengthCodec
	repLenCodec lengthCodec
	distCodec   distCodec
	Properties
	rep        [numReps]uint32
	state      uint32
	posBitMask uint32
}

// init initializes the state for the given properties.
func (s *state) init(p Properties) {
	s.Properties = p
	s.reset()
}

// reset puts all probabilities back to their initial values and clears
// the repeat distances. The properties are kept.
func (s *state) reset() {
	s.state = 0
	s.rep = [numReps]uint32{}
	s.posBitMask = (1 << uint(s.PB)) - 1
	initProbs(s.isMatch[:])
	initProbs(s.isRepG0Long[:])
	initProbs(s.isRep[:])
	initProbs(s.isRepG0[:])
	initProbs(s.isRepG1[:])
	initProbs(s.isRepG2[:])
	s.litCodec.init(s.LC, s.LP)
	s.lenCodec.init()
	s.repLenCodec.init()
	s.distCodec.init()
}

// updateStateLiteral updates the state for a literal.
func (s *state) updateStateLiteral() {
	switch {
	case s.state < 4:
		s.state = 0
		return
	case s.state < 10:
		s.state -= 3
		return
	}
	s.state -= 6
}

// updateStateMatch updates the state for a match.
func (s *state) updateStateMatch() {
	if s.state < 7 {
		s.state = 7
	} else {
		s.state = 10
	}
}

// updateStateRep updates the state for a repetition.
func (s *state) updateStateRep() {
	if s.state < 7 {
		s.state = 8
	} else {
		s.state = 11
	}
}

// updateStateShortRep updates the state for a short repetition.
func (s *state) updateStateShortRep() {
	if s.state < 7 {
		s.state = 9
	} else {
		s.state = 11
	}
}

// states computes the states of the operation codec. The position is
// counted from the last dictionary reset.
func (s *state) states(pos int64) (state1, state2, posState uint32) {
	state1 = s.state
	posState = uint32(pos) & s.posBitMask
	state2 = (s.state << maxPosBits) | posState
	return
}

// litState computes the literal state.
func (s *state) litState(prev byte, pos int64) uint32 {
	litState := ((uint32(pos) & ((1 << uint(s.LP)) - 1)) << uint(s.LC)) |
		(uint32(prev) >> (8 - uint(s.LC)))
	return litState
}
