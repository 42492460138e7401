// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

// decoder decodes LZMA operations from the range decoder into the
// dictionary.
type decoder struct {
	state state
	rd    rangeDecoder
	dict  *decoderDict
}

// init initializes the decoder.
func (d *decoder) init(dict *decoderDict, p Properties) {
	d.dict = dict
	d.state.init(p)
}

// decodeLiteral decodes a single literal.
func (d *decoder) decodeLiteral() error {
	s := &d.state
	prev := d.dict.byteAt(1)
	matchByte := d.dict.byteAt(int(s.rep[0]) + 1)
	litState := s.litState(prev, d.dict.head)
	c, err := s.litCodec.Decode(&d.rd, s.state, matchByte, litState)
	if err != nil {
		return err
	}
	d.dict.writeByte(c)
	s.updateStateLiteral()
	return nil
}

// decodeOp decodes the next operation and writes its bytes into the
// dictionary. The operation must not produce more than limit bytes. The
// function returns the number of bytes written. The end-of-stream marker
// is reported as errEOS.
func (d *decoder) decodeOp(limit int) (n int, err error) {
	s := &d.state
	rd := &d.rd
	state, state2, posState := s.states(d.dict.head)

	b, err := rd.decodeBit(&s.isMatch[state2])
	if err != nil {
		return 0, err
	}
	if b == 0 {
		if err = d.decodeLiteral(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	b, err = rd.decodeBit(&s.isRep[state])
	if err != nil {
		return 0, err
	}
	if b == 0 {
		// simple match
		l, err := s.lenCodec.Decode(rd, posState)
		if err != nil {
			return 0, err
		}
		dist, err := s.distCodec.Decode(rd, l)
		if err != nil {
			return 0, err
		}
		if dist == eosDist {
			return 0, errEOS
		}
		s.rep[3], s.rep[2], s.rep[1], s.rep[0] = s.rep[2], s.rep[1], s.rep[0], dist
		s.updateStateMatch()
		n = int(l) + minMatchLen
		return n, d.copyMatch(n, limit)
	}
	b, err = rd.decodeBit(&s.isRepG0[state])
	if err != nil {
		return 0, err
	}
	if b == 0 {
		b, err = rd.decodeBit(&s.isRepG0Long[state2])
		if err != nil {
			return 0, err
		}
		if b == 0 {
			// short repetition
			s.updateStateShortRep()
			return 1, d.copyMatch(1, limit)
		}
	} else {
		b, err = rd.decodeBit(&s.isRepG1[state])
		if err != nil {
			return 0, err
		}
		var dist uint32
		if b == 0 {
			dist = s.rep[1]
		} else {
			b, err = rd.decodeBit(&s.isRepG2[state])
			if err != nil {
				return 0, err
			}
			if b == 0 {
				dist = s.rep[2]
			} else {
				dist = s.rep[3]
				s.rep[3] = s.rep[2]
			}
			s.rep[2] = s.rep[1]
		}
		s.rep[1] = s.rep[0]
		s.rep[0] = dist
	}
	l, err := s.repLenCodec.Decode(rd, posState)
	if err != nil {
		return 0, err
	}
	s.updateStateRep()
	n = int(l) + minMatchLen
	return n, d.copyMatch(n, limit)
}

// copyMatch copies n bytes from the distance rep[0]+1.
func (d *decoder) copyMatch(n, limit int) error {
	if n > limit {
		return corruptf("match length %d exceeds remaining size %d",
			n, limit)
	}
	return d.dict.writeMatch(int(d.state.rep[0])+1, n)
}

// decoderMemoryUsageKiB returns the memory required for the dictionary
// and the coder state in KiB.
func decoderMemoryUsageKiB(dictSize int64, p Properties) int64 {
	lit := int64(2*0x300<<uint(p.LC+p.LP)) / 1024
	return 10 + int64(dictBufSize(dictSize))/1024 + lit
}
