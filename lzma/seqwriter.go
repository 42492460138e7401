// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"errors"

	"github.com/ulikunitz/lz"
)

// seqBlockSize limits the bytes handed to the sequencer before they are
// sequenced and encoded. The window reserve must exceed it.
const seqBlockSize = 64 << 10

// errNoBuffer is returned if the sequencer doesn't accept data although
// all buffered data has been sequenced.
var errNoBuffer = errors.New("lzma: sequencer provides no buffer")

// memSizer is supported by the sequencers of the lz module.
type memSizer interface {
	MemSize() uintptr
}

// initSeq prepares the encoder for symbols provided by a sequencer. The
// window is only used as history; it has no match finder.
func (e *encoder) initSeq(win *lzWindow, p Properties) {
	e.mf = nil
	e.win = win
	e.state.init(p)
	e.readAhead = -1
	e.matches = nil
	e.uncompressed = 0
}

// encodeSeqLiteral encodes the next byte of the window. It is sent as
// short repetition if the byte at the most recent distance matches.
func (e *encoder) encodeSeqLiteral() error {
	if !e.shortRepPossible() {
		return e.encodeLiteral()
	}
	state, state2, posState := e.state.states(int64(e.position()))
	if err := e.re.encodeBit(1, &e.state.isMatch[state2]); err != nil {
		return err
	}
	if err := e.re.encodeBit(1, &e.state.isRep[state]); err != nil {
		return err
	}
	return e.encodeRepMatch(0, 1, posState)
}

// encodeSeqMatch encodes a match with distance offset dist+1. A distance
// found among the repeated distances is encoded as repeated match.
func (e *encoder) encodeSeqMatch(dist uint32, n int) error {
	state, state2, posState := e.state.states(int64(e.position()))
	if err := e.re.encodeBit(1, &e.state.isMatch[state2]); err != nil {
		return err
	}
	for rep := 0; rep < numReps; rep++ {
		if e.state.rep[rep] != dist {
			continue
		}
		if err := e.re.encodeBit(1, &e.state.isRep[state]); err != nil {
			return err
		}
		return e.encodeRepMatch(rep, n, posState)
	}
	if err := e.re.encodeBit(0, &e.state.isRep[state]); err != nil {
		return err
	}
	return e.encodeMatch(dist, n, posState)
}

// splitMatchLen returns the length of the next operation for a match of
// length m. The rest must not become shorter than minMatchLen.
func splitMatchLen(m int) int {
	switch {
	case m <= maxMatchLen:
		return m
	case m >= maxMatchLen+minMatchLen:
		return maxMatchLen
	}
	return m - minMatchLen
}

// initSeq sets the writer up for the sequencer configuration. The
// sequencer window must fit into the dictionary.
func (w *Writer2) initSeq(cfg lz.Configurator, props Properties) error {
	seq, err := cfg.NewInputSequencer()
	if err != nil {
		return configf("lz sequencer: %w", err)
	}
	if ws := seq.WindowSize(); ws > w.cfg.DictSize {
		return configf("sequencer window %d exceeds dictionary size %d",
			ws, w.cfg.DictSize)
	}
	needed := w.cfg.MemoryUsageKiB()
	if m, ok := seq.(memSizer); ok {
		needed += int64(m.MemSize()) / 1024
	}
	if err = checkMemLimit(needed, w.cfg.MemLimitKiB); err != nil {
		return err
	}
	w.seq = seq
	w.win = new(lzWindow)
	w.win.init(w.cfg.DictSize)
	w.enc.initSeq(w.win, props)
	return nil
}

// writeSeq passes p to the window and the sequencer and encodes the
// sequenced blocks.
func (w *Writer2) writeSeq(p []byte) (n int, err error) {
	for len(p) > 0 {
		k := min(len(p), seqBlockSize-w.unseq, w.seq.RequestBuffer())
		if k == 0 {
			if w.unseq == 0 {
				return n, errNoBuffer
			}
			if err = w.sequence(); err != nil {
				return n, err
			}
			continue
		}
		k = w.win.put(p[:k])
		if _, err = w.seq.Write(p[:k]); err != nil {
			return n, err
		}
		p = p[k:]
		n += k
		w.pending += k
		w.unseq += k
		if w.unseq >= seqBlockSize {
			if err = w.sequence(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// sequence converts all data buffered by the sequencer into blocks and
// encodes them.
func (w *Writer2) sequence() error {
	for w.unseq > 0 {
		n, err := w.seq.Sequence(&w.blk, 0)
		if err != nil {
			return err
		}
		w.unseq -= n
		if err = w.encodeBlock(); err != nil {
			return err
		}
	}
	return nil
}

// encodeBlock encodes the sequences and trailing literals of the block.
// The literal bytes are taken from the window.
func (w *Writer2) encodeBlock() error {
	lits := len(w.blk.Literals)
	for _, s := range w.blk.Sequences {
		for i := 0; i < int(s.LitLen); i++ {
			if err := w.encodeOp(0, 1); err != nil {
				return err
			}
		}
		lits -= int(s.LitLen)
		for m := int(s.MatchLen); m > 0; {
			k := splitMatchLen(m)
			if err := w.encodeOp(s.Offset, k); err != nil {
				return err
			}
			m -= k
		}
	}
	for ; lits > 0; lits-- {
		if err := w.encodeOp(0, 1); err != nil {
			return err
		}
	}
	return nil
}

// encodeOp encodes a literal for offset zero or a match of n bytes. A
// chunk is written first if it is full.
func (w *Writer2) encodeOp(offset uint32, n int) error {
	e := &w.enc
	if e.uncompressed > chunkUncompressedLimit ||
		e.re.pending() > chunkCompressedLimit {
		if err := w.writeChunk(); err != nil {
			return err
		}
	}
	var err error
	if offset == 0 {
		err = e.encodeSeqLiteral()
	} else {
		err = e.encodeSeqMatch(offset-1, n)
	}
	if err != nil {
		return err
	}
	w.win.readPos += n
	e.uncompressed += n
	return nil
}
