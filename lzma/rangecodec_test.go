// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
)

func TestRangeCoderBits(t *testing.T) {
	tests := []struct {
		name string
		bits func(i int, rnd *rand.Rand) uint32
	}{
		{"zeros", func(int, *rand.Rand) uint32 { return 0 }},
		{"ones", func(int, *rand.Rand) uint32 { return 1 }},
		{"alternating", func(i int, _ *rand.Rand) uint32 { return uint32(i & 1) }},
		{"random", func(_ int, rnd *rand.Rand) uint32 { return uint32(rnd.Intn(2)) }},
		{"skewed", func(_ int, rnd *rand.Rand) uint32 {
			return iverson(rnd.Intn(1000) == 0)
		}},
	}
	const n = 20000
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rnd := rand.New(rand.NewSource(1))
			want := make([]uint32, n)
			for i := range want {
				want[i] = tc.bits(i, rnd)
			}
			var buf []byte
			var e rangeEncoder
			e.init(sliceWriter{&buf})
			var p [4]prob
			initProbs(p[:])
			for i, b := range want {
				if i%7 == 0 {
					if err := e.directEncodeBit(b); err != nil {
						t.Fatalf("directEncodeBit error %s", err)
					}
					continue
				}
				if err := e.encodeBit(b, &p[i&3]); err != nil {
					t.Fatalf("encodeBit error %s", err)
				}
			}
			if err := e.Close(); err != nil {
				t.Fatalf("Close error %s", err)
			}
			if int64(len(buf)) != e.n {
				t.Fatalf("len(buf)=%d; e.n=%d", len(buf), e.n)
			}

			var d rangeDecoder
			br := bytes.NewReader(buf)
			if err := d.init(br); err != nil {
				t.Fatalf("init error %s", err)
			}
			initProbs(p[:])
			for i, w := range want {
				var g uint32
				var err error
				if i%7 == 0 {
					g, err = d.directDecodeBit()
				} else {
					g, err = d.decodeBit(&p[i&3])
				}
				if err != nil {
					t.Fatalf("bit %d: decode error %s", i, err)
				}
				if g != w {
					t.Fatalf("bit %d: got %d; want %d", i, g, w)
				}
			}
			if br.Len() != 0 || !d.possiblyAtEnd() {
				t.Fatalf("decoder not at end; %d bytes left; code %#x",
					br.Len(), d.code)
			}
		})
	}
}

func TestRangeDecoderInit(t *testing.T) {
	var d rangeDecoder
	err := d.init(bytes.NewReader([]byte{1, 0, 0, 0, 0}))
	if !errors.Is(err, ErrCorrupted) {
		t.Fatalf("non-zero first byte: got error %v; want ErrCorrupted", err)
	}
	err = d.init(bytes.NewReader([]byte{0, 0, 0}))
	if !errors.Is(err, ErrCorrupted) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("short input: got error %v; want truncation", err)
	}
	if err = d.init(bytes.NewReader([]byte{0, 0, 0, 0, 0})); err != nil {
		t.Fatalf("valid start: error %s", err)
	}
}

func TestProbLimits(t *testing.T) {
	p := probInit
	for i := 0; i < 1000; i++ {
		p.inc()
	}
	if !(p < 1<<probBits && p > 1<<probBits-64) {
		t.Fatalf("after inc p=%d", p)
	}
	for i := 0; i < 1000; i++ {
		p.dec()
	}
	if !(0 < p && p < 64) {
		t.Fatalf("after dec p=%d", p)
	}
}
