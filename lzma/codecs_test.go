// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"bytes"
	"math/rand"
	"testing"
)

// codecRoundTrip encodes values with enc and checks that dec returns them.
func codecRoundTrip(t *testing.T, values []uint32,
	enc func(e *rangeEncoder, v uint32) error,
	dec func(d *rangeDecoder) (uint32, error),
) {
	t.Helper()
	var buf []byte
	var e rangeEncoder
	e.init(sliceWriter{&buf})
	for _, v := range values {
		if err := enc(&e, v); err != nil {
			t.Fatalf("encode(%d) error %s", v, err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	var d rangeDecoder
	if err := d.init(bytes.NewReader(buf)); err != nil {
		t.Fatalf("init error %s", err)
	}
	for i, w := range values {
		g, err := dec(&d)
		if err != nil {
			t.Fatalf("value %d: decode error %s", i, err)
		}
		if g != w {
			t.Fatalf("value %d: got %d; want %d", i, g, w)
		}
	}
}

func TestLengthCodec(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	values := make([]uint32, 5000)
	for i := range values {
		values[i] = uint32(rnd.Intn(maxMatchLen - minMatchLen + 1))
	}
	values = append(values, 0, 7, 8, 15, 16, maxMatchLen-minMatchLen)
	var ec, dc lengthCodec
	ec.init()
	dc.init()
	i, j := 0, 0
	codecRoundTrip(t, values,
		func(e *rangeEncoder, v uint32) error {
			i++
			return ec.Encode(e, v, uint32(i&15))
		},
		func(d *rangeDecoder) (uint32, error) {
			j++
			return dc.Decode(d, uint32(j&15))
		})
}

func TestDistCodec(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	values := []uint32{0, 1, 2, 3, 4, 5, 127, 128, 1<<20 - 1, eosDist}
	for i := 0; i < 3000; i++ {
		values = append(values, uint32(rnd.Int63n(1<<uint(rnd.Intn(32)+1))))
	}
	var ec, dc distCodec
	ec.init()
	dc.init()
	i, j := 0, 0
	codecRoundTrip(t, values,
		func(e *rangeEncoder, v uint32) error {
			i++
			return ec.Encode(e, v, uint32(i%6))
		},
		func(d *rangeDecoder) (uint32, error) {
			j++
			return dc.Decode(d, uint32(j%6))
		})
}

func TestLiteralCodec(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	values := make([]uint32, 5000)
	for i := range values {
		values[i] = uint32(rnd.Intn(256))
	}
	var ec, dc literalCodec
	ec.init(3, 1)
	dc.init(3, 1)
	// The state and the match byte are derived from the position.
	param := func(i int) (state uint32, match byte, litState uint32) {
		return uint32(i % states), byte(i * 7), uint32(i % 16)
	}
	i, j := 0, 0
	codecRoundTrip(t, values,
		func(e *rangeEncoder, v uint32) error {
			s, m, l := param(i)
			i++
			return ec.Encode(e, byte(v), s, m, l)
		},
		func(d *rangeDecoder) (uint32, error) {
			s, m, l := param(j)
			j++
			c, err := dc.Decode(d, s, m, l)
			return uint32(c), err
		})
}

func TestStateTransitions(t *testing.T) {
	var s state
	s.init(defaultProperties())
	lit := []uint32{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 4, 5}
	for i, w := range lit {
		s.state = uint32(i)
		s.updateStateLiteral()
		if s.state != w {
			t.Fatalf("literal after %d: got %d; want %d", i, s.state, w)
		}
	}
	for i := uint32(0); i < states; i++ {
		tests := []struct {
			update func()
			lo, hi uint32
		}{
			{s.updateStateMatch, 7, 10},
			{s.updateStateRep, 8, 11},
			{s.updateStateShortRep, 9, 11},
		}
		for _, tc := range tests {
			s.state = i
			tc.update()
			want := tc.lo
			if i >= 7 {
				want = tc.hi
			}
			if s.state != want {
				t.Fatalf("state %d: got %d; want %d", i, s.state, want)
			}
		}
	}
}
