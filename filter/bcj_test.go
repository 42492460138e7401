// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// codeLike generates data with many byte patterns that look like branch
// instructions of all supported architectures.
func codeLike(seed int64, n int) []byte {
	rng := rand.New(rand.NewSource(seed))
	patterns := [][]byte{
		{0xe8}, {0xe9}, {0x0f, 0x80},
		{0x00, 0x00, 0x00, 0xeb}, {0x12, 0x34, 0x56, 0xeb},
		{0x00, 0xf0, 0x00, 0xf8}, {0x12, 0xf3, 0x45, 0xfe},
		{0x48, 0x00, 0x00, 0x01}, {0x4b, 0xff, 0xff, 0xfd},
		{0x40, 0x00, 0x00, 0x10}, {0x7f, 0xff, 0xff, 0xf0},
		{0x00, 0x00}, {0xff, 0xff},
	}
	p := make([]byte, 0, n+8)
	for len(p) < n {
		if rng.Intn(3) == 0 {
			p = append(p, byte(rng.Intn(256)))
			continue
		}
		p = append(p, patterns[rng.Intn(len(patterns))]...)
	}
	return p[:n]
}

// convertAll converts the whole buffer with c. The bytes the converter
// doesn't handle remain unchanged.
func convertAll(c Converter, p []byte) []byte {
	q := bytes.Clone(p)
	c.Code(q)
	return q
}

var bcjMethods = []BCJMethod{X86, PowerPC, ARM, ARMThumb, SPARC}

func TestBCJVectors(t *testing.T) {
	tests := []struct {
		c    Converter
		in   []byte
		want []byte
	}{
		{NewX86(true, 0),
			[]byte{0xe8, 0, 0, 0, 0, 0x90, 0x90, 0x90, 0x90},
			[]byte{0xe8, 5, 0, 0, 0, 0x90, 0x90, 0x90, 0x90}},
		{NewX86(true, 0x1000),
			[]byte{0xe8, 0, 0, 0, 0, 0x90, 0x90, 0x90, 0x90},
			[]byte{0xe8, 5, 0x10, 0, 0, 0x90, 0x90, 0x90, 0x90}},
		// the most significant byte doesn't indicate a near call
		{NewX86(true, 0),
			[]byte{0xe8, 0, 0, 0, 0x12, 0x90, 0x90, 0x90, 0x90},
			[]byte{0xe8, 0, 0, 0, 0x12, 0x90, 0x90, 0x90, 0x90}},
		{NewARM(true, 0),
			[]byte{0, 0, 0, 0xeb, 0, 0, 0, 0xeb},
			[]byte{2, 0, 0, 0xeb, 3, 0, 0, 0xeb}},
		{NewARMThumb(true, 0),
			[]byte{0, 0xf0, 0, 0xf8},
			[]byte{0, 0xf0, 2, 0xf8}},
		{NewPowerPC(true, 0),
			[]byte{0x48, 0, 0, 1, 0x48, 0, 0, 1},
			[]byte{0x48, 0, 0, 1, 0x48, 0, 0, 5}},
		{NewSPARC(true, 0),
			[]byte{0, 0, 0, 0, 0x40, 0, 0, 0},
			[]byte{0, 0, 0, 0, 0x40, 0, 0, 1}},
	}
	for i, tc := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.Equal(t, tc.want, convertAll(tc.c, tc.in))
		})
	}
}

func TestBCJInvertible(t *testing.T) {
	for _, m := range bcjMethods {
		for _, start := range []uint32{0, 0x1000, 0xfffffff0} {
			t.Run(fmt.Sprintf("%s/%#x", m, start), func(t *testing.T) {
				for seed := int64(0); seed < 10; seed++ {
					data := codeLike(seed, 10000+int(seed))
					enc := convertAll(m.converter(true, start), data)
					require.NotEqual(t, data, enc, "nothing converted")
					dec := convertAll(m.converter(false, start), enc)
					require.Equal(t, data, dec)
				}
			})
		}
	}
}

func TestBCJCodeCount(t *testing.T) {
	tests := []struct {
		c    Converter
		n    int
		want int
	}{
		{NewX86(true, 0), 4, 0},
		{NewARM(true, 0), 3, 0},
		{NewARM(true, 0), 10, 8},
		{NewARMThumb(true, 0), 7, 4},
		{NewPowerPC(true, 0), 7, 4},
		{NewSPARC(true, 0), 12, 12},
	}
	for i, tc := range tests {
		got := tc.c.Code(make([]byte, tc.n))
		require.Equal(t, tc.want, got, "test %d", i)
	}
	got := NewX86(true, 0).Code(make([]byte, 100))
	require.LessOrEqual(t, got, 100)
	require.GreaterOrEqual(t, got, 96)
}

func TestDeltaVectors(t *testing.T) {
	tests := []struct {
		distance int
		in       []byte
		want     []byte
	}{
		{1, []byte{1, 2, 3, 4}, []byte{1, 1, 1, 1}},
		{2, []byte{1, 2, 3, 4}, []byte{1, 2, 2, 2}},
		{1, []byte{0, 255, 0}, []byte{0, 255, 1}},
		{4, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{1, 2, 3, 4, 4, 4, 4, 4}},
	}
	for _, tc := range tests {
		c, err := NewDelta(true, tc.distance)
		require.NoError(t, err)
		require.Equal(t, tc.want, convertAll(c, tc.in))
	}
}

func TestDeltaInvertible(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 5000)
	rng.Read(data)
	for _, d := range []int{1, 2, 3, 7, 100, 255, 256} {
		enc, err := NewDelta(true, d)
		require.NoError(t, err)
		dec, err := NewDelta(false, d)
		require.NoError(t, err)
		p := bytes.Clone(data)
		// convert in pieces to carry the history over calls
		for q := p; len(q) > 0; {
			n := min(len(q), 1+rng.Intn(600))
			require.Equal(t, n, enc.Code(q[:n]))
			q = q[n:]
		}
		require.Equal(t, data, convertAll(dec, p), "distance %d", d)
	}
}

func TestDeltaDistance(t *testing.T) {
	for _, d := range []int{0, -1, 257} {
		_, err := NewDelta(true, d)
		require.Error(t, err)
	}
	// distance 256 refers to the byte 256 positions back
	c, err := NewDelta(true, 256)
	require.NoError(t, err)
	p := make([]byte, 512)
	for i := range p {
		p[i] = byte(i)
	}
	q := convertAll(c, p)
	require.Equal(t, p[:256], q[:256])
	require.Equal(t, make([]byte, 256), q[256:])
}
