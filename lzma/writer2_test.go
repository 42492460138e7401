// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/cespare/xxhash/v2"
	fuzz "github.com/google/gofuzz"
	"golang.org/x/sync/errgroup"

	"github.com/lzmago/codec/internal/randtxt"
)

// text returns n bytes of random text.
func text(t testing.TB, seed int64, n int) []byte {
	t.Helper()
	p := make([]byte, n)
	if _, err := io.ReadFull(randtxt.NewReader(rand.NewSource(seed)), p); err != nil {
		t.Fatalf("ReadFull error %s", err)
	}
	return p
}

// random returns n random bytes.
func random(seed int64, n int) []byte {
	p := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(p)
	return p
}

// compress2 compresses data into a raw LZMA2 stream.
func compress2(t testing.TB, cfg Writer2Config, data []byte) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w, err := cfg.NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	if _, err = w.Write(data); err != nil {
		t.Fatalf("w.Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("w.Close error %s", err)
	}
	return buf.Bytes()
}

// decompress2 decompresses a raw LZMA2 stream.
func decompress2(dictSize int, data []byte) ([]byte, error) {
	r, err := Reader2Config{DictSize: int64(dictSize)}.NewReader2(
		bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// chunkHeaders parses the chunk headers of a raw LZMA2 stream.
func chunkHeaders(t testing.TB, data []byte) []chunkHeader {
	t.Helper()
	r := bytes.NewReader(data)
	var hdrs []chunkHeader
	for {
		h, err := parseChunkHeader(r)
		if err != nil {
			t.Fatalf("parseChunkHeader error %s", err)
		}
		hdrs = append(hdrs, h)
		n := h.csize
		switch h.ctype {
		case cEOS:
			if r.Len() != 0 {
				t.Fatalf("%d bytes after end of stream", r.Len())
			}
			return hdrs
		case cU, cUD:
			n = h.usize
		}
		if _, err = r.Seek(int64(n), io.SeekCurrent); err != nil {
			t.Fatalf("Seek error %s", err)
		}
	}
}

func smallConfig() Writer2Config {
	return Writer2Config{DictSize: 64 << 10}
}

func TestWriter2RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"single", []byte{'a'}},
		{"aaaaaaaaaa", []byte("aaaaaaaaaa")},
		{"short", []byte("=====foofoobar==foobar====")},
		{"text", text(t, 1, 300000)},
		{"random", random(2, 150000)},
		{"zeros", make([]byte, 3<<20)},
		{"mixed", append(random(3, 100000), text(t, 4, 200000)...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := smallConfig()
			z := compress2(t, cfg, tc.data)
			t.Logf("uncompressed: %d bytes; compressed: %d bytes",
				len(tc.data), len(z))
			g, err := decompress2(cfg.DictSize, z)
			if err != nil {
				t.Fatalf("decompress error %s", err)
			}
			if !bytes.Equal(g, tc.data) {
				t.Fatalf("decompressed data differs")
			}
		})
	}
}

func TestWriter2Example(t *testing.T) {
	cfg := Writer2Config{DictSize: 4096, NiceLen: 32}
	z := compress2(t, cfg, []byte("aaaaaaaaaa"))
	hdrs := chunkHeaders(t, z)
	if len(hdrs) != 2 || hdrs[0].usize != 10 {
		t.Fatalf("chunks %v; want a single data chunk", hdrs)
	}
	g, err := decompress2(cfg.DictSize, z)
	if err != nil {
		t.Fatalf("decompress error %s", err)
	}
	if string(g) != "aaaaaaaaaa" {
		t.Fatalf("got %q; want %q", g, "aaaaaaaaaa")
	}
}

func TestWriter2Parameters(t *testing.T) {
	data := append(text(t, 5, 100000), random(6, 20000)...)
	data = append(data, data[:30000]...)
	sum := xxhash.Sum64(data)
	for _, dictSize := range []int{MinDictSize, 1 << 16, 1 << 20} {
		for _, p := range []Properties{{0, 0, 0}, {3, 0, 2}, {0, 4, 4}, {4, 0, 0}, {1, 3, 1}} {
			for _, niceLen := range []int{8, 64, 273} {
				for _, depth := range []int{0, 1, 200} {
					p := p
					cfg := Writer2Config{
						Properties: &p,
						DictSize:   dictSize,
						NiceLen:    niceLen,
						DepthLimit: depth,
					}
					name := fmt.Sprintf("dict=%d/%s/nice=%d/depth=%d",
						dictSize, &p, niceLen, depth)
					t.Run(name, func(t *testing.T) {
						z := compress2(t, cfg, data)
						g, err := decompress2(dictSize, z)
						if err != nil {
							t.Fatalf("decompress error %s", err)
						}
						if xxhash.Sum64(g) != sum {
							t.Fatalf("decompressed data differs")
						}
					})
				}
			}
		}
	}
}

func TestWriter2Fuzz(t *testing.T) {
	f := fuzz.NewWithSeed(42).NilChance(0).NumElements(0, 5000)
	cfg := Writer2Config{DictSize: MinDictSize, NiceLen: 8}
	for i := 0; i < 200; i++ {
		var data []byte
		f.Fuzz(&data)
		if i%2 == 1 {
			// repetitive input
			data = bytes.Repeat(data, 1+i%7)
		}
		z := compress2(t, cfg, data)
		g, err := decompress2(cfg.DictSize, z)
		if err != nil {
			t.Fatalf("%d: decompress error %s", i, err)
		}
		if !bytes.Equal(g, data) {
			t.Fatalf("%d: decompressed data differs", i)
		}
	}
}

func TestWriter2ChunkLimits(t *testing.T) {
	cfg := Writer2Config{DictSize: 1 << 20}
	data := text(t, 7, 5<<20)
	z := compress2(t, cfg, data)
	hdrs := chunkHeaders(t, z)
	if len(hdrs) < 3 {
		t.Fatalf("got %d chunks; want at least 3", len(hdrs))
	}
	total := 0
	for i, h := range hdrs {
		if h.usize > maxChunkUSize || h.csize > maxChunkCSize {
			t.Fatalf("chunk %d: %s exceeds limits", i, h)
		}
		total += h.usize
	}
	if total != len(data) {
		t.Fatalf("chunks contain %d bytes; want %d", total, len(data))
	}
}

func TestWriter2Stored(t *testing.T) {
	data := random(8, 200000)
	cfg := smallConfig()
	z := compress2(t, cfg, data)
	hdrs := chunkHeaders(t, z)
	for i, h := range hdrs[:len(hdrs)-1] {
		want := cU
		if i == 0 {
			want = cUD
		}
		if h.ctype != want {
			t.Fatalf("chunk %d has type %s; want %s", i, h.ctype, want)
		}
	}
	if n := len(data) + 3*len(hdrs) + 1; len(z) > n {
		t.Fatalf("compressed size %d; want at most %d", len(z), n)
	}
	g, err := decompress2(cfg.DictSize, z)
	if err != nil {
		t.Fatalf("decompress error %s", err)
	}
	if !bytes.Equal(g, data) {
		t.Fatalf("decompressed data differs")
	}
}

func TestWriter2Resets(t *testing.T) {
	a := text(t, 9, 50000)
	b := text(t, 10, 50000)
	tests := []struct {
		name  string
		reset func(w *Writer2) error
		want  []chunkType
	}{
		{"flush", (*Writer2).Flush, []chunkType{cLRND, cL, cEOS}},
		{"state", (*Writer2).ResetState, []chunkType{cLRND, cLR, cEOS}},
		{"dict", (*Writer2).ResetDict, []chunkType{cLRND, cLRND, cEOS}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := smallConfig()
			buf := new(bytes.Buffer)
			w, err := cfg.NewWriter2(buf)
			if err != nil {
				t.Fatalf("NewWriter2 error %s", err)
			}
			if _, err = w.Write(a); err != nil {
				t.Fatalf("Write error %s", err)
			}
			if err = tc.reset(w); err != nil {
				t.Fatalf("reset error %s", err)
			}
			offset := buf.Len()
			if _, err = w.Write(b); err != nil {
				t.Fatalf("Write error %s", err)
			}
			if err = w.Close(); err != nil {
				t.Fatalf("Close error %s", err)
			}
			z := buf.Bytes()
			hdrs := chunkHeaders(t, z)
			if len(hdrs) != len(tc.want) {
				t.Fatalf("got chunks %v; want types %v", hdrs, tc.want)
			}
			for i, h := range hdrs {
				if h.ctype != tc.want[i] {
					t.Fatalf("chunk %d: got type %s; want %s",
						i, h.ctype, tc.want[i])
				}
			}
			g, err := decompress2(cfg.DictSize, z)
			if err != nil {
				t.Fatalf("decompress error %s", err)
			}
			if !bytes.Equal(g, append(a[:len(a):len(a)], b...)) {
				t.Fatalf("decompressed data differs")
			}
			if tc.name != "dict" {
				return
			}
			// After a dictionary reset the tail is a stream of its own.
			g, err = decompress2(cfg.DictSize, z[offset:])
			if err != nil {
				t.Fatalf("decompress tail error %s", err)
			}
			if !bytes.Equal(g, b) {
				t.Fatalf("decompressed tail differs")
			}
		})
	}
}

func TestWriter2MemoryLimit(t *testing.T) {
	cfg := Writer2Config{DictSize: 1 << 20, MemLimitKiB: 100}
	_, err := cfg.NewWriter2(io.Discard)
	var merr *MemoryLimitError
	if !errors.As(err, &merr) {
		t.Fatalf("NewWriter2 error %v; want *MemoryLimitError", err)
	}
	if merr.LimitKiB != 100 || merr.NeededKiB <= 100 {
		t.Fatalf("unexpected error values %+v", merr)
	}
	cfg.ApplyDefaults()
	if merr.NeededKiB != cfg.MemoryUsageKiB() {
		t.Fatalf("needed %d KiB; MemoryUsageKiB %d", merr.NeededKiB,
			cfg.MemoryUsageKiB())
	}
}

func TestWriter2InvalidConfig(t *testing.T) {
	tests := []Writer2Config{
		{DictSize: 100},
		{NiceLen: 7},
		{NiceLen: 274},
		{DepthLimit: -1},
		{Properties: &Properties{LC: 4, LP: 1, PB: 2}},
		{Properties: &Properties{LC: 1, LP: 1, PB: 5}},
	}
	for i, cfg := range tests {
		if _, err := cfg.NewWriter2(io.Discard); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%d: got error %v; want ErrInvalidConfig", i, err)
		}
	}
}

func TestWriter2Closed(t *testing.T) {
	w, err := smallConfig().NewWriter2(io.Discard)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	if _, err = w.Write([]byte("a")); err == nil {
		t.Fatalf("Write after Close succeeded")
	}
}

func TestWriter2Normalization(t *testing.T) {
	data := text(t, 11, 200000)
	cfg := Writer2Config{DictSize: MinDictSize}
	want := compress2(t, cfg, data)

	buf := new(bytes.Buffer)
	w, err := cfg.NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	w.mf.normLimit = w.mf.cyclicSize + 10000
	if _, err = w.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("output differs with early normalization")
	}
}

func TestWriter2Concurrent(t *testing.T) {
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		seed := int64(100 + i)
		data := append(text(t, seed, 100000), random(seed, 10000)...)
		g.Go(func() error {
			buf := new(bytes.Buffer)
			w, err := smallConfig().NewWriter2(buf)
			if err != nil {
				return err
			}
			if _, err = w.Write(data); err != nil {
				return err
			}
			if err = w.Close(); err != nil {
				return err
			}
			out, err := decompress2(64<<10, buf.Bytes())
			if err != nil {
				return err
			}
			if !bytes.Equal(out, data) {
				return fmt.Errorf("stream %d: data differs", seed)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestWriter2Debug(t *testing.T) {
	var log bytes.Buffer
	debugOn(&log)
	defer debugOff()
	z := compress2(t, smallConfig(), text(t, 12, 1000))
	if _, err := decompress2(64<<10, z); err != nil {
		t.Fatalf("decompress error %s", err)
	}
	if !bytes.Contains(log.Bytes(), []byte("chunk LRND")) {
		t.Fatalf("debug output %q doesn't report the chunk", log.String())
	}
}
