// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func TestReader2(t *testing.T) {
	data := text(t, 20, 250000)
	cfg := smallConfig()
	z := compress2(t, cfg, data)
	r, err := Reader2Config{DictSize: int64(cfg.DictSize)}.NewReader2(
		iotest.OneByteReader(bytes.NewReader(z)))
	if err != nil {
		t.Fatalf("NewReader2 error %s", err)
	}
	if err = iotest.TestReader(r, data); err != nil {
		t.Fatal(err)
	}
}

func TestReader2EOF(t *testing.T) {
	z := compress2(t, smallConfig(), []byte("foobar"))
	r, err := Reader2Config{DictSize: 64 << 10}.NewReader2(bytes.NewReader(z))
	if err != nil {
		t.Fatalf("NewReader2 error %s", err)
	}
	if _, err = io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll error %s", err)
	}
	for i := 0; i < 2; i++ {
		n, err := r.Read(make([]byte, 10))
		if n != 0 || err != io.EOF {
			t.Fatalf("Read returned %d, %v; want 0, io.EOF", n, err)
		}
	}
}

func TestReader2Truncated(t *testing.T) {
	data := append(text(t, 21, 80000), random(22, 70000)...)
	cfg := smallConfig()
	z := compress2(t, cfg, data)
	for _, n := range []int{0, 1, 2, 5, 6, 100, len(z) / 2, len(z) - 2, len(z) - 1} {
		_, err := decompress2(cfg.DictSize, z[:n])
		if !errors.Is(err, ErrCorrupted) {
			t.Errorf("cut at %d: error %v; want ErrCorrupted", n, err)
		}
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: error %v; want io.ErrUnexpectedEOF",
				n, err)
		}
	}
}

func TestReader2InvalidControl(t *testing.T) {
	tests := [][]byte{
		{0x03},
		{0x02, 0x00, 0x00, 'a', 0x00},
		{0x80, 0x00, 0x00, 0x00, 0x05},
		{0xa0, 0x00, 0x00, 0x00, 0x05},
		{0x01, 0x00, 0x00, 'a', 0x80, 0x00, 0x00, 0x00, 0x05},
	}
	for i, z := range tests {
		_, err := decompress2(MinDictSize, z)
		if !errors.Is(err, ErrCorrupted) {
			t.Errorf("%d: error %v; want ErrCorrupted", i, err)
		}
	}
}

func TestReader2Stored(t *testing.T) {
	z := []byte{0x01, 0x00, 0x02, 'f', 'o', 'o', 0x02, 0x00, 0x02, 'b',
		'a', 'r', 0x00}
	g, err := decompress2(MinDictSize, z)
	if err != nil {
		t.Fatalf("decompress error %s", err)
	}
	if string(g) != "foobar" {
		t.Fatalf("got %q; want %q", g, "foobar")
	}
}

func TestReader2DictReset(t *testing.T) {
	data := random(23, 200)
	cfg := Writer2Config{DictSize: MinDictSize, NiceLen: 8}
	buf := new(bytes.Buffer)
	w, err := cfg.NewWriter2(buf)
	if err != nil {
		t.Fatalf("NewWriter2 error %s", err)
	}
	if _, err = w.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Flush(); err != nil {
		t.Fatalf("Flush error %s", err)
	}
	offset := buf.Len()
	if _, err = w.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}
	z := buf.Bytes()
	if offset != 3+len(data) || z[0] != byte(cUD) {
		t.Fatalf("first chunk not stored with dictionary reset")
	}
	if z[offset] != byte(cLRN) {
		t.Fatalf("second chunk has control %#02x; want %#02x",
			z[offset], byte(cLRN))
	}
	g, err := decompress2(cfg.DictSize, z)
	if err != nil {
		t.Fatalf("decompress error %s", err)
	}
	if !bytes.Equal(g, append(data[:len(data):len(data)], data...)) {
		t.Fatalf("decompressed data differs")
	}

	// The second chunk copies from the first; a dictionary reset
	// turns the copy into a corrupted stream.
	z[offset] = byte(cLRND)
	if _, err = decompress2(cfg.DictSize, z); !errors.Is(err, ErrCorrupted) {
		t.Fatalf("decompress error %v; want ErrCorrupted", err)
	}
}

func TestReader2DictTooSmall(t *testing.T) {
	data := text(t, 24, 100000)
	z := compress2(t, Writer2Config{DictSize: 1 << 16}, data)
	_, err := decompress2(MinDictSize, z)
	if !errors.Is(err, ErrCorrupted) {
		t.Fatalf("decompress error %v; want ErrCorrupted", err)
	}
}

func TestReader2MemoryLimit(t *testing.T) {
	cfg := Reader2Config{DictSize: 1 << 20, MemLimitKiB: 100}
	_, err := cfg.NewReader2(bytes.NewReader([]byte{0}))
	var merr *MemoryLimitError
	if !errors.As(err, &merr) {
		t.Fatalf("NewReader2 error %v; want *MemoryLimitError", err)
	}
	cfg.ApplyDefaults()
	if merr.NeededKiB != cfg.MemoryUsageKiB() {
		t.Fatalf("needed %d KiB; want %d KiB", merr.NeededKiB,
			cfg.MemoryUsageKiB())
	}
	cfg.MemLimitKiB = cfg.MemoryUsageKiB()
	if _, err = cfg.NewReader2(bytes.NewReader([]byte{0})); err != nil {
		t.Fatalf("NewReader2 with sufficient limit: error %s", err)
	}
}
