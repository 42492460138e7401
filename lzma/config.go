// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "github.com/ulikunitz/lz"

// Limits for the nice length of the encoder.
const (
	minNiceLen = 8
	maxNiceLen = maxMatchLen
)

// Default values for the configurations.
const (
	defaultDictSize = 8 << 20
	defaultNiceLen  = 64
)

// defaultProperties returns the default LZMA properties.
func defaultProperties() Properties {
	return Properties{LC: 3, LP: 0, PB: 2}
}

// encoderConfig collects the parameters shared by both writers.
type encoderConfig struct {
	Properties  *Properties
	DictSize    int
	NiceLen     int
	DepthLimit  int
	MemLimitKiB int64
}

func (c *encoderConfig) applyDefaults() {
	if c.Properties == nil {
		p := defaultProperties()
		c.Properties = &p
	}
	if c.DictSize == 0 {
		c.DictSize = defaultDictSize
	}
	if c.NiceLen == 0 {
		c.NiceLen = defaultNiceLen
	}
}

func (c *encoderConfig) verify() error {
	if !(MinDictSize <= c.DictSize && c.DictSize <= maxEncoderDictSize) {
		return configf("dictionary size %d out of range [%d,%d]",
			c.DictSize, MinDictSize, maxEncoderDictSize)
	}
	if !(minNiceLen <= c.NiceLen && c.NiceLen <= maxNiceLen) {
		return configf("nice length %d out of range [%d,%d]",
			c.NiceLen, minNiceLen, maxNiceLen)
	}
	if c.DepthLimit < 0 {
		return configf("depth limit %d is negative", c.DepthLimit)
	}
	if c.MemLimitKiB < 0 {
		return configf("memory limit %d is negative", c.MemLimitKiB)
	}
	return nil
}

// Writer2Config is used to create a Writer2 for raw LZMA2 streams.
type Writer2Config struct {
	// LZMA properties; LC+LP must not exceed 4. The default is LC 3,
	// LP 0, PB 2.
	Properties *Properties
	// size of the dictionary; default 8 MiB
	DictSize int
	// length of a match that is accepted without searching for a
	// longer one; range [8,273], default 64
	NiceLen int
	// maximum number of tree nodes visited per position; 0 selects
	// 16+NiceLen/2
	DepthLimit int
	// memory limit in KiB; zero means no limit
	MemLimitKiB int64
	// LZ selects a sequencer of the lz module instead of the binary
	// tree match finder. Its window must not exceed DictSize. NiceLen
	// and DepthLimit are ignored then.
	LZ lz.Configurator
}

func (c *Writer2Config) encoderConfig() *encoderConfig {
	return &encoderConfig{
		Properties:  c.Properties,
		DictSize:    c.DictSize,
		NiceLen:     c.NiceLen,
		DepthLimit:  c.DepthLimit,
		MemLimitKiB: c.MemLimitKiB,
	}
}

// ApplyDefaults replaces zero values with default values.
func (c *Writer2Config) ApplyDefaults() {
	ec := c.encoderConfig()
	ec.applyDefaults()
	c.Properties = ec.Properties
	c.DictSize = ec.DictSize
	c.NiceLen = ec.NiceLen
}

// Verify checks the configuration for errors.
func (c *Writer2Config) Verify() error {
	if c == nil {
		return configf("Writer2Config is nil")
	}
	if err := c.Properties.verify2(); err != nil {
		return err
	}
	return c.encoderConfig().verify()
}

// MemoryUsageKiB estimates the memory in KiB required by a Writer2 with
// this configuration. The search structures of an lz sequencer are not
// included; NewWriter2 adds them once the sequencer exists.
func (c *Writer2Config) MemoryUsageKiB() int64 {
	if c.LZ != nil {
		lit := int64(2*0x300<<uint(c.Properties.LC+c.Properties.LP)) / 1024
		return 80 + int64(windowSize(c.DictSize))/1024 + lit +
			maxChunkCSize/1024
	}
	return encoderMemoryUsageKiB(c.DictSize, *c.Properties) +
		maxChunkCSize/1024
}

// WriterConfig defines the configuration parameters for a Writer of
// classic LZMA streams.
type WriterConfig struct {
	// LZMA properties; the default is LC 3, LP 0, PB 2.
	Properties *Properties
	// size of the dictionary; default 8 MiB
	DictSize int
	// nice length of the encoder; range [8,273], default 64
	NiceLen int
	// maximum number of tree nodes visited per position
	DepthLimit int
	// memory limit in KiB; zero means no limit
	MemLimitKiB int64
	// SizeInHeader requests that the size is stored in the header; the
	// number of bytes written must then equal Size.
	SizeInHeader bool
	// uncompressed size
	Size int64
	// EOSMarker requests the end-of-stream marker. The marker is always
	// written if the size is not stored in the header.
	EOSMarker bool
}

func (c *WriterConfig) encoderConfig() *encoderConfig {
	return &encoderConfig{
		Properties:  c.Properties,
		DictSize:    c.DictSize,
		NiceLen:     c.NiceLen,
		DepthLimit:  c.DepthLimit,
		MemLimitKiB: c.MemLimitKiB,
	}
}

// ApplyDefaults replaces zero values with default values.
func (c *WriterConfig) ApplyDefaults() {
	ec := c.encoderConfig()
	ec.applyDefaults()
	c.Properties = ec.Properties
	c.DictSize = ec.DictSize
	c.NiceLen = ec.NiceLen
	if !c.SizeInHeader {
		c.EOSMarker = true
	}
}

// Verify checks WriterConfig for errors.
func (c *WriterConfig) Verify() error {
	if c == nil {
		return configf("WriterConfig is nil")
	}
	if err := c.Properties.verify(); err != nil {
		return err
	}
	if err := c.encoderConfig().verify(); err != nil {
		return err
	}
	if c.SizeInHeader && c.Size < 0 {
		return configf("size %d is negative", c.Size)
	}
	if !c.SizeInHeader && !c.EOSMarker {
		return configf("EOS marker required without size in header")
	}
	return nil
}

// MemoryUsageKiB estimates the memory in KiB required by a Writer.
func (c *WriterConfig) MemoryUsageKiB() int64 {
	return encoderMemoryUsageKiB(c.DictSize, *c.Properties) + 4
}

// Reader2Config stores the parameters for a Reader2 of raw LZMA2 streams.
type Reader2Config struct {
	// size of the dictionary; must be at least the dictionary size used
	// by the encoder; default 8 MiB
	DictSize int64
	// memory limit in KiB; zero means no limit
	MemLimitKiB int64
}

// ApplyDefaults replaces zero values with default values.
func (c *Reader2Config) ApplyDefaults() {
	if c.DictSize == 0 {
		c.DictSize = defaultDictSize
	}
}

// Verify checks the reader configuration for errors.
func (c *Reader2Config) Verify() error {
	if c == nil {
		return configf("Reader2Config is nil")
	}
	if !(MinDictSize <= c.DictSize && c.DictSize <= maxDictSize) {
		return configf("dictionary size %d out of range [%d,%d]",
			c.DictSize, MinDictSize, int64(maxDictSize))
	}
	if c.MemLimitKiB < 0 {
		return configf("memory limit %d is negative", c.MemLimitKiB)
	}
	return nil
}

// MemoryUsageKiB estimates the memory in KiB required by a Reader2.
// LZMA2 limits LC+LP to 4.
func (c *Reader2Config) MemoryUsageKiB() int64 {
	return 40 + maxChunkCSize/1024 + int64(dictBufSize(c.DictSize))/1024
}

// ReaderConfig stores the parameters for the reader of classic LZMA
// streams. The dictionary is allocated with the size found in the stream
// header, which can be up to 4 GiB. Readers of untrusted input should set
// MemLimitKiB.
type ReaderConfig struct {
	// memory limit in KiB; zero means no limit, so the header decides
	// the allocation
	MemLimitKiB int64
}

// ApplyDefaults is provided for symmetry; the reader has no defaults.
func (c *ReaderConfig) ApplyDefaults() {}

// Verify checks the reader configuration for errors.
func (c *ReaderConfig) Verify() error {
	if c == nil {
		return configf("ReaderConfig is nil")
	}
	if c.MemLimitKiB < 0 {
		return configf("memory limit %d is negative", c.MemLimitKiB)
	}
	return nil
}
