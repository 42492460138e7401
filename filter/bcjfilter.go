// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BCJMethod selects the instruction set of a BCJ filter. The values are
// the filter IDs.
type BCJMethod byte

// Supported BCJ methods.
const (
	X86      BCJMethod = 0x04
	PowerPC  BCJMethod = 0x05
	ARM      BCJMethod = 0x07
	ARMThumb BCJMethod = 0x08
	SPARC    BCJMethod = 0x09
)

var bcjMethodStrings = map[BCJMethod]string{
	X86:      "x86",
	PowerPC:  "PowerPC",
	ARM:      "ARM",
	ARMThumb: "ARM-Thumb",
	SPARC:    "SPARC",
}

func (m BCJMethod) String() string {
	if s, ok := bcjMethodStrings[m]; ok {
		return s
	}
	return fmt.Sprintf("BCJMethod(%#02x)", byte(m))
}

func (m BCJMethod) valid() bool {
	_, ok := bcjMethodStrings[m]
	return ok
}

// alignment returns the instruction alignment. The start offset must be a
// multiple of it.
func (m BCJMethod) alignment() uint32 {
	switch m {
	case X86:
		return 1
	case ARMThumb:
		return 2
	}
	return 4
}

// converter creates the converter for the method.
func (m BCJMethod) converter(enc bool, start uint32) Converter {
	switch m {
	case X86:
		return NewX86(enc, start)
	case PowerPC:
		return NewPowerPC(enc, start)
	case ARM:
		return NewARM(enc, start)
	case ARMThumb:
		return NewARMThumb(enc, start)
	case SPARC:
		return NewSPARC(enc, start)
	}
	panic(fmt.Errorf("filter: unsupported BCJ method %s", m))
}

// BCJFilter converts the relative branch addresses of executable code
// into absolute addresses, which compress better.
type BCJFilter struct {
	Method BCJMethod
	// position of the first byte of the data
	StartOffset uint32
}

func (f BCJFilter) String() string {
	return fmt.Sprintf("BCJ %s start offset %#x", f.Method, f.StartOffset)
}

// verify checks the filter parameters.
func (f BCJFilter) verify() error {
	if !f.Method.valid() {
		return configf("unsupported BCJ method %s", f.Method)
	}
	if a := f.Method.alignment(); f.StartOffset%a != 0 {
		return configf("%s start offset %#x not aligned to %d bytes",
			f.Method, f.StartOffset, a)
	}
	return nil
}

// ID returns the filter ID, which depends on the method.
func (f BCJFilter) ID() uint64 { return uint64(f.Method) }

// MarshalBinary encodes the filter. The start offset is only stored if
// it isn't zero.
func (f BCJFilter) MarshalBinary() (data []byte, err error) {
	if err = f.verify(); err != nil {
		return nil, err
	}
	if f.StartOffset == 0 {
		return []byte{byte(f.Method), 0}, nil
	}
	data = []byte{byte(f.Method), 4, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(data[2:], f.StartOffset)
	return data, nil
}

// UnmarshalBinary decodes the filter.
func (f *BCJFilter) UnmarshalBinary(data []byte) error {
	if len(data) < 2 || !BCJMethod(data[0]).valid() ||
		int(data[1]) != len(data)-2 {
		return corruptf("invalid BCJ filter properties %02x", data)
	}
	g := BCJFilter{Method: BCJMethod(data[0])}
	switch data[1] {
	case 0:
	case 4:
		g.StartOffset = binary.LittleEndian.Uint32(data[2:])
	default:
		return corruptf("invalid BCJ filter properties %02x", data)
	}
	if err := g.verify(); err != nil {
		return corruptf("BCJ filter: %v", err)
	}
	*f = g
	return nil
}

// NewReader returns a reader that decodes the data from r.
func (f BCJFilter) NewReader(r io.Reader, c *ReaderConfig) (fr io.Reader,
	err error) {
	if err = f.verify(); err != nil {
		return nil, err
	}
	return NewConvReader(r, f.Method.converter(false, f.StartOffset)), nil
}

// NewWriteCloser returns a writer that encodes the data written to it.
func (f BCJFilter) NewWriteCloser(w io.Writer, c *WriterConfig,
) (fw io.WriteCloser, err error) {
	if err = f.verify(); err != nil {
		return nil, err
	}
	return NewConvWriter(w, f.Method.converter(true, f.StartOffset)), nil
}

func (f BCJFilter) last() bool { return false }
