// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

// Converter converts the bytes in p in place. It returns the number of
// bytes converted. Bytes not converted must be provided again at the
// start of the next call together with the following data. At the end of
// the stream the remaining bytes are passed unconverted.
type Converter interface {
	Code(p []byte) int
}

// bcj stores the state shared by the branch converters.
type bcj struct {
	enc bool
	// position of the next byte to convert plus the instruction-specific
	// offset
	pos uint32
}

// adjust converts the address a found at offset i of the current
// buffer.
func (c *bcj) adjust(a uint32, i int) uint32 {
	if c.enc {
		return a + c.pos + uint32(i)
	}
	return a - (c.pos + uint32(i))
}

// X86Converter converts the relative addresses of x86 CALL and JMP
// instructions.
type X86Converter struct {
	bcj
	prevMask uint32
}

// NewX86 creates a converter for x86 code. The argument start provides
// the position of the first byte.
func NewX86(enc bool, start uint32) *X86Converter {
	return &X86Converter{bcj: bcj{enc: enc, pos: start + 5}}
}

var (
	x86MaskAllowed = [8]bool{true, true, true, false, true, false, false,
		false}
	x86MaskBitNum = [8]uint32{0, 1, 2, 2, 3, 3, 3, 3}
)

// test86MSByte reports whether b is a plausible most significant byte
// of a near CALL or JMP offset.
func test86MSByte(b byte) bool { return b == 0 || b == 0xff }

// Code converts the x86 instructions in p. The last four bytes are only
// converted if more data follows.
func (c *X86Converter) Code(p []byte) int {
	prevPos := -1
	end := len(p) - 5
	i := 0
	for ; i <= end; i++ {
		if p[i]&0xfe != 0xe8 {
			continue
		}
		prevPos = i - prevPos
		if prevPos&^3 != 0 {
			c.prevMask = 0
		} else {
			c.prevMask = (c.prevMask << uint(prevPos-1)) & 7
			if c.prevMask != 0 {
				if !x86MaskAllowed[c.prevMask] ||
					test86MSByte(p[i+4-int(x86MaskBitNum[c.prevMask])]) {
					prevPos = i
					c.prevMask = c.prevMask<<1 | 1
					continue
				}
			}
		}
		prevPos = i
		if !test86MSByte(p[i+4]) {
			c.prevMask = c.prevMask<<1 | 1
			continue
		}
		src := uint32(p[i+1]) | uint32(p[i+2])<<8 | uint32(p[i+3])<<16 |
			uint32(p[i+4])<<24
		var dest uint32
		for {
			dest = c.adjust(src, i)
			if c.prevMask == 0 {
				break
			}
			k := x86MaskBitNum[c.prevMask] * 8
			if !test86MSByte(byte(dest >> (24 - k))) {
				break
			}
			src = dest ^ (1<<(32-k) - 1)
		}
		p[i+1] = byte(dest)
		p[i+2] = byte(dest >> 8)
		p[i+3] = byte(dest >> 16)
		p[i+4] = byte(^((dest>>24)&1 - 1))
		i += 4
	}
	prevPos = i - prevPos
	if prevPos&^3 != 0 {
		c.prevMask = 0
	} else {
		c.prevMask <<= uint(prevPos - 1)
	}
	c.pos += uint32(i)
	return i
}

// ARMConverter converts the BL instructions of 32-bit ARM code.
type ARMConverter struct{ bcj }

// NewARM creates a converter for ARM code.
func NewARM(enc bool, start uint32) *ARMConverter {
	return &ARMConverter{bcj{enc: enc, pos: start + 8}}
}

// Code converts the ARM instructions in p.
func (c *ARMConverter) Code(p []byte) int {
	i := 0
	for ; i <= len(p)-4; i += 4 {
		if p[i+3] != 0xeb {
			continue
		}
		src := uint32(p[i+2])<<16 | uint32(p[i+1])<<8 | uint32(p[i])
		dest := c.adjust(src<<2, i) >> 2
		p[i+2] = byte(dest >> 16)
		p[i+1] = byte(dest >> 8)
		p[i] = byte(dest)
	}
	c.pos += uint32(i)
	return i
}

// ARMThumbConverter converts the BL instruction pairs of ARM Thumb code.
type ARMThumbConverter struct{ bcj }

// NewARMThumb creates a converter for ARM Thumb code.
func NewARMThumb(enc bool, start uint32) *ARMThumbConverter {
	return &ARMThumbConverter{bcj{enc: enc, pos: start + 4}}
}

// Code converts the ARM Thumb instructions in p.
func (c *ARMThumbConverter) Code(p []byte) int {
	i := 0
	for ; i <= len(p)-4; i += 2 {
		if p[i+1]&0xf8 != 0xf0 || p[i+3]&0xf8 != 0xf8 {
			continue
		}
		src := uint32(p[i+1]&7)<<19 | uint32(p[i])<<11 |
			uint32(p[i+3]&7)<<8 | uint32(p[i+2])
		dest := c.adjust(src<<1, i) >> 1
		p[i+1] = 0xf0 | byte(dest>>19)&7
		p[i] = byte(dest >> 11)
		p[i+3] = 0xf8 | byte(dest>>8)&7
		p[i+2] = byte(dest)
		i += 2
	}
	c.pos += uint32(i)
	return i
}

// PowerPCConverter converts the branch instructions of big-endian
// PowerPC code.
type PowerPCConverter struct{ bcj }

// NewPowerPC creates a converter for PowerPC code.
func NewPowerPC(enc bool, start uint32) *PowerPCConverter {
	return &PowerPCConverter{bcj{enc: enc, pos: start}}
}

// Code converts the PowerPC instructions in p.
func (c *PowerPCConverter) Code(p []byte) int {
	i := 0
	for ; i <= len(p)-4; i += 4 {
		if p[i]&0xfc != 0x48 || p[i+3]&3 != 1 {
			continue
		}
		src := uint32(p[i]&3)<<24 | uint32(p[i+1])<<16 |
			uint32(p[i+2])<<8 | uint32(p[i+3]&0xfc)
		dest := c.adjust(src, i)
		p[i] = 0x48 | byte(dest>>24)&3
		p[i+1] = byte(dest >> 16)
		p[i+2] = byte(dest >> 8)
		p[i+3] = p[i+3]&3 | byte(dest)&0xfc
	}
	c.pos += uint32(i)
	return i
}

// SPARCConverter converts the CALL instructions of SPARC code.
type SPARCConverter struct{ bcj }

// NewSPARC creates a converter for SPARC code.
func NewSPARC(enc bool, start uint32) *SPARCConverter {
	return &SPARCConverter{bcj{enc: enc, pos: start}}
}

// Code converts the SPARC instructions in p.
func (c *SPARCConverter) Code(p []byte) int {
	i := 0
	for ; i <= len(p)-4; i += 4 {
		if !(p[i] == 0x40 && p[i+1]&0xc0 == 0 ||
			p[i] == 0x7f && p[i+1]&0xc0 == 0xc0) {
			continue
		}
		src := uint32(p[i])<<24 | uint32(p[i+1])<<16 |
			uint32(p[i+2])<<8 | uint32(p[i+3])
		dest := c.adjust(src<<2, i) >> 2
		dest = -(dest>>22&1)<<22&0x3fffffff | dest&0x3fffff | 0x40000000
		p[i] = byte(dest >> 24)
		p[i+1] = byte(dest >> 16)
		p[i+2] = byte(dest >> 8)
		p[i+3] = byte(dest)
	}
	c.pos += uint32(i)
	return i
}
