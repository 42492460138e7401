// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "fmt"

// Maximum and minimum values for the LZMA properties.
const (
	minPB = 0
	maxPB = 4
)

// maxPropertyCode is the possible maximum of a properties code byte.
const maxPropertyCode = (maxPB+1)*(maxLP+1)*(maxLC+1) - 1

// Properties contains the parameters LC, LP and PB. The parameter LC
// defines the number of literal context bits; parameter LP the number of
// literal position bits and PB the number of position bits.
type Properties struct {
	LC int
	LP int
	PB int
}

// String returns the properties in a string representation.
func (p *Properties) String() string {
	return fmt.Sprintf("LC %d LP %d PB %d", p.LC, p.LP, p.PB)
}

// PropertiesForCode converts a properties code byte into a Properties
// value.
func PropertiesForCode(code byte) (p Properties, err error) {
	if code > maxPropertyCode {
		return p, corruptf("properties code %#02x out of range", code)
	}
	p.LC = int(code % 9)
	code /= 9
	p.LP = int(code % 5)
	code /= 5
	p.PB = int(code % 5)
	return p, nil
}

// verify checks the properties for correctness.
func (p *Properties) verify() error {
	if p == nil {
		return configf("properties are nil")
	}
	if !(minLC <= p.LC && p.LC <= maxLC) {
		return configf("lc %d out of range [%d,%d]", p.LC, minLC, maxLC)
	}
	if !(minLP <= p.LP && p.LP <= maxLP) {
		return configf("lp %d out of range [%d,%d]", p.LP, minLP, maxLP)
	}
	if !(minPB <= p.PB && p.PB <= maxPB) {
		return configf("pb %d out of range [%d,%d]", p.PB, minPB, maxPB)
	}
	return nil
}

// verify2 checks the properties for use in LZMA2 streams, which limit
// lc+lp to 4.
func (p *Properties) verify2() error {
	if err := p.verify(); err != nil {
		return err
	}
	if p.LC+p.LP > 4 {
		return configf("lc+lp is %d; LZMA2 supports at most 4",
			p.LC+p.LP)
	}
	return nil
}

// Code returns the properties code byte (pb*5+lp)*9+lc.
func (p Properties) Code() byte {
	return byte((p.PB*(maxLP+1)+p.LP)*(maxLC+1) + p.LC)
}

// Constants for the literal codec.
const (
	minLC = 0
	maxLC = 8
	minLP = 0
	maxLP = 4
)
