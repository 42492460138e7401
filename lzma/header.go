// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"encoding/binary"
	"io"
)

// headerLen defines the length of the classic LZMA header.
const headerLen = 13

// header represents the header of a classic LZMA stream.
type header struct {
	properties Properties
	dictSize   uint32
	// uncompressed size; negative if the size is unknown
	size int64
}

// marshalBinary encodes the header.
func (h *header) marshalBinary() (data []byte, err error) {
	if err = h.properties.verify(); err != nil {
		return nil, err
	}
	data = make([]byte, headerLen)
	data[0] = h.properties.Code()
	binary.LittleEndian.PutUint32(data[1:5], h.dictSize)
	s := uint64(h.size)
	if h.size < 0 {
		s = 1<<64 - 1
	}
	binary.LittleEndian.PutUint64(data[5:], s)
	return data, nil
}

// unmarshalBinary decodes the header.
func (h *header) unmarshalBinary(data []byte) (err error) {
	if len(data) != headerLen {
		return corruptf("header must have %d bytes", headerLen)
	}
	if h.properties, err = PropertiesForCode(data[0]); err != nil {
		return err
	}
	h.dictSize = binary.LittleEndian.Uint32(data[1:5])
	s := binary.LittleEndian.Uint64(data[5:])
	switch {
	case s == 1<<64-1:
		h.size = -1
	case s >= 1<<63:
		return corruptf("uncompressed size %d too large", s)
	default:
		h.size = int64(s)
	}
	return nil
}

// readHeader reads the header from r.
func readHeader(r io.Reader) (h header, err error) {
	data := make([]byte, headerLen)
	if _, err = io.ReadFull(r, data); err != nil {
		return h, inputErr(err)
	}
	err = h.unmarshalBinary(data)
	return h, err
}
