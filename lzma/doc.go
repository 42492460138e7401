// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lzma supports the decoding and encoding of LZMA streams and
// raw LZMA2 streams.
//
// LZMA2 streams are sequences of chunks. Each chunk is either stored
// uncompressed or compressed by the LZMA coder; chunks may reset the
// dictionary, the coder state or the literal properties. The package
// provides [Writer2] and [Reader2] for LZMA2 and [Writer] and [Reader] for
// the classic LZMA format with its 13-byte header.
//
// The encoder uses a binary-tree match finder with 2, 3 and 4 byte hashes
// and a greedy parser with one step of lazy evaluation.
package lzma
