// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"io"

	"github.com/lzmago/codec/xlog"
)

// debug stores a reference to a logger. It may contain nil for no output.
var debug xlog.Logger

// debugOn writes debug information to w. If w is nil, no output will be
// written.
func debugOn(w io.Writer) { debug = xlog.New(w, "lzma ") }

// debugOff switches the debugging output off.
func debugOff() { debug = nil }

// debugPrintf formats a debug message. Nothing is formatted if debug
// output is switched off.
func debugPrintf(format string, a ...any) {
	xlog.Printf(debug, format, a...)
}
