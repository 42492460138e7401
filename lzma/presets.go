// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import "fmt"

// presets contain the predefined configurations. Don't use them directly
// to prevent modification.
var presets = [...]struct {
	dictSize   int
	niceLen    int
	depthLimit int
}{
	0: {256 << 10, 32, 8},
	1: {1 << 20, 32, 12},
	2: {2 << 20, 48, 16},
	3: {4 << 20, 48, 24},
	4: {4 << 20, 64, 0},
	5: {8 << 20, 64, 0},
	6: {8 << 20, 96, 0},
	7: {16 << 20, 128, 0},
	8: {32 << 20, 192, 0},
	9: {64 << 20, 273, 0},
}

// Preset returns a Writer2Config with preset parameters. Supported presets
// range from 0 to 9 from fast to slow with increasing compression rate and
// memory usage. The function panics for other values.
func Preset(n int) Writer2Config {
	if !(0 <= n && n < len(presets)) {
		panic(fmt.Errorf("lzma: preset %d out of range [0..9]", n))
	}
	p := presets[n]
	props := defaultProperties()
	return Writer2Config{
		Properties: &props,
		DictSize:   p.dictSize,
		NiceLen:    p.niceLen,
		DepthLimit: p.depthLimit,
	}
}
