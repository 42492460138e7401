// Copyright 2014-2022 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lzma

import (
	"errors"
	"fmt"
	"io"
)

// ErrCorrupted indicates that the compressed input is not a valid LZMA or
// LZMA2 stream. Truncated input is reported with an error that matches
// both ErrCorrupted and io.ErrUnexpectedEOF.
var ErrCorrupted = errors.New("lzma: corrupted input")

// ErrInvalidConfig is wrapped by all errors reported by the Verify methods
// of the configuration types.
var ErrInvalidConfig = errors.New("lzma: invalid configuration")

// errTruncated is returned if the compressed input ends prematurely.
var errTruncated = fmt.Errorf("%w: %w", ErrCorrupted, io.ErrUnexpectedEOF)

// errEOS is used internally to signal that the end-of-stream marker has
// been decoded.
var errEOS = errors.New("lzma: end-of-stream marker")

// corruptf returns an error wrapping ErrCorrupted.
func corruptf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorrupted}, a...)...)
}

// configf returns an error wrapping ErrInvalidConfig.
func configf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, a...)...)
}

// inputErr converts errors of the underlying reader. An io.EOF inside a
// stream is always a truncation.
func inputErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errTruncated
	}
	return err
}

// MemoryLimitError is returned by the constructors of readers and writers
// if the estimated memory usage exceeds the configured limit.
type MemoryLimitError struct {
	NeededKiB int64
	LimitKiB  int64
}

// Error returns the error message.
func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("lzma: %d KiB of memory needed; limit is %d KiB",
		e.NeededKiB, e.LimitKiB)
}

// checkMemLimit returns a *MemoryLimitError if limit is positive and needed
// exceeds it.
func checkMemLimit(needed, limit int64) error {
	if limit > 0 && needed > limit {
		return &MemoryLimitError{NeededKiB: needed, LimitKiB: limit}
	}
	return nil
}
