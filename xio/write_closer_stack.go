// Copyright 2014-2025 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xio provides tools to handle I/O operations. The
// [WriteCloserStack] type combines a chain of writers, each writing into
// the one pushed before it, into a single [io.WriteCloser].
package xio

import (
	"errors"
	"io"
)

// ErrClosed is returned by Write after the stack has been closed.
var ErrClosed = errors.New("xio: write to closed stack")

// WriteCloserStack handles a chain of WriteClosers as single WriteCloser.
// Data is written to the WriteCloser pushed last. The zero value is an
// empty stack.
type WriteCloserStack struct {
	stack  []io.WriteCloser
	closed bool
}

// Write writes data to the top WriteCloser in the stack. If the stack is
// empty Write will always succeed.
func (s *WriteCloserStack) Write(p []byte) (n int, err error) {
	if s.closed {
		return 0, ErrClosed
	}
	k := len(s.stack)
	if k == 0 {
		return len(p), nil
	}
	return s.stack[k-1].Write(p)
}

// Close closes all WriteClosers from the top to the bottom, so that each
// one can flush its data into the next. All close errors are combined.
// Closing the stack again does nothing.
func (s *WriteCloserStack) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for k := len(s.stack) - 1; k >= 0; k-- {
		errs = append(errs, s.stack[k].Close())
	}
	s.stack = nil
	return errors.Join(errs...)
}

// Push adds a new WriteCloser to the top of the stack. It panics if the
// WriteCloser is nil.
func (s *WriteCloserStack) Push(wc io.WriteCloser) {
	if wc == nil {
		panic("xio: cannot push nil WriteCloser onto stack")
	}
	s.stack = append(s.stack, wc)
}
