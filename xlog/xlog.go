// Package xlog provides a Logger interface for debug output that can be
// switched off.
//
// The Logger interface is supported by the log.Logger type. The print
// functions accept a nil Logger and do nothing in that case; the
// arguments are not formatted then. This makes it cheap to keep debug
// statements in code that is performance sensitive.
package xlog

import (
	"fmt"
	"io"
	"log"
)

// Logger is the interface required for debug output. The log.Logger type
// supports this interface.
type Logger interface {
	Output(calldepth int, s string) error
}

// New creates a logger writing to w with the given prefix. The function
// returns nil if w is nil.
func New(w io.Writer, prefix string) Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, 0)
}

// Print outputs the arguments using the logger. If the logger is nil
// nothing will be printed.
func Print(l Logger, v ...any) {
	if l != nil {
		l.Output(2, fmt.Sprint(v...))
	}
}

// Printf prints the arguments using the format string. If the logger
// argument is nil nothing will be printed.
func Printf(l Logger, format string, v ...any) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println prints the arguments and adds a newline. If the logger
// argument is nil nothing will be printed.
func Println(l Logger, v ...any) {
	if l != nil {
		l.Output(2, fmt.Sprintln(v...))
	}
}
