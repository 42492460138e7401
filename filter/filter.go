// Package filter implements the preprocessing filters that can be
// combined with LZMA2 compression: the branch converters for executable
// code (BCJ) and the delta filter. Filters are combined into chains that
// end with the LZMA2 filter.
package filter

import (
	"errors"
	"fmt"
	"io"

	"github.com/lzmago/codec/lzma"
	"github.com/lzmago/codec/xio"
)

// Filter IDs.
const (
	DeltaFilterID = 0x03
	LZMA2FilterID = 0x21
)

// ReaderConfig defines the parameters for the readers of a filter
// chain.
type ReaderConfig struct {
	// minimum dictionary size for the LZMA2 reader
	DictSize int64
	// memory limit in KiB for the LZMA2 reader; zero means no limit
	MemLimitKiB int64
}

// WriterConfig defines the parameters for the writers of a filter chain.
// The fields are passed to the LZMA2 writer.
type WriterConfig struct {
	Properties  *lzma.Properties
	DictSize    int
	NiceLen     int
	DepthLimit  int
	MemLimitKiB int64
}

// Filter represents a filter of a filter chain.
type Filter interface {
	ID() uint64
	UnmarshalBinary(data []byte) error
	MarshalBinary() (data []byte, err error)
	NewReader(r io.Reader, c *ReaderConfig) (fr io.Reader, err error)
	NewWriteCloser(w io.Writer, c *WriterConfig) (fw io.WriteCloser, err error)
	// filter must be last filter
	last() bool
}

// NewFilterReader creates a reader that decodes the data of r with the
// filter chain f.
func NewFilterReader(c *ReaderConfig, r io.Reader, f []Filter) (fr io.Reader,
	err error) {

	if err = VerifyFilters(f); err != nil {
		return nil, err
	}

	fr = r
	for i := len(f) - 1; i >= 0; i-- {
		fr, err = f[i].NewReader(fr, c)
		if err != nil {
			return nil, err
		}
	}
	return fr, nil
}

// NewFilterWriteCloser creates a writer that encodes the data with the
// filter chain f and writes the result to w. Close flushes all filters
// but doesn't close w. Writing after Close returns xio.ErrClosed.
//
// If a filter writer cannot be created, the writers created before are
// closed, which may write an empty LZMA2 stream to w.
func NewFilterWriteCloser(c *WriterConfig, w io.Writer, f []Filter) (fw io.WriteCloser, err error) {

	if err = VerifyFilters(f); err != nil {
		return nil, err
	}
	stack := new(xio.WriteCloserStack)
	var wc io.Writer = w
	for i := len(f) - 1; i >= 0; i-- {
		fw, err = f[i].NewWriteCloser(wc, c)
		if err != nil {
			if cerr := stack.Close(); cerr != nil {
				return nil, errors.Join(err, cerr)
			}
			return nil, err
		}
		stack.Push(fw)
		wc = fw
	}
	return stack, nil
}

// VerifyFilters checks the filter list for the length and the right
// sequence of filters.
func VerifyFilters(f []Filter) error {
	if len(f) == 0 {
		return errors.New("filter: no filters")
	}
	if len(f) > 4 {
		return errors.New("filter: more than four filters")
	}
	for _, g := range f[:len(f)-1] {
		if g.last() {
			return errors.New("filter: LZMA2 filter is not last")
		}
	}
	if !f[len(f)-1].last() {
		return errors.New("filter: last filter is not LZMA2")
	}
	return nil
}

// ParseFilters decodes the concatenated binary representations of
// filters as created by MarshalBinary.
func ParseFilters(data []byte) (f []Filter, err error) {
	for len(data) > 0 {
		if len(data) < 2 {
			return nil, corruptf("filter properties truncated")
		}
		n := 2 + int(data[1])
		if len(data) < n {
			return nil, corruptf("filter properties truncated")
		}
		var g Filter
		switch id := data[0]; {
		case id == DeltaFilterID:
			g = new(DeltaFilter)
		case id == LZMA2FilterID:
			g = new(LZMA2Filter)
		case BCJMethod(id).valid():
			g = new(BCJFilter)
		default:
			return nil, corruptf("unsupported filter id %#02x", id)
		}
		if err = g.UnmarshalBinary(data[:n]); err != nil {
			return nil, err
		}
		f = append(f, g)
		data = data[n:]
	}
	if err = VerifyFilters(f); err != nil {
		return nil, err
	}
	return f, nil
}

// corruptf returns an error wrapping lzma.ErrCorrupted.
func corruptf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format,
		append([]any{lzma.ErrCorrupted}, a...)...)
}

// configf returns an error wrapping lzma.ErrInvalidConfig.
func configf(format string, a ...any) error {
	return fmt.Errorf("%w: "+format,
		append([]any{lzma.ErrInvalidConfig}, a...)...)
}
