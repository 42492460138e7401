package filter

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lzmago/codec/lzma"
	"github.com/lzmago/codec/xio"
)

func marshalFilters(t *testing.T, f []Filter) []byte {
	var p []byte
	for _, g := range f {
		data, err := g.MarshalBinary()
		require.NoError(t, err)
		p = append(p, data...)
	}
	return p
}

func TestFilterChain(t *testing.T) {
	data := append(codeLike(11, 200000), codeLike(11, 100000)...)
	tests := [][]Filter{
		{&LZMA2Filter{DictSize: 1 << 20}},
		{&BCJFilter{Method: X86}, &LZMA2Filter{DictSize: 1 << 20}},
		{&BCJFilter{Method: ARM, StartOffset: 0x8000},
			&LZMA2Filter{DictSize: 64 << 10}},
		{&DeltaFilter{Distance: 4}, &LZMA2Filter{DictSize: 1 << 16}},
		{&BCJFilter{Method: ARMThumb}, &DeltaFilter{Distance: 2},
			&BCJFilter{Method: SPARC, StartOffset: 4},
			&LZMA2Filter{DictSize: lzma.MinDictSize}},
	}
	for _, f := range tests {
		buf := new(bytes.Buffer)
		w, err := NewFilterWriteCloser(&WriterConfig{NiceLen: 32}, buf, f)
		require.NoError(t, err)
		writeRandomPieces(t, w, data, 2)
		require.NoError(t, w.Close())

		// the filters travel in their binary representation
		g, err := ParseFilters(marshalFilters(t, f))
		require.NoError(t, err)
		require.Equal(t, f, g)

		r, err := NewFilterReader(nil, buf, g)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, data, got)
	}
}

func TestFilterReaderConfig(t *testing.T) {
	f := []Filter{&LZMA2Filter{DictSize: 1 << 20}}
	_, err := NewFilterReader(&ReaderConfig{MemLimitKiB: 100},
		bytes.NewReader([]byte{0}), f)
	var merr *lzma.MemoryLimitError
	require.ErrorAs(t, err, &merr)
	require.EqualValues(t, 100, merr.LimitKiB)
}

// failingFilter is a non-terminal filter whose writer cannot be created.
type failingFilter struct{ DeltaFilter }

var errFailingFilter = errors.New("filter writer failed")

func (f failingFilter) NewWriteCloser(w io.Writer, c *WriterConfig,
) (io.WriteCloser, error) {
	return nil, errFailingFilter
}

func TestFilterWriteCloserError(t *testing.T) {
	buf := new(bytes.Buffer)
	f := []Filter{&failingFilter{DeltaFilter{Distance: 1}},
		&LZMA2Filter{DictSize: 1 << 16}}
	_, err := NewFilterWriteCloser(nil, buf, f)
	require.ErrorIs(t, err, errFailingFilter)
	// the LZMA2 writer has been closed and wrote its end marker
	require.Equal(t, []byte{0}, buf.Bytes())

	_, err = NewFilterWriteCloser(nil, io.Discard, []Filter{
		&BCJFilter{Method: ARM, StartOffset: 3},
		&LZMA2Filter{DictSize: 1 << 16}})
	require.ErrorIs(t, err, lzma.ErrInvalidConfig)
}

func TestFilterWriteCloserClosed(t *testing.T) {
	w, err := NewFilterWriteCloser(nil, io.Discard, []Filter{
		&DeltaFilter{Distance: 2}, &LZMA2Filter{DictSize: 1 << 16}})
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	_, err = w.Write([]byte("abc"))
	require.ErrorIs(t, err, xio.ErrClosed)
}

func TestVerifyFilters(t *testing.T) {
	lz := &LZMA2Filter{DictSize: 1 << 20}
	bcj := &BCJFilter{Method: X86}
	tests := [][]Filter{
		nil,
		{bcj},
		{lz, bcj},
		{lz, lz},
		{bcj, bcj, bcj, bcj, lz},
	}
	for i, f := range tests {
		require.Error(t, VerifyFilters(f), "test %d", i)
	}
	require.NoError(t, VerifyFilters([]Filter{bcj, bcj, bcj, lz}))
}

func TestFilterMarshalling(t *testing.T) {
	tests := []struct {
		f    Filter
		want []byte
	}{
		{&LZMA2Filter{DictSize: 8 << 20}, []byte{0x21, 1, 22}},
		{&BCJFilter{Method: X86}, []byte{0x04, 0}},
		{&BCJFilter{Method: PowerPC, StartOffset: 0x100},
			[]byte{0x05, 4, 0, 1, 0, 0}},
		{&DeltaFilter{Distance: 256}, []byte{0x03, 1, 255}},
	}
	for _, tc := range tests {
		data, err := tc.f.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, tc.want, data)
		require.Equal(t, uint64(tc.want[0]), tc.f.ID())
	}

	bad := []Filter{
		&LZMA2Filter{DictSize: 100},
		&BCJFilter{Method: 0x06},
		&BCJFilter{Method: ARM, StartOffset: 2},
		&DeltaFilter{Distance: 0},
	}
	for _, f := range bad {
		_, err := f.MarshalBinary()
		require.ErrorIs(t, err, lzma.ErrInvalidConfig, "%v", f)
	}
}

func TestParseFiltersErrors(t *testing.T) {
	tests := [][]byte{
		{},
		{0x21},
		{0x21, 1},
		{0x06, 0, 0x21, 1, 22},
		{0x04, 2, 0, 0, 0x21, 1, 22},
		{0x07, 4, 2, 0, 0, 0, 0x21, 1, 22},
		{0x03, 2, 0, 0, 0x21, 1, 22},
		{0x21, 1, 41},
	}
	for i, p := range tests {
		_, err := ParseFilters(p)
		require.Error(t, err, "test %d", i)
	}
}
