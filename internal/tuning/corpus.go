// Package tuning supports the measurement of compression ratios and
// speeds on a corpus of files.
package tuning

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lzmago/codec/lzma"
)

// File is a file of the corpus.
type File struct {
	Name string
	Data []byte
}

// Files reads all files of the corpus.
func Files(corpus fs.FS) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

// Size returns the total size of the files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

type countWriter struct {
	n int64
}

func (w *countWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	w.n += int64(n)
	return n, nil
}

// compress writes the LZMA2 stream for data to w.
func compress(w io.Writer, data []byte, cfg lzma.Writer2Config) error {
	zw, err := cfg.NewWriter2(w)
	if err != nil {
		return err
	}
	if _, err = io.Copy(zw, bytes.NewReader(data)); err != nil {
		return err
	}
	return zw.Close()
}

// Compress compresses every file as separate LZMA2 stream and returns the
// total compressed size. Up to workers files are compressed in parallel.
func Compress(files []File, cfg lzma.Writer2Config, workers int) (compressedSize int64, err error) {
	var (
		g     errgroup.Group
		total atomic.Int64
	)
	g.SetLimit(max(workers, 1))
	for _, f := range files {
		f := f
		g.Go(func() error {
			cw := &countWriter{}
			if err := compress(cw, f.Data, cfg); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			total.Add(cw.n)
			return nil
		})
	}
	err = g.Wait()
	return total.Load(), err
}

// RoundTrip compresses and decompresses the file and checks that the
// decompressed data has the same xxhash digest.
func RoundTrip(f File, cfg lzma.Writer2Config) error {
	buf := new(bytes.Buffer)
	if err := compress(buf, f.Data, cfg); err != nil {
		return fmt.Errorf("%s: compression error %w", f.Name, err)
	}
	cfg.ApplyDefaults()
	r, err := lzma.Reader2Config{DictSize: int64(cfg.DictSize)}.NewReader2(buf)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	h := xxhash.New()
	if _, err = io.Copy(h, r); err != nil {
		return fmt.Errorf("%s: decompression error %w", f.Name, err)
	}
	if g, w := h.Sum64(), xxhash.Sum64(f.Data); g != w {
		return fmt.Errorf("%s: got digest %#016x; want %#016x",
			f.Name, g, w)
	}
	return nil
}
