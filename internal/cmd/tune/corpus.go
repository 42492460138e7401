package main

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/ulikunitz/zdata"

	"github.com/lzmago/codec/internal/tuning"
	"github.com/lzmago/codec/lzma"
)

var (
	_silesiaFiles []tuning.File
	silesiaOnce   sync.Once
)

func silesiaFiles() []tuning.File {
	silesiaOnce.Do(func() {
		var err error
		_silesiaFiles, err = tuning.Files(zdata.Silesia)
		if err != nil {
			panic(fmt.Errorf("silesiaFiles() error %w", err))
		}
	})
	return _silesiaFiles
}

// writerBenchmark measures the compression of the Silesia corpus. The
// compression ratio is reported as c/u metric.
func writerBenchmark(cfg lzma.Writer2Config) func(b *testing.B) {
	return func(b *testing.B) {
		files := silesiaFiles()
		size := tuning.Size(files)
		b.SetBytes(size)
		var (
			err            error
			compressedSize int64
		)
		workers := runtime.GOMAXPROCS(0)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			compressedSize, err = tuning.Compress(files, cfg, workers)
			if err != nil {
				b.Fatalf("Compress error %s", err)
			}
		}
		b.StopTimer()
		r := float64(compressedSize) / float64(size)
		b.ReportMetric(r, "c/u")
	}
}
