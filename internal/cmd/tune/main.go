// Command tune searches the encoder parameters that provide the best
// compression speed for a set of compression ratio slots. The results
// support the maintenance of the preset table of the lzma package.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/kr/pretty"
	"github.com/ulikunitz/lz"

	"github.com/lzmago/codec/lzma"
)

type preset struct {
	present bool
	cfg     lzma.Writer2Config
	result  testing.BenchmarkResult
}

// candidate is a configuration to be measured.
type candidate struct {
	cfg      lzma.Writer2Config
	disabled bool
}

// mbPerSec returns the Megabytes (1 000 000 bytes) per seconds that are
// processed.
func mbPerSec(r testing.BenchmarkResult) float64 {
	if v, ok := r.Extra["MB/s"]; ok {
		return v
	}
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

func ratio(r testing.BenchmarkResult) float64 {
	if x, ok := r.Extra["c/u"]; ok {
		return x
	}
	return math.NaN()
}

// Returns the slot index the ratio qualifies for. If no slot can be found ok
// will be false.
func slot(slots []float64, ratio float64) (i int, ok bool) {
	for i, r := range slots {
		if ratio > r {
			return i - 1, i > 0
		}
	}
	return len(slots) - 1, true
}

// worse reports whether configuration a cannot compress better than b.
// A smaller dictionary, nice length and depth limit never improve the
// ratio. Sequencer configurations are only comparable with sequencers of
// the same type and input lengths.
func worse(a, b *lzma.Writer2Config) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if *a.Properties != *b.Properties {
		return false
	}
	d, e := a.DictSize, b.DictSize
	switch x := a.LZ.(type) {
	case nil:
		return b.LZ == nil && d <= e && a.NiceLen <= b.NiceLen &&
			a.DepthLimit <= b.DepthLimit
	case *lz.HSConfig:
		y, ok := b.LZ.(*lz.HSConfig)
		if !(ok && x.InputLen == y.InputLen) {
			return false
		}
		return d <= e && x.HashBits <= y.HashBits
	case *lz.BHSConfig:
		y, ok := b.LZ.(*lz.BHSConfig)
		if !(ok && x.InputLen == y.InputLen) {
			return false
		}
		return d <= e && x.HashBits <= y.HashBits
	case *lz.DHSConfig:
		y, ok := b.LZ.(*lz.DHSConfig)
		if !(ok && x.InputLen1 == y.InputLen1 && x.InputLen2 == y.InputLen2) {
			return false
		}
		return d <= e && x.HashBits1 <= y.HashBits1 &&
			x.HashBits2 <= y.HashBits2
	case *lz.BDHSConfig:
		y, ok := b.LZ.(*lz.BDHSConfig)
		if !(ok && x.InputLen1 == y.InputLen1 && x.InputLen2 == y.InputLen2) {
			return false
		}
		return d <= e && x.HashBits1 <= y.HashBits1 &&
			x.HashBits2 <= y.HashBits2
	default:
		return false
	}
}

func findPresets(slots []float64, candidates []candidate,
	benchmark func(cfg lzma.Writer2Config) testing.BenchmarkResult,
) []preset {
	if len(slots) == 0 {
		log.Fatalf("no slots defined")
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i] > slots[j]
	})
	fmt.Printf("slots %.3f\n", slots)
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	presets := make([]preset, len(slots))

	i := 0
	n := len(candidates)
	for len(candidates) > 0 {
		k := len(candidates) - 1
		c := candidates[k]
		candidates = candidates[:k]
		if c.disabled {
			continue
		}
		n--

		i++
		result := benchmark(c.cfg)
		fmt.Printf("%d-%d %s\n", i, n, result)
		si, ok := slot(slots, ratio(result))
		if !ok {
			for j := range candidates {
				p := &candidates[j]
				if p.disabled {
					continue
				}
				if worse(&p.cfg, &c.cfg) {
					p.disabled = true
					n--
				}
			}
			continue
		}
		v := mbPerSec(result)
		p := presets[si]
		if p.present && v <= mbPerSec(p.result) {
			fmt.Printf("slot %d - not faster\n", si+1)
			continue
		}
		presets[si] = preset{
			present: true,
			cfg:     c.cfg,
			result:  result,
		}
		fmt.Printf("slot %d - update\n", si+1)
		pretty.Println(c.cfg)
	}

	fmt.Printf("\n\n### Result ###\n\n")

	for si, p := range presets {
		if si > 0 {
			fmt.Printf("\n")
		}
		if !p.present {
			fmt.Printf("slot %d - not present\n", si+1)
			continue
		}
		fmt.Printf("slot %d - \t%.3f c/u\t%.2f MB/s\n",
			si+1, ratio(p.result), mbPerSec(p.result))
		pretty.Println(p.cfg)
	}
	return presets
}

// appendCandidates adds the configurations for all combinations of
// dictionary size, nice length and depth limit.
func appendCandidates(x []candidate) (y []candidate) {
	y = x
	for dictExp := 16; dictExp <= 26; dictExp++ {
		for _, niceLen := range []int{16, 32, 48, 64, 96, 128, 192, 273} {
			for _, depth := range []int{4, 8, 12, 16, 24, 0} {
				cfg := lzma.Writer2Config{
					DictSize:   1 << dictExp,
					NiceLen:    niceLen,
					DepthLimit: depth,
				}
				cfg.ApplyDefaults()
				if depth == 0 {
					// the default depth limit
					cfg.DepthLimit = 16 + niceLen/2
				}
				y = append(y, candidate{cfg: cfg})
			}
		}
	}
	return y
}

// appendSeqCandidates adds sequencer configurations. The sequencer window
// always covers the dictionary.
func appendSeqCandidates(x []candidate) (y []candidate) {
	y = x
	for dictExp := 16; dictExp <= 23; dictExp++ {
		ws := 1 << dictExp
		for hashBits := 12; hashBits <= 22; hashBits += 2 {
			for _, inputLen := range []int{3, 4} {
				y = append(y,
					seqCandidate(&lz.HSConfig{
						WindowSize: ws,
						InputLen:   inputLen,
						HashBits:   hashBits,
					}, ws),
					seqCandidate(&lz.BHSConfig{
						WindowSize: ws,
						InputLen:   inputLen,
						HashBits:   hashBits,
					}, ws))
			}
			y = append(y,
				seqCandidate(&lz.DHSConfig{
					WindowSize: ws,
					InputLen1:  3,
					HashBits1:  hashBits,
					InputLen2:  7,
					HashBits2:  hashBits,
				}, ws),
				seqCandidate(&lz.BDHSConfig{
					WindowSize: ws,
					InputLen1:  3,
					HashBits1:  hashBits,
					InputLen2:  7,
					HashBits2:  hashBits,
				}, ws))
		}
	}
	return y
}

func seqCandidate(c lz.Configurator, dictSize int) candidate {
	cfg := lzma.Writer2Config{DictSize: dictSize, LZ: c}
	cfg.ApplyDefaults()
	return candidate{cfg: cfg}
}

func main() {
	testing.Init()
	seq := flag.Bool("lz", false, "include lz sequencer configurations")
	flag.Parse()
	candidates := appendCandidates(nil)
	if *seq {
		candidates = appendSeqCandidates(candidates)
	}

	slots := []float64{0.33, 0.32, 0.31, 0.30, 0.29,
		0.28, 0.27, 0.26, 0.25, 0.24}
	findPresets(slots, candidates,
		func(cfg lzma.Writer2Config) testing.BenchmarkResult {
			return testing.Benchmark(writerBenchmark(cfg))
		})
}
