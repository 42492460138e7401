// Package randtxt supports the generation of random text that resembles
// English. The text compresses like natural language and is used by the
// tests and benchmarks of the codec.
package randtxt

import (
	"math/rand"
)

// words contains the vocabulary, ordered by decreasing frequency.
var words = []string{
	"the", "of", "and", "to", "a", "in", "is", "that", "for", "it",
	"as", "was", "with", "be", "by", "on", "not", "he", "this", "are",
	"or", "his", "from", "at", "which", "but", "have", "an", "had",
	"they", "you", "were", "their", "one", "all", "we", "can", "her",
	"has", "there", "been", "if", "more", "when", "will", "would", "who",
	"so", "no", "she", "other", "its", "may", "these", "what", "them",
	"than", "some", "him", "time", "into", "only", "do", "could", "new",
	"about", "two", "first", "then", "any", "like", "my", "now", "over",
	"such", "our", "man", "me", "even", "most", "made", "after", "also",
	"did", "many", "before", "must", "through", "back", "years", "where",
	"much", "your", "way", "well", "down", "should", "because", "each",
	"just", "those", "people", "how", "too", "little", "state", "good",
	"very", "make", "world", "still", "own", "see", "men", "work",
	"long", "get", "here", "between", "both", "life", "being", "under",
	"never", "day", "same", "another", "know", "while", "last", "might",
	"great", "old", "year", "off", "come", "since", "against", "go",
	"came", "right", "used", "take", "three", "compression", "window",
	"dictionary", "stream", "chunk", "encoder", "decoder", "range",
	"literal", "match", "distance", "length", "probability", "state",
}

// Reader produces an endless sequence of words separated by spaces and
// occasional punctuation. The word frequencies follow Zipf's law.
type Reader struct {
	rnd  *rand.Rand
	zipf *rand.Zipf
	// pending bytes of the current word
	buf []byte
}

// NewReader creates a new random text reader using the given source.
func NewReader(src rand.Source) *Reader {
	rnd := rand.New(src)
	return &Reader{
		rnd:  rnd,
		zipf: rand.NewZipf(rnd, 1.1, 2, uint64(len(words)-1)),
	}
}

// nextWord appends the next word to r.buf.
func (r *Reader) nextWord() {
	w := words[r.zipf.Uint64()]
	r.buf = append(r.buf, w...)
	switch x := r.rnd.Intn(20); {
	case x == 0:
		r.buf = append(r.buf, ".\n"...)
	case x < 3:
		r.buf = append(r.buf, ", "...)
	default:
		r.buf = append(r.buf, ' ')
	}
}

// Read fills p with random text. It never returns an error.
func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(r.buf) == 0 {
			r.nextWord()
		}
		k := copy(p[n:], r.buf)
		n += k
		r.buf = r.buf[:copy(r.buf, r.buf[k:])]
	}
	return n, nil
}
