// Package random provides the seedable value source behind the default
// scalar mocks.
package random

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultSeed seeds Default.
const DefaultSeed = "graphql!"

// Words is the vocabulary of generated strings.
var Words = []string{
	"ad", "adipisicing", "aliqua", "aliquip", "amet", "anim", "aute", "cillum",
	"commodo", "consectetur", "consequat", "culpa", "cupidatat", "deserunt", "do",
	"dolor", "dolore", "duis", "ea", "eiusmod", "elit", "enim", "esse", "est", "et",
	"eu", "ex", "excepteur", "exercitation", "fugiat", "id", "in", "incididunt",
	"ipsum", "irure", "labore", "laboris", "laborum", "Lorem", "magna", "minim",
	"mollit", "nisi", "non", "nostrud", "nulla", "occaecat", "officia", "pariatur",
	"proident", "qui", "quis", "reprehenderit", "sint", "sit", "sunt", "tempor",
	"ullamco", "ut", "velit", "veniam", "voluptate",
}

// Source produces random scalar values.
type Source interface {
	Boolean() bool
	// Int returns an integer in [min, max].
	Int(min, max int) int
	// Float returns a float in [min, max).
	Float(min, max float64) float64
	// UUID returns a version 4 UUID string.
	UUID() string
	// String returns wordCount space separated words.
	String(wordCount int) string
}

// Rand is a deterministic Source. It is safe for concurrent use; the
// sequence it yields depends on call order.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

var _ Source = (*Rand)(nil)

// New returns a Rand whose sequence is determined by seed.
func New(seed string) *Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	sum := h.Sum64()
	return &Rand{r: rand.New(rand.NewPCG(sum, sum^0x9e3779b97f4a7c15))}
}

var (
	defaultOnce sync.Once
	defaultRand *Rand
)

// Default returns the process-wide Rand seeded with DefaultSeed.
func Default() *Rand {
	defaultOnce.Do(func() { defaultRand = New(DefaultSeed) })
	return defaultRand
}

func (r *Rand) Boolean() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64() > 0.5
}

func (r *Rand) Int(min, max int) int {
	if max < min {
		min, max = max, min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.r.IntN(max-min+1)
}

func (r *Rand) Float(min, max float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()*(max-min) + min
}

func (r *Rand) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := uuid.NewRandomFromReader(reader{r.r})
	if err != nil {
		// reader never fails
		panic(err)
	}
	return id.String()
}

func (r *Rand) String(wordCount int) string {
	if wordCount <= 0 {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	words := make([]string, wordCount)
	for i := range words {
		words[i] = Words[r.r.IntN(len(Words))]
	}
	return strings.Join(words, " ")
}

// reader exposes a rand.Rand as an io.Reader. Callers hold Rand.mu.
type reader struct{ r *rand.Rand }

func (rd reader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rd.r.Uint32())
	}
	return len(p), nil
}
