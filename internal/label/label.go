package label

import (
	"iter"
	"math/rand/v2"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Alphabet is the character set labels are drawn from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// maxRedraw bounds how often a label found in the dedupe window is redrawn.
const maxRedraw = 8

type Option func(*Generator)

// WithSource replaces the random source, mostly for tests.
func WithSource(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rnd = r
	}
}

// WithDedupe redraws labels produced within the last n outputs.
func WithDedupe(n int) Option {
	return func(g *Generator) {
		if n <= 0 {
			return
		}
		c, err := lru.New[string, struct{}](n)
		if err != nil {
			return
		}
		g.recent = c
	}
}

// Generator produces an endless stream of random labels of a fixed length.
type Generator struct {
	length int
	rnd    *rand.Rand
	recent *lru.Cache[string, struct{}]
}

func New(length int, opts ...Option) *Generator {
	g := &Generator{
		length: length,
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns the next label.
func (g *Generator) Next() string {
	s := g.draw()
	if g.recent == nil {
		return s
	}
	for i := 0; i < maxRedraw && g.recent.Contains(s); i++ {
		s = g.draw()
	}
	g.recent.Add(s, struct{}{})
	return s
}

// Seq exposes the generator as an iterator. Every Seq shares the generator's
// state, so ranging twice continues the stream instead of restarting it.
func (g *Generator) Seq() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

func (g *Generator) draw() string {
	var sb strings.Builder
	sb.Grow(g.length)
	for i := 0; i < g.length; i++ {
		sb.WriteByte(Alphabet[g.rnd.IntN(len(Alphabet))])
	}
	return sb.String()
}
