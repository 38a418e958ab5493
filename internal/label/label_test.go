package label

import (
	"math/rand/v2"
	"strings"
	"testing"
)

func isAlnum(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune(Alphabet, c) {
			return false
		}
	}
	return true
}

func TestGeneratorLengthAndCharset(t *testing.T) {
	for _, n := range []int{1, 5, 12, 63} {
		g := New(n)
		for i := 0; i < 200; i++ {
			s := g.Next()
			if len(s) != n {
				t.Fatalf("expected length %d, got %d (%q)", n, len(s), s)
			}
			if !isAlnum(s) {
				t.Fatalf("label %q contains non alphanumeric chars", s)
			}
		}
	}
}

func TestGeneratorDeterministicSource(t *testing.T) {
	a := New(16, WithSource(rand.New(rand.NewPCG(1, 2))))
	b := New(16, WithSource(rand.New(rand.NewPCG(1, 2))))
	for i := 0; i < 10; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("expected same sequence, got %q and %q", x, y)
		}
	}
}

func TestSeqIsNotRestartable(t *testing.T) {
	g := New(8, WithSource(rand.New(rand.NewPCG(7, 7))))
	ref := New(8, WithSource(rand.New(rand.NewPCG(7, 7))))

	var first []string
	for s := range g.Seq() {
		first = append(first, s)
		if len(first) == 3 {
			break
		}
	}
	var second []string
	for s := range g.Seq() {
		second = append(second, s)
		if len(second) == 3 {
			break
		}
	}
	want := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		want = append(want, ref.Next())
	}
	got := append(first, second...)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestDedupeWindow(t *testing.T) {
	// a single character label has 36 outcomes, a window of 10 must not repeat within itself
	g := New(1, WithDedupe(10))
	seen := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		s := g.Next()
		for _, prev := range seen {
			if prev == s {
				t.Fatalf("label %q repeated within window", s)
			}
		}
		seen = append(seen, s)
	}
	if g.recent == nil || g.recent.Len() == 0 {
		t.Fatalf("expected recent window to be populated")
	}
}

func TestDedupeDisabled(t *testing.T) {
	g := New(4, WithDedupe(0))
	if g.recent != nil {
		t.Fatalf("expected no dedupe window")
	}
}
