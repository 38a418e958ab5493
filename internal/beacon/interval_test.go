package beacon

import (
	"math/rand/v2"
	"testing"
	"time"
)

func TestIntervalBaseWithinBounds(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	iv := Interval{Min: 10 * time.Second, Max: 20 * time.Second}
	for i := 0; i < 5000; i++ {
		d := iv.Base(rnd)
		if d < iv.Min || d > iv.Max {
			t.Fatalf("base interval %s outside [%s, %s]", d, iv.Min, iv.Max)
		}
	}
}

func TestIntervalFixed(t *testing.T) {
	rnd := rand.New(rand.NewPCG(5, 6))
	iv := Interval{Min: 10 * time.Second, Max: 10 * time.Second}
	for i := 0; i < 100; i++ {
		if d := iv.Next(rnd); d != 10*time.Second {
			t.Fatalf("expected exactly 10s, got %s", d)
		}
	}
}

func TestIntervalJitterRange(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 8))
	iv := Interval{Min: time.Second, Max: 30 * time.Second, Jitter: true}
	for i := 0; i < 5000; i++ {
		base := iv.Base(rnd)
		d := iv.Apply(rnd, base)
		lo := time.Duration(float64(base) * 0.9)
		hi := time.Duration(float64(base) * 1.1)
		if d < lo-1 || d > hi+1 {
			t.Fatalf("jittered %s outside ±10%% of %s", d, base)
		}
		if d < 0 {
			t.Fatalf("negative interval %s", d)
		}
	}
}

func TestIntervalJitterZero(t *testing.T) {
	rnd := rand.New(rand.NewPCG(9, 9))
	iv := Interval{Jitter: true}
	if d := iv.Next(rnd); d != 0 {
		t.Fatalf("expected zero interval, got %s", d)
	}
}

func TestSeconds(t *testing.T) {
	if Seconds(1.5) != 1500*time.Millisecond {
		t.Fatalf("unexpected conversion %s", Seconds(1.5))
	}
}
