package beacon

import (
	"math/rand/v2"
	"time"
)

// jitterRatio is the maximum relative deviation applied when jitter is enabled.
const jitterRatio = 0.10

// Interval samples the pause between two queries.
type Interval struct {
	Min    time.Duration
	Max    time.Duration
	Jitter bool
}

// Base returns min when min == max, otherwise a uniform sample in [min, max].
func (iv Interval) Base(rnd *rand.Rand) time.Duration {
	if iv.Max <= iv.Min {
		return iv.Min
	}
	span := int64(iv.Max - iv.Min)
	return iv.Min + time.Duration(rnd.Int64N(span+1))
}

// Apply spreads base uniformly over [base-10%, base+10%] when jitter is on.
func (iv Interval) Apply(rnd *rand.Rand, base time.Duration) time.Duration {
	if !iv.Jitter || base <= 0 {
		return base
	}
	delta := float64(base) * jitterRatio
	d := time.Duration(float64(base) - delta + rnd.Float64()*2*delta)
	if d < 0 {
		return 0
	}
	return d
}

// Next returns the full sleep duration for one iteration.
func (iv Interval) Next(rnd *rand.Rand) time.Duration {
	return iv.Apply(rnd, iv.Base(rnd))
}

// Seconds converts a float number of seconds to a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
