package beacon

import (
	"math/rand/v2"

	"github.com/xxxsen/dnsbeacon/internal/sink"
)

// Option configures the beacon.
type Option func(*config)

type config struct {
	labeler  ILabeler
	prober   IProber
	sink     sink.ISink
	interval Interval
	logEvery int
	sleep    Sleeper
	rnd      *rand.Rand
}

func WithLabeler(l ILabeler) Option {
	return func(c *config) {
		c.labeler = l
	}
}

func WithProber(p IProber) Option {
	return func(c *config) {
		c.prober = p
	}
}

func WithSink(s sink.ISink) Option {
	return func(c *config) {
		c.sink = s
	}
}

func WithInterval(iv Interval) Option {
	return func(c *config) {
		c.interval = iv
	}
}

// WithLogEvery writes only every n-th completed query to the sink.
func WithLogEvery(n int) Option {
	return func(c *config) {
		c.logEvery = n
	}
}

// WithSleeper replaces the inter-query wait.
func WithSleeper(s Sleeper) Option {
	return func(c *config) {
		c.sleep = s
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		c.rnd = r
	}
}
