package beacon

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/dnsbeacon/internal/probe"
	"go.uber.org/zap"
)

type State int32

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// IProber issues one query for a label.
type IProber interface {
	Probe(ctx context.Context, label string) *probe.Record
}

// ILabeler hands out the next random label.
type ILabeler interface {
	Next() string
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Beacon runs the sequential query loop.
type Beacon struct {
	c     *config
	state atomic.Int32
	count atomic.Uint64

	mu    sync.Mutex
	stats map[probe.Status]uint64
}

func New(opts ...Option) (*Beacon, error) {
	c := &config{
		logEvery: 1,
		sleep:    sleepContext,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.labeler == nil {
		return nil, fmt.Errorf("no labeler found")
	}
	if c.prober == nil {
		return nil, fmt.Errorf("no prober found")
	}
	if c.sink == nil {
		return nil, fmt.Errorf("no sink found")
	}
	if c.logEvery <= 0 {
		return nil, fmt.Errorf("log every must be positive, got:%d", c.logEvery)
	}
	if c.interval.Min < 0 || c.interval.Min > c.interval.Max {
		return nil, fmt.Errorf("invalid interval, min:%s, max:%s", c.interval.Min, c.interval.Max)
	}
	return &Beacon{c: c, stats: make(map[probe.Status]uint64)}, nil
}

func (b *Beacon) State() State {
	return State(b.state.Load())
}

// Count returns the number of completed queries.
func (b *Beacon) Count() uint64 {
	return b.count.Load()
}

// Stats returns a copy of the completed query count per status.
func (b *Beacon) Stats() map[probe.Status]uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[probe.Status]uint64, len(b.stats))
	for k, v := range b.stats {
		out[k] = v
	}
	return out
}

// Run loops until ctx is cancelled. Cancellation is the only way out and is
// not an error.
func (b *Beacon) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	b.state.Store(int32(StateRunning))
	defer b.state.Store(int32(StateStopped))

	for {
		if ctx.Err() != nil {
			break
		}
		label := b.c.labeler.Next()
		rec := b.c.prober.Probe(ctx, label)
		if ctx.Err() != nil {
			// the query was cut short by shutdown
			break
		}
		n := b.complete(rec)
		if n%uint64(b.c.logEvery) == 0 {
			if err := b.c.sink.Write(rec); err != nil {
				logger.Error("write query record failed", zap.Error(err))
			}
		} else {
			logger.Debug("query record", zap.String("line", rec.String()))
		}

		d := b.c.interval.Next(b.c.rnd)
		if err := b.c.sleep(ctx, d); err != nil {
			break
		}
	}
	logger.Info("beacon stopped", zap.Uint64("query_count", b.Count()))
	return nil
}

func (b *Beacon) complete(rec *probe.Record) uint64 {
	b.mu.Lock()
	b.stats[rec.Status]++
	b.mu.Unlock()
	return b.count.Add(1)
}
