package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xxxsen/dnsbeacon/internal/probe"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ISink receives the query records selected for output.
type ISink interface {
	Write(rec *probe.Record) error
	Close() error
}

type Option func(*options)

type options struct {
	rdata bool
}

// WithRData appends the answer data to each line.
func WithRData(v bool) Option {
	return func(o *options) {
		o.rdata = v
	}
}

type writerSink struct {
	mu      sync.Mutex
	opts    options
	writers []io.Writer
	closers []io.Closer
}

// NewWriterSink writes one line per record to every writer.
func NewWriterSink(ws []io.Writer, opts ...Option) ISink {
	s := &writerSink{writers: ws}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// FileConfig describes the append-only record file.
type FileConfig struct {
	File      string
	Console   bool
	MaxSize   int
	MaxBackup int
}

// New builds the console and/or file sink described by c.
func New(c FileConfig, opts ...Option) (ISink, error) {
	s := &writerSink{}
	for _, opt := range opts {
		opt(&s.opts)
	}
	if c.Console {
		s.writers = append(s.writers, os.Stdout)
	}
	if file := strings.TrimSpace(c.File); file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackup,
		}
		if c.MaxSize <= 0 {
			// lumberjack treats 0 as its 100MB default, use a size that never triggers
			lj.MaxSize = 1 << 20
		}
		s.writers = append(s.writers, lj)
		s.closers = append(s.closers, lj)
	}
	if len(s.writers) == 0 {
		return nil, fmt.Errorf("record sink needs console or file output")
	}
	return s, nil
}

func (s *writerSink) Write(rec *probe.Record) error {
	line := rec.Format(s.opts.rdata) + "\n"
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, w := range s.writers {
		if _, err := io.WriteString(w, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *writerSink) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
