package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/dnsbeacon/internal/beacon"
	"github.com/xxxsen/dnsbeacon/internal/config"
	"github.com/xxxsen/dnsbeacon/internal/label"
	"github.com/xxxsen/dnsbeacon/internal/probe"
	"github.com/xxxsen/dnsbeacon/internal/resolver"
	"github.com/xxxsen/dnsbeacon/internal/sink"
	"go.uber.org/zap"
)

func main() {
	cfg, err := parseConfig(newFlagSet(os.Args[0], os.Stderr), os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		// logger not initialised yet, fallback to stderr
		log.Fatalf("init config failed, err:%v", err)
	}
	logkit := logger.Init(cfg.Log.File, cfg.Log.Level, int(cfg.Log.FileCount),
		int(cfg.Log.FileSize), int(cfg.Log.KeepDays), cfg.Log.Console)
	defer logkit.Sync() //nolint:errcheck

	r, err := resolver.NewFromLinks(cfg.Resolver, resolver.DefaultResolvConf)
	if err != nil {
		logkit.Fatal("build resolver failed", zap.Error(err))
	}
	out, err := sink.New(sink.FileConfig{
		File:      cfg.Record.File,
		Console:   cfg.Record.Console,
		MaxSize:   cfg.Record.MaxSize,
		MaxBackup: cfg.Record.MaxBackup,
	}, sink.WithRData(cfg.RData))
	if err != nil {
		logkit.Fatal("build record sink failed", zap.Error(err))
	}
	defer out.Close() //nolint:errcheck

	b, err := buildBeacon(cfg, r, out)
	if err != nil {
		logkit.Fatal("build beacon failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Pprof.Enable {
		startPprofServer(ctx, cfg.Pprof.Bind, logkit)
	}

	logkit.Info("start dns beaconing",
		zap.String("domain", cfg.BaseDomain()),
		zap.Int("sub_len", cfg.SubLen),
		zap.String("qtype", cfg.QType),
		zap.String("resolver", r.String()),
		zap.Float64("min_interval", cfg.MinInterval),
		zap.Float64("max_interval", cfg.MaxInterval),
		zap.Bool("jitter", cfg.Jitter),
	)
	if err := b.Run(ctx); err != nil {
		logkit.Error("beacon exited with error", zap.Error(err))
	}
	stats := b.Stats()
	fields := make([]zap.Field, 0, len(stats)+1)
	fields = append(fields, zap.Uint64("total", b.Count()))
	for status, cnt := range stats {
		fields = append(fields, zap.Uint64(string(status), cnt))
	}
	logkit.Info("shutdown complete", fields...)
}

func buildBeacon(cfg *config.Config, r resolver.IDNSResolver, out sink.ISink) (*beacon.Beacon, error) {
	qtype, err := config.ParseQType(cfg.QType)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Timeout * float64(time.Second))
	return beacon.New(
		beacon.WithLabeler(label.New(cfg.SubLen, label.WithDedupe(cfg.Dedupe))),
		beacon.WithProber(probe.New(cfg.BaseDomain(), qtype, r, timeout)),
		beacon.WithSink(out),
		beacon.WithInterval(beacon.Interval{
			Min:    beacon.Seconds(cfg.MinInterval),
			Max:    beacon.Seconds(cfg.MaxInterval),
			Jitter: cfg.Jitter,
		}),
		beacon.WithLogEvery(cfg.LogEvery),
	)
}
