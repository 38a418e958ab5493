package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/xxxsen/dnsbeacon/internal/sink"
)

func parse(t *testing.T, args ...string) error {
	t.Helper()
	_, err := parseConfig(newFlagSet("test", io.Discard), args)
	return err
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := parseConfig(newFlagSet("test", io.Discard), []string{
		"--domain", "lab.example",
		"--min-interval", "2",
		"--max-interval", "4.5",
		"--sub-len", "20",
		"--qtype", "aaaa",
		"--jitter",
		"--resolver", "1.1.1.1,9.9.9.9",
		"--resolver", "tcp://8.8.8.8",
		"--log-every", "3",
	})
	if err != nil {
		t.Fatalf("parseConfig error: %v", err)
	}
	if cfg.Domain != "lab.example" || cfg.MinInterval != 2 || cfg.MaxInterval != 4.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.SubLen != 20 || cfg.QType != "AAAA" || !cfg.Jitter || cfg.LogEvery != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.Resolver) != 3 {
		t.Fatalf("expected 3 resolvers, got %v", cfg.Resolver)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := map[string][]string{
		"missing domain":   {},
		"min over max":     {"--domain", "lab.example", "--min-interval", "20", "--max-interval", "10"},
		"zero sub len":     {"--domain", "lab.example", "--sub-len", "0"},
		"negative sub len": {"--domain", "lab.example", "--sub-len", "-1"},
		"bad qtype":        {"--domain", "lab.example", "--qtype", "PTR"},
		"bad log every":    {"--domain", "lab.example", "--log-every", "0"},
		"unknown flag":     {"--domain", "lab.example", "--nope"},
		"stray argument":   {"--domain", "lab.example", "extra"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if err := parse(t, args...); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestParseConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beacon.yaml")
	data := "domain: file.example\nmin_interval: 1\nmax_interval: 2\nqtype: MX\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := parseConfig(newFlagSet("test", io.Discard), []string{"--config", path, "--qtype", "TXT"})
	if err != nil {
		t.Fatalf("parseConfig error: %v", err)
	}
	if cfg.Domain != "file.example" || cfg.MaxInterval != 2 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.QType != "TXT" {
		t.Fatalf("flag should override file, got %s", cfg.QType)
	}
}

func TestBuildBeacon(t *testing.T) {
	cfg, err := parseConfig(newFlagSet("test", io.Discard), []string{"--domain", "lab.example", "--min-interval", "10", "--max-interval", "10"})
	if err != nil {
		t.Fatalf("parseConfig error: %v", err)
	}
	out := sink.NewWriterSink([]io.Writer{io.Discard})
	b, err := buildBeacon(cfg, nil, out)
	if err != nil {
		t.Fatalf("buildBeacon error: %v", err)
	}
	if b.Count() != 0 {
		t.Fatalf("expected fresh beacon")
	}
}
