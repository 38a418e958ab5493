package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/xxxsen/dnsbeacon/internal/config"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*s = append(*s, item)
		}
	}
	return nil
}

type flagValues struct {
	configPath  string
	domain      string
	minInterval float64
	maxInterval float64
	subLen      int
	qtype       string
	jitter      bool
	resolver    stringList
	logEvery    int
	timeout     float64
	rdata       bool
	recordFile  string
	dedupe      int
	logLevel    string
	pprof       string
}

// parseConfig resolves the final configuration: defaults, then the optional
// yaml file, then every flag given on the command line.
func parseConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	def := config.Default()
	fv := &flagValues{}
	fs.StringVar(&fv.configPath, "config", "", "path to yaml configuration file")
	fs.StringVar(&fv.domain, "domain", "", "base domain to query against (required)")
	fs.Float64Var(&fv.minInterval, "min-interval", def.MinInterval, "minimum interval between queries (seconds)")
	fs.Float64Var(&fv.maxInterval, "max-interval", def.MaxInterval, "maximum interval between queries (seconds), equal to min for a fixed interval")
	fs.IntVar(&fv.subLen, "sub-len", def.SubLen, "length of the random subdomain label")
	fs.StringVar(&fv.qtype, "qtype", def.QType, "record type to query: A, AAAA, TXT or MX")
	fs.BoolVar(&fv.jitter, "jitter", def.Jitter, "add ±10% random jitter to each sleep")
	fs.Var(&fv.resolver, "resolver", "resolver ip, ip:port or link (udp://, tcp://, dot://, https://), repeatable; system resolver when omitted")
	fs.IntVar(&fv.logEvery, "log-every", def.LogEvery, "write one query line every n queries")
	fs.Float64Var(&fv.timeout, "timeout", def.Timeout, "per query timeout (seconds)")
	fs.BoolVar(&fv.rdata, "rdata", def.RData, "append answer data to query lines")
	fs.StringVar(&fv.recordFile, "record-file", def.Record.File, "append-only query line file, empty to disable")
	fs.IntVar(&fv.dedupe, "dedupe", def.Dedupe, "redraw labels seen within the last n queries, 0 to disable")
	fs.StringVar(&fv.logLevel, "log-level", def.Log.Level, "application log level")
	fs.StringVar(&fv.pprof, "pprof", "", "pprof listen address, disabled when empty")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments:%v", fs.Args())
	}

	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "domain":
			cfg.Domain = fv.domain
		case "min-interval":
			cfg.MinInterval = fv.minInterval
		case "max-interval":
			cfg.MaxInterval = fv.maxInterval
		case "sub-len":
			cfg.SubLen = fv.subLen
		case "qtype":
			cfg.QType = fv.qtype
		case "jitter":
			cfg.Jitter = fv.jitter
		case "resolver":
			cfg.Resolver = append([]string(nil), fv.resolver...)
		case "log-every":
			cfg.LogEvery = fv.logEvery
		case "timeout":
			cfg.Timeout = fv.timeout
		case "rdata":
			cfg.RData = fv.rdata
		case "record-file":
			cfg.Record.File = fv.recordFile
		case "dedupe":
			cfg.Dedupe = fv.dedupe
		case "log-level":
			cfg.Log.Level = fv.logLevel
		case "pprof":
			cfg.Pprof.Enable = fv.pprof != ""
			cfg.Pprof.Bind = fv.pprof
		}
	})
	cfg.QType = strings.ToUpper(strings.TrimSpace(cfg.QType))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
