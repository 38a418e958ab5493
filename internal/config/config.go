package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miekg/dns"
	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

const maxLabelLength = 63

// Config is the root runtime configuration.
type Config struct {
	Domain      string           `json:"domain" yaml:"domain"`
	MinInterval float64          `json:"min_interval" yaml:"min_interval"`
	MaxInterval float64          `json:"max_interval" yaml:"max_interval"`
	SubLen      int              `json:"sub_len" yaml:"sub_len"`
	QType       string           `json:"qtype" yaml:"qtype"`
	Jitter      bool             `json:"jitter" yaml:"jitter"`
	Resolver    []string         `json:"resolver" yaml:"resolver"`
	LogEvery    int              `json:"log_every" yaml:"log_every"`
	Timeout     float64          `json:"timeout" yaml:"timeout"`
	RData       bool             `json:"rdata" yaml:"rdata"`
	Dedupe      int              `json:"dedupe" yaml:"dedupe"`
	Record      RecordConfig     `json:"record" yaml:"record"`
	Log         logger.LogConfig `json:"log" yaml:"log"`
	Pprof       PprofConfig      `json:"pprof" yaml:"pprof"`
}

// RecordConfig controls where per-query lines are written.
type RecordConfig struct {
	File      string `json:"file" yaml:"file"`
	Console   bool   `json:"console" yaml:"console"`
	MaxSize   int    `json:"max_size" yaml:"max_size"` // megabytes, 0 = never rotate
	MaxBackup int    `json:"max_backup" yaml:"max_backup"`
}

type PprofConfig struct {
	Enable bool   `json:"enable" yaml:"enable"`
	Bind   string `json:"bind" yaml:"bind"`
}

var supportedQTypes = map[string]uint16{
	"A":    dns.TypeA,
	"AAAA": dns.TypeAAAA,
	"TXT":  dns.TypeTXT,
	"MX":   dns.TypeMX,
}

// Default returns the configuration used when neither a file nor flags override a field.
func Default() *Config {
	cfg := &Config{
		MinInterval: 10,
		MaxInterval: 20,
		SubLen:      12,
		QType:       "A",
		LogEvery:    1,
		Timeout:     5,
		Record: RecordConfig{
			File:    "dns_beacon.log",
			Console: true,
		},
	}
	cfg.Log.File = "logs/dnsbeacon.log"
	cfg.Log.Level = "info"
	cfg.Log.FileCount = 5
	cfg.Log.FileSize = 100
	cfg.Log.KeepDays = 7
	cfg.Log.Console = true
	return cfg
}

// Load reads the configuration file from disk on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ParseQType maps a supported record type name to its wire value.
func ParseQType(name string) (uint16, error) {
	t, ok := supportedQTypes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unsupported qtype:%s, want one of A, AAAA, TXT, MX", name)
	}
	return t, nil
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	domain := strings.TrimSuffix(strings.TrimSpace(c.Domain), ".")
	if domain == "" {
		return fmt.Errorf("domain is required")
	}
	if _, ok := dns.IsDomainName(domain); !ok {
		return fmt.Errorf("invalid domain:%s", c.Domain)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("min interval must not be negative, got:%v", c.MinInterval)
	}
	if c.MinInterval > c.MaxInterval {
		return fmt.Errorf("min interval:%v greater than max interval:%v", c.MinInterval, c.MaxInterval)
	}
	if c.SubLen <= 0 {
		return fmt.Errorf("sub len must be positive, got:%d", c.SubLen)
	}
	if c.SubLen > maxLabelLength {
		return fmt.Errorf("sub len:%d exceeds dns label limit:%d", c.SubLen, maxLabelLength)
	}
	if _, ok := dns.IsDomainName(strings.Repeat("a", c.SubLen) + "." + domain); !ok {
		return fmt.Errorf("sub len:%d too long for domain:%s", c.SubLen, domain)
	}
	if _, err := ParseQType(c.QType); err != nil {
		return err
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("log every must be positive, got:%d", c.LogEvery)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got:%v", c.Timeout)
	}
	if c.Dedupe < 0 {
		return fmt.Errorf("dedupe window must not be negative, got:%d", c.Dedupe)
	}
	return nil
}

// BaseDomain returns the configured domain without surrounding spaces or trailing dot.
func (c *Config) BaseDomain() string {
	return strings.TrimSuffix(strings.TrimSpace(c.Domain), ".")
}
