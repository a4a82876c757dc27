package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/Dicklesworthstone/sysmoni/internal/errors"
	"github.com/Dicklesworthstone/sysmoni/internal/logging"
	"github.com/Dicklesworthstone/sysmoni/internal/source"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYSMONI_"

// Config carries runtime options for sysmoni.
type Config struct {
	Interval    time.Duration
	StopTimeout time.Duration
	Source      string
	ProcRoot    string
	Sort        string
	Filter      string
	JSON        bool
	JSONStream  bool
	MetricsAddr string
	LogLevel    string
	LogFile     string
	TraceFile   string
	MaxProcs    int
	MemCached   bool
}

func Default() Config {
	return Config{
		Interval:    time.Second,
		StopTimeout: 5 * time.Second,
		Source:      source.Procfs,
		Sort:        "cpu",
		LogLevel:    "info",
		MemCached:   true,
	}
}

// BindFlags registers every option on fs with cfg's current values as
// defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.DurationVarP(&cfg.Interval, "interval", "i", cfg.Interval, "refresh interval")
	fs.DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "how long to wait for the sampler to stop")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "metrics source: procfs|gopsutil")
	fs.StringVar(&cfg.ProcRoot, "proc-root", cfg.ProcRoot, "procfs mount point (procfs source only)")
	fs.StringVar(&cfg.Sort, "sort", cfg.Sort, "sort column: cpu|mem")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "regex filter for process commands")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "output one-shot JSON and exit")
	fs.BoolVar(&cfg.JSONStream, "json-stream", cfg.JSONStream, "stream NDJSON until interrupted")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "append logs to this file")
	fs.StringVar(&cfg.TraceFile, "trace-file", cfg.TraceFile, "write OpenTelemetry spans for each cycle to this file")
	fs.IntVar(&cfg.MaxProcs, "max-procs", cfg.MaxProcs, "limit listed processes, after --filter (0 = all)")
	fs.BoolVar(&cfg.MemCached, "mem-cached", cfg.MemCached, "count page cache as free memory")
}

// envOverride maps one environment variable to the flag it shadows.
type envOverride struct {
	key   string
	flag  string
	apply func(*Config, string) error
}

var envOverrides = []envOverride{
	{"INTERVAL", "interval", func(c *Config, v string) error {
		d, err := parseDuration(v)
		c.Interval = d
		return err
	}},
	{"STOP_TIMEOUT", "stop-timeout", func(c *Config, v string) error {
		d, err := parseDuration(v)
		c.StopTimeout = d
		return err
	}},
	{"SOURCE", "source", func(c *Config, v string) error { c.Source = v; return nil }},
	{"PROC_ROOT", "proc-root", func(c *Config, v string) error { c.ProcRoot = v; return nil }},
	{"SORT", "sort", func(c *Config, v string) error { c.Sort = v; return nil }},
	{"FILTER", "filter", func(c *Config, v string) error { c.Filter = v; return nil }},
	{"METRICS_ADDR", "metrics-addr", func(c *Config, v string) error { c.MetricsAddr = v; return nil }},
	{"LOG_LEVEL", "log-level", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"LOG_FILE", "log-file", func(c *Config, v string) error { c.LogFile = v; return nil }},
	{"TRACE_FILE", "trace-file", func(c *Config, v string) error { c.TraceFile = v; return nil }},
	{"MAX_PROCS", "max-procs", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			c.MaxProcs = n
		}
		return err
	}},
	{"MEM_CACHED", "mem-cached", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err == nil {
			c.MemCached = b
		}
		return err
	}},
}

// ApplyEnv overrides cfg from SYSMONI_* variables. Flags set explicitly on
// fs win over the environment; fs may be nil.
func ApplyEnv(cfg *Config, fs *pflag.FlagSet) error {
	for _, o := range envOverrides {
		v, ok := os.LookupEnv(EnvPrefix + o.key)
		if !ok || v == "" {
			continue
		}
		if fs != nil && fs.Changed(o.flag) {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return apperrors.NewConfigError("%s%s=%q: %v", EnvPrefix, o.key, v, err)
		}
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds ("2" == "2s").
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	return time.ParseDuration(v + "s")
}

// Validate reports the first invalid option as an apperrors.ConfigError.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return apperrors.NewConfigError("interval must be positive, got %s", c.Interval)
	}
	if c.StopTimeout <= 0 {
		return apperrors.NewConfigError("stop timeout must be positive, got %s", c.StopTimeout)
	}
	switch c.Source {
	case source.Procfs, source.Gopsutil:
	default:
		return apperrors.NewConfigError("unknown source %q", c.Source)
	}
	switch c.Sort {
	case "cpu", "mem":
	default:
		return apperrors.NewConfigError("sort must be cpu or mem, got %q", c.Sort)
	}
	if c.Filter != "" {
		if _, err := regexp.Compile(c.Filter); err != nil {
			return apperrors.NewConfigError("invalid filter: %v", err)
		}
	}
	if c.JSON && c.JSONStream {
		return apperrors.NewConfigError("--json and --json-stream are mutually exclusive")
	}
	if c.MaxProcs < 0 {
		return apperrors.NewConfigError("max-procs must not be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
