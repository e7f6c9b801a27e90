package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SYSMONI_"

// Config carries runtime options for sysmoni.
type Config struct {
	Interval     time.Duration `yaml:"interval"`
	ProcInterval time.Duration `yaml:"proc_interval"`
	HistorySize  int           `yaml:"history_size"`
	Sort         string        `yaml:"sort"`
	Filter       string        `yaml:"filter"`
	Top          int           `yaml:"top"`
	EvictStale   bool          `yaml:"evict_stale"`
	ProcRoot     string        `yaml:"proc_root"`
	SysRoot      string        `yaml:"sys_root"`
	DiskPath     string        `yaml:"disk_path"`
	JSON         bool          `yaml:"json"`
	JSONStream   bool          `yaml:"json_stream"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file"`

	File string `yaml:"-"`
}

func Default() Config {
	return Config{
		Interval:     time.Second,
		ProcInterval: time.Second,
		HistorySize:  100,
		Sort:         "cpu",
		Filter:       "",
		Top:          64,
		EvictStale:   true,
		ProcRoot:     "/proc",
		SysRoot:      "/sys",
		DiskPath:     "/",
		JSON:         false,
		JSONStream:   false,
		LogLevel:     "info",
	}
}

var validSorts = map[string]bool{"cpu": true, "mem": true, "pid": true, "name": true}

// FromFlags builds the configuration. Precedence, lowest first: defaults,
// the YAML file named by --config, a .env file in the working directory,
// SYSMONI_* environment variables, then explicit flags.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	flagged := Default()

	fs := flag.NewFlagSet("sysmoni", flag.ContinueOnError)
	fs.StringVar(&flagged.File, "config", "", "path to a YAML config file")
	fs.DurationVar(&flagged.Interval, "interval", flagged.Interval, "refresh interval")
	fs.DurationVar(&flagged.ProcInterval, "proc-interval", flagged.ProcInterval, "minimum time between per-process CPU refreshes")
	fs.IntVar(&flagged.HistorySize, "history", flagged.HistorySize, "samples kept for graphs")
	fs.StringVar(&flagged.Sort, "sort", flagged.Sort, "sort column: cpu|mem|pid|name")
	fs.StringVar(&flagged.Filter, "filter", flagged.Filter, "substring filter for process names")
	fs.IntVar(&flagged.Top, "top", flagged.Top, "process rows to keep")
	fs.BoolVar(&flagged.EvictStale, "evict-stale", flagged.EvictStale, "forget rate state of exited processes")
	fs.StringVar(&flagged.ProcRoot, "proc-root", flagged.ProcRoot, "procfs mount point")
	fs.StringVar(&flagged.SysRoot, "sys-root", flagged.SysRoot, "sysfs mount point")
	fs.StringVar(&flagged.DiskPath, "disk", flagged.DiskPath, "filesystem to report usage for")
	fs.BoolVar(&flagged.JSON, "json", flagged.JSON, "output one-shot JSON and exit")
	fs.BoolVar(&flagged.JSONStream, "json-stream", flagged.JSONStream, "stream NDJSON until interrupted")
	fs.StringVar(&flagged.LogLevel, "log-level", flagged.LogLevel, "debug|info|warn|error")
	fs.StringVar(&flagged.LogFile, "log-file", flagged.LogFile, "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if flagged.File != "" {
		if err := cfg.loadFile(flagged.File); err != nil {
			return cfg, err
		}
		cfg.File = flagged.File
	}

	// A missing .env is normal; the process environment still applies.
	_ = godotenv.Load()
	cfg.applyEnv(os.Getenv)

	applyFlags(&cfg, &flagged, set)
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(envPrefix + "INTERVAL"); v != "" {
		if d, ok := parseSeconds(v); ok {
			c.Interval = d
		}
	}
	if v := getenv(envPrefix + "PROC_INTERVAL"); v != "" {
		if d, ok := parseSeconds(v); ok {
			c.ProcInterval = d
		}
	}
	if v := getenv(envPrefix + "HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistorySize = n
		}
	}
	if v := getenv(envPrefix + "SORT"); v != "" {
		c.Sort = v
	}
	if v := getenv(envPrefix + "FILTER"); v != "" {
		c.Filter = v
	}
	if v := getenv(envPrefix + "TOP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Top = n
		}
	}
	if v := getenv(envPrefix + "EVICT_STALE"); v == "0" {
		c.EvictStale = false
	}
	if v := getenv(envPrefix + "DISK"); v != "" {
		c.DiskPath = v
	}
	if v := getenv(envPrefix + "JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.JSON = b
		}
	}
	if v := getenv(envPrefix + "JSON_STREAM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.JSONStream = b
		}
	}
	if v := getenv(envPrefix + "PROC_ROOT"); v != "" {
		c.ProcRoot = v
	}
	if v := getenv(envPrefix + "SYS_ROOT"); v != "" {
		c.SysRoot = v
	}
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv(envPrefix + "LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

// parseSeconds accepts a Go duration or a bare number of seconds.
func parseSeconds(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, true
	}
	return 0, false
}

func applyFlags(dst, src *Config, set map[string]bool) {
	copyIf := map[string]func(){
		"interval":      func() { dst.Interval = src.Interval },
		"proc-interval": func() { dst.ProcInterval = src.ProcInterval },
		"history":       func() { dst.HistorySize = src.HistorySize },
		"sort":          func() { dst.Sort = src.Sort },
		"filter":        func() { dst.Filter = src.Filter },
		"top":           func() { dst.Top = src.Top },
		"evict-stale":   func() { dst.EvictStale = src.EvictStale },
		"proc-root":     func() { dst.ProcRoot = src.ProcRoot },
		"sys-root":      func() { dst.SysRoot = src.SysRoot },
		"disk":          func() { dst.DiskPath = src.DiskPath },
		"json":          func() { dst.JSON = src.JSON },
		"json-stream":   func() { dst.JSONStream = src.JSONStream },
		"log-level":     func() { dst.LogLevel = src.LogLevel },
		"log-file":      func() { dst.LogFile = src.LogFile },
	}
	for name := range set {
		if fn, ok := copyIf[name]; ok {
			fn()
		}
	}
}

// Validate rejects settings the sampler cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", c.Interval))
	}
	if c.ProcInterval < 0 {
		errs = append(errs, fmt.Errorf("proc-interval must not be negative, got %v", c.ProcInterval))
	}
	if c.HistorySize <= 0 {
		errs = append(errs, fmt.Errorf("history must be positive, got %d", c.HistorySize))
	}
	if c.Top <= 0 {
		errs = append(errs, fmt.Errorf("top must be positive, got %d", c.Top))
	}
	if !validSorts[strings.ToLower(c.Sort)] {
		errs = append(errs, fmt.Errorf("unknown sort column %q", c.Sort))
	}
	if c.JSON && c.JSONStream {
		errs = append(errs, errors.New("--json and --json-stream are mutually exclusive"))
	}
	return errors.Join(errs...)
}
