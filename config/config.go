// Package config loads FactorDB's own settings — which LogStore backend
// to mount, badger's data directory, metrics provider selection, the
// interner's initial capacity, and the OpenTelemetry exporter endpoint —
// layered defaults → file → environment, in the spirit of the teacher's
// config.ParseConfig defaults-injection pattern (there for OPA's bundle/
// plugin/decision config) retargeted to FactorDB's own settings (spec
// §2.3). The CLI surface is an explicit non-goal, so no flag parsing
// lives here — this is a plain library entry point a host process calls.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LogStoreKind selects which LogStore backend a Facade mounts.
type LogStoreKind string

const (
	LogStoreMemory LogStoreKind = "memory"
	LogStoreBadger LogStoreKind = "badger"
	LogStoreFile   LogStoreKind = "file"
)

// Config is FactorDB's runtime configuration.
type Config struct {
	LogStore LogStoreKind `mapstructure:"log_store"`

	// BadgerDir is the data directory for LogStoreBadger.
	BadgerDir string `mapstructure:"badger_dir"`

	// FileLogPath is the append-only log file for LogStoreFile.
	FileLogPath string `mapstructure:"file_log_path"`

	// MetricsProvider names a metrics.GlobalMetrics provider ("" or
	// "prometheus").
	MetricsProvider string `mapstructure:"metrics_provider"`

	// InternerInitialCapacity is validated to be non-negative. interner.New
	// takes no size argument, so no package in this module reads it.
	InternerInitialCapacity int `mapstructure:"interner_initial_capacity"`

	// OTLPEndpoint is the OpenTelemetry collector gRPC endpoint; empty
	// disables tracing entirely.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_store", string(LogStoreMemory))
	v.SetDefault("badger_dir", "./factordb-data")
	v.SetDefault("file_log_path", "./factordb.log")
	v.SetDefault("metrics_provider", "")
	v.SetDefault("interner_initial_capacity", 1024)
	v.SetDefault("otlp_endpoint", "")
}

// Load reads configuration from an optional file at path (if non-empty)
// layered over built-in defaults, then over environment variables
// prefixed FACTORDB_ (e.g. FACTORDB_LOG_STORE=badger), and validates the
// result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("factordb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c Config) validate() error {
	switch c.LogStore {
	case LogStoreMemory, LogStoreBadger, LogStoreFile:
	default:
		return fmt.Errorf("config: unknown log_store %q", c.LogStore)
	}
	if c.LogStore == LogStoreBadger && c.BadgerDir == "" {
		return fmt.Errorf("config: badger_dir is required when log_store is %q", LogStoreBadger)
	}
	if c.LogStore == LogStoreFile && c.FileLogPath == "" {
		return fmt.Errorf("config: file_log_path is required when log_store is %q", LogStoreFile)
	}
	if c.InternerInitialCapacity < 0 {
		return fmt.Errorf("config: interner_initial_capacity must be >= 0, got %d", c.InternerInitialCapacity)
	}
	return nil
}
