// Package config holds the qparquet configuration.
//
// The configuration is organized into sections:
//   - Logging: level, encoding and outputs of the global zap logger
//   - Writer: default write options and partition file layout
//   - Storage: object-store client settings
//   - Observability: tracing and metrics
//
// Example usage:
//
//	cfg, err := config.FromFile("qparquet.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"runtime"

	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/qparquet/pkg/logger"
	"github.com/ajitpratap0/qparquet/pkg/observability"
	"github.com/ajitpratap0/qparquet/pkg/storage"
	"github.com/ajitpratap0/qparquet/pkg/writeopts"
)

// Config is the complete qparquet configuration
type Config struct {
	Logging       logger.Config       `yaml:"logging" json:"logging" mapstructure:"logging"`
	Writer        WriterConfig        `yaml:"writer" json:"writer" mapstructure:"writer"`
	Storage       storage.Config      `yaml:"storage" json:"storage" mapstructure:"storage"`
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// WriterConfig contains defaults for every write
type WriterConfig struct {
	// Options are applied before the options of each call
	Options map[string]any `yaml:"options" json:"options" mapstructure:"options"`
	// Lenient ignores option values of the wrong shape instead of failing
	Lenient bool `yaml:"lenient" json:"lenient" mapstructure:"lenient"`
	// MaxRowsPerFile splits partition directories into several files (0 = unlimited)
	MaxRowsPerFile int `yaml:"max_rows_per_file" json:"max_rows_per_file" mapstructure:"max_rows_per_file"`
	// MaxParallelFiles bounds concurrent partition file writes under use_threads
	MaxParallelFiles int `yaml:"max_parallel_files" json:"max_parallel_files" mapstructure:"max_parallel_files"`
}

// ObservabilityConfig contains tracing and metrics settings
type ObservabilityConfig struct {
	Tracing observability.TracingConfig `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
	// MetricsFile, when set, receives a Prometheus textfile dump after each CLI run
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Logging: logger.DefaultConfig(),
		Writer: WriterConfig{
			MaxParallelFiles: runtime.NumCPU(),
		},
		Observability: ObservabilityConfig{
			Tracing: observability.DefaultTracingConfig(),
		},
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
		}
	}
	switch c.Logging.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log encoding %q", c.Logging.Encoding)
	}

	if c.Writer.MaxRowsPerFile < 0 {
		return fmt.Errorf("max_rows_per_file must be non-negative")
	}
	if c.Writer.MaxParallelFiles < 0 {
		return fmt.Errorf("max_parallel_files must be non-negative")
	}
	for name := range c.Writer.Options {
		if !writeopts.IsAllowed(name) {
			return fmt.Errorf("invalid option: %s", name)
		}
	}

	rate := c.Observability.Tracing.SamplingRate
	if rate < 0 || rate > 1 {
		return fmt.Errorf("sampling_rate must be between 0 and 1, got %v", rate)
	}
	return nil
}

// WriteOptions returns the configured default write options
func (c *Config) WriteOptions() writeopts.Options {
	return writeopts.FromMap(c.Writer.Options)
}
