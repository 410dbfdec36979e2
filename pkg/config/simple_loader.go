package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment variables read by LoadViper
const EnvPrefix = "QPARQUET"

// FromFile reads a YAML file over the defaults and validates the result.
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing.
func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteYAML writes c as YAML, the format FromFile and LoadViper read
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// LoadViper reads an optional YAML file and QPARQUET_* environment
// variables over the defaults. Nested keys use underscores in the
// environment: QPARQUET_LOGGING_LEVEL sets logging.level.
func LoadViper(filePath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if filePath != "" {
		v.SetConfigFile(filePath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can see it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("writer.lenient", d.Writer.Lenient)
	v.SetDefault("writer.max_rows_per_file", d.Writer.MaxRowsPerFile)
	v.SetDefault("writer.max_parallel_files", d.Writer.MaxParallelFiles)
	v.SetDefault("storage.s3.region", d.Storage.S3.Region)
	v.SetDefault("storage.s3.endpoint", d.Storage.S3.Endpoint)
	v.SetDefault("storage.s3.use_path_style", d.Storage.S3.UsePathStyle)
	v.SetDefault("storage.s3.part_size", d.Storage.S3.PartSize)
	v.SetDefault("storage.s3.concurrency", d.Storage.S3.Concurrency)
	v.SetDefault("storage.gcs.credentials_file", d.Storage.GCS.CredentialsFile)
	v.SetDefault("storage.gcs.chunk_size", d.Storage.GCS.ChunkSize)
	v.SetDefault("observability.tracing.enabled", d.Observability.Tracing.Enabled)
	v.SetDefault("observability.tracing.service_name", d.Observability.Tracing.ServiceName)
	v.SetDefault("observability.tracing.sampling_rate", d.Observability.Tracing.SamplingRate)
	v.SetDefault("observability.tracing.exporter", d.Observability.Tracing.Exporter)
	v.SetDefault("observability.metrics_file", d.Observability.MetricsFile)
}

// expandEnv replaces ${VAR} with the value of VAR and ${VAR:-default} with
// default when VAR is unset or empty. An unterminated reference is kept.
func expandEnv(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.IndexByte(content[start:], '}')
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		name, def, hasDef := strings.Cut(content[start+2:end], ":-")
		if v := os.Getenv(name); v != "" || !hasDef {
			b.WriteString(v)
		} else {
			b.WriteString(def)
		}
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
