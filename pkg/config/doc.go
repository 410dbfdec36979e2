// # Loading
//
// Two loaders are provided. FromFile reads YAML with ${VAR_NAME} and
// ${VAR_NAME:-default} substitution:
//
//	logging:
//	  level: debug
//	storage:
//	  s3:
//	    region: ${AWS_REGION:-us-east-1}
//
// LoadViper reads the same file through viper and additionally honours
// QPARQUET_* environment variables, e.g. QPARQUET_WRITER_MAX_ROWS_PER_FILE.
// Config.WriteYAML produces a file either loader accepts.
//
// # Writer defaults
//
// writer.options holds write options applied before the options of every
// call, so a call can override them:
//
//	writer:
//	  options:
//	    compression: zstd
//	    use_threads: true
//	  max_rows_per_file: 1000000
package config
