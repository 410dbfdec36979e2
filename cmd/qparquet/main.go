package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qparquet/pkg/config"
	"github.com/ajitpratap0/qparquet/pkg/convert"
	"github.com/ajitpratap0/qparquet/pkg/logger"
	"github.com/ajitpratap0/qparquet/pkg/metrics"
	"github.com/ajitpratap0/qparquet/pkg/observability"
	"github.com/ajitpratap0/qparquet/pkg/qtable"
	"github.com/ajitpratap0/qparquet/pkg/writeopts"
	"github.com/ajitpratap0/qparquet/pkg/writer"
)

var version = "0.1.0"

// writeFlags holds the flags of the write command
type writeFlags struct {
	input      string
	output     string
	configFile string
	partitions []string
	options    []string
	logLevel   string
	metrics    string
	jsonOutput bool
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "qparquet",
		Short: "qparquet - write columnar tables to Parquet",
		Long: `qparquet converts a table document into Apache Arrow and writes it as a
single Parquet file or as a Hive-partitioned directory tree, on local disk,
S3 or Google Cloud Storage.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "qparquet v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "kinds",
		Short: "List column kinds and the Arrow types they map to",
		Run: func(cmd *cobra.Command, args []string) {
			printKinds(cmd.OutOrStdout())
		},
	})

	root.AddCommand(newWriteCommand())
	root.AddCommand(newConfigCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newWriteCommand() *cobra.Command {
	var f writeFlags

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write a table document to Parquet",
		Long: `Write reads a JSON table document and writes it as Parquet.

Example:
  qparquet write --input trades.json --output s3://bucket/trades \
    --partition date --partition sym --option compression=zstd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "-", "Table document to read, - for stdin")
	fl.StringVarP(&f.output, "output", "o", "", "Destination file or directory: local path, s3:// or gs:// (required)")
	fl.StringVarP(&f.configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	fl.StringArrayVarP(&f.partitions, "partition", "p", nil, "Partition column, repeat for nested levels")
	fl.StringArrayVar(&f.options, "option", nil, "Write option as name=value, repeatable")
	fl.StringVar(&f.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	fl.StringVar(&f.metrics, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	fl.BoolVar(&f.jsonOutput, "json", false, "Print the write result as JSON")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func newConfigCommand() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Config prints the configuration a write would use: the defaults, overlaid
by the --config file and QPARQUET_* environment variables. Redirect the output
to start a new configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadViper(configFile)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file (YAML)")
	return cmd
}

func runWrite(cmd *cobra.Command, f writeFlags) error {
	cfg, err := config.LoadViper(f.configFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.metrics != "" {
		cfg.Observability.MetricsFile = f.metrics
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.With(zap.String("component", "qparquet-cli"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("failed to shut down tracing", zap.Error(err))
		}
	}()

	opts := make(writeopts.Options, 0, len(f.options))
	for _, raw := range f.options {
		opt, err := writeopts.ParseFlag(raw)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}

	table, domains, err := readTable(cmd.InOrStdin(), f.input)
	if err != nil {
		return err
	}

	w := writer.NewFromConfig(cfg,
		writer.WithLogger(log),
		writer.WithEnumResolver(convert.DomainResolver{Domains: domains}))

	res, err := w.Write(ctx, writer.Request{
		Table:            table,
		Path:             f.output,
		PartitionColumns: f.partitions,
		Options:          opts,
	})

	if path := cfg.Observability.MetricsFile; path != "" {
		if merr := metrics.WriteTextfile(path); merr != nil {
			log.Warn("failed to write metrics file", zap.String("path", path), zap.Error(merr))
		}
	}
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), f.output, res, f.jsonOutput)
}

func readTable(stdin io.Reader, input string) (*qtable.Table, qtable.Domains, error) {
	r := stdin
	if input != "-" {
		file, err := os.Open(input)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input %s: %w", input, err)
		}
		defer file.Close()
		r = file
	}
	table, domains, err := qtable.DecodeJSON(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read input %s: %w", input, err)
	}
	return table, domains, nil
}

// resultView is the JSON form of a write result
type resultView struct {
	Output     string   `json:"output"`
	Rows       int64    `json:"rows"`
	Columns    int      `json:"columns"`
	Partitions int      `json:"partitions,omitempty"`
	Files      []string `json:"files"`
	DurationMS int64    `json:"duration_ms"`
}

func printResult(out io.Writer, output string, res writer.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resultView{
			Output:     output,
			Rows:       res.Rows,
			Columns:    res.Columns,
			Partitions: res.Partitions,
			Files:      res.Files,
			DurationMS: res.Duration.Milliseconds(),
		})
	}

	if res.Partitioned() {
		fmt.Fprintf(out, "wrote %d rows to %d files in %d partitions under %s (%s)\n",
			res.Rows, len(res.Files), res.Partitions, output, res.Duration)
		return nil
	}
	fmt.Fprintf(out, "wrote %d rows to %s (%s)\n", res.Rows, output, res.Duration)
	return nil
}

func printKinds(out io.Writer) {
	for _, k := range qtable.Kinds() {
		dt, ok := convert.TargetType(k)
		target := "unsupported"
		if ok {
			target = dt.String()
		}
		if k == qtable.KindEnum {
			target = "utf8 (via domain)"
		}
		fmt.Fprintf(out, "%-10s %3d  %s\n", k, int(k), target)
	}
}
