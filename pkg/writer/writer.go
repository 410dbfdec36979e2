// Package writer persists engine tables as Parquet.
//
// A write runs through Validating, Converting and Writing and ends in Done
// or Failed. Validation covers the argument shapes, the partition columns
// and the write options, so a bad option never leaves a file behind.
// Conversion maps the table to an Arrow record, and writing produces either
// one file at the destination or a Hive-partitioned tree rooted there.
package writer

import (
	"runtime"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qparquet/pkg/config"
	"github.com/ajitpratap0/qparquet/pkg/convert"
	"github.com/ajitpratap0/qparquet/pkg/logger"
	"github.com/ajitpratap0/qparquet/pkg/partition"
	"github.com/ajitpratap0/qparquet/pkg/storage"
	"github.com/ajitpratap0/qparquet/pkg/writeopts"
)

// Writer writes tables to Parquet. It holds no per-call state and may be
// used from several goroutines, though concurrent writes to the same
// destination are not coordinated.
type Writer struct {
	mem            memory.Allocator
	logger         *zap.Logger
	resolver       convert.EnumResolver
	defaults       writeopts.Options
	buildOpts      []writeopts.BuildOption
	storage        storage.Config
	fs             storage.FileSystem
	maxRowsPerFile int
	maxParallel    int
	stateHook      func(State)
}

// Option configures a Writer
type Option func(*Writer)

// WithAllocator sets the allocator for Arrow buffers
func WithAllocator(mem memory.Allocator) Option {
	return func(w *Writer) { w.mem = mem }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithEnumResolver sets the resolver for enumerated columns
func WithEnumResolver(r convert.EnumResolver) Option {
	return func(w *Writer) { w.resolver = r }
}

// WithDefaultOptions sets options applied before each call's options
func WithDefaultOptions(opts writeopts.Options) Option {
	return func(w *Writer) { w.defaults = opts }
}

// WithLenientOptions ignores option values of the wrong shape
func WithLenientOptions() Option {
	return func(w *Writer) { w.buildOpts = append(w.buildOpts, writeopts.Lenient()) }
}

// WithStorageConfig sets object-store client settings
func WithStorageConfig(cfg storage.Config) Option {
	return func(w *Writer) { w.storage = cfg }
}

// WithFileSystem writes every destination through fs. Paths are passed to
// fs as given, without scheme resolution, and fs is not closed by the Writer.
func WithFileSystem(fs storage.FileSystem) Option {
	return func(w *Writer) { w.fs = fs }
}

// WithMaxRowsPerFile caps rows per file inside a partition directory
func WithMaxRowsPerFile(n int) Option {
	return func(w *Writer) { w.maxRowsPerFile = n }
}

// WithMaxParallelFiles bounds concurrent partition file writes when
// use_threads is on
func WithMaxParallelFiles(n int) Option {
	return func(w *Writer) { w.maxParallel = n }
}

// WithStateHook registers a function called on every state transition
func WithStateHook(fn func(State)) Option {
	return func(w *Writer) { w.stateHook = fn }
}

// New creates a Writer
func New(opts ...Option) *Writer {
	w := &Writer{
		mem:         memory.DefaultAllocator,
		logger:      logger.Get(),
		maxParallel: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.maxParallel <= 0 {
		w.maxParallel = 1
	}
	return w
}

// NewFromConfig creates a Writer from the writer and storage sections of cfg.
// opts are applied after the configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Writer {
	base := []Option{
		WithDefaultOptions(cfg.WriteOptions()),
		WithStorageConfig(cfg.Storage),
		WithMaxRowsPerFile(cfg.Writer.MaxRowsPerFile),
	}
	if cfg.Writer.MaxParallelFiles > 0 {
		base = append(base, WithMaxParallelFiles(cfg.Writer.MaxParallelFiles))
	}
	if cfg.Writer.Lenient {
		base = append(base, WithLenientOptions())
	}
	return New(append(base, opts...)...)
}

func (w *Writer) mapper(l *zap.Logger) *convert.Mapper {
	opts := []convert.Option{convert.WithAllocator(w.mem), convert.WithLogger(l)}
	if w.resolver != nil {
		opts = append(opts, convert.WithEnumResolver(w.resolver))
	}
	return convert.NewMapper(opts...)
}

func (w *Writer) planner() *partition.Planner {
	return partition.NewPlanner(
		partition.WithAllocator(w.mem),
		partition.WithMaxRowsPerFile(w.maxRowsPerFile),
	)
}
