package writer

import (
	"context"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/qparquet/pkg/errors"
	"github.com/ajitpratap0/qparquet/pkg/logger"
	"github.com/ajitpratap0/qparquet/pkg/metrics"
	"github.com/ajitpratap0/qparquet/pkg/observability"
	"github.com/ajitpratap0/qparquet/pkg/storage"
	"github.com/ajitpratap0/qparquet/pkg/writeopts"
)

const createdBy = "qparquet"

// WriteValues is the dynamic entry point used by host bindings. table must
// be a *qtable.Table, path a non-empty string, partitionColumns nil, a
// string, []string or []any of strings, and options nil, writeopts.Options
// or map[string]any.
func (w *Writer) WriteValues(ctx context.Context, table, path, partitionColumns, options any) error {
	req, err := requestFromValues(table, path, partitionColumns, options)
	if err != nil {
		w.transition(w.logger, StateValidating)
		w.transition(w.logger, StateFailed)
		metrics.ObserveWrite(metrics.ModeFlat, err, 0)
		w.logger.Error("write rejected", zap.Error(err))
		return err
	}
	_, err = w.Write(ctx, req)
	return err
}

// Write validates, converts and writes one table
func (w *Writer) Write(ctx context.Context, req Request) (res Result, err error) {
	timer := metrics.NewTimer()
	l := logger.ForWrite(w.logger, uuid.NewString(), req.Path)
	ctx = logger.NewContext(ctx, l)

	ctx, span := observability.StartSpan(ctx, "qparquet.write",
		attribute.String("destination", req.Path))
	mode := metrics.ModeFlat
	defer func() {
		res.Duration = timer.Stop()
		metrics.ObserveWrite(mode, err, res.Duration)
		observability.EndSpan(span, err)
		if err != nil {
			w.transition(l, StateFailed)
			l.Error("write failed", zap.Error(err), zap.Duration("duration", res.Duration))
			return
		}
		w.transition(l, StateDone)
		l.Info("write completed",
			zap.String("mode", mode),
			zap.Int64("rows", res.Rows),
			zap.Int("columns", res.Columns),
			zap.Int("files", len(res.Files)),
			zap.Duration("duration", res.Duration))
	}()

	// Validating
	w.transition(l, StateValidating)
	stage := time.Now()
	if err = req.validate(); err != nil {
		return res, err
	}
	if len(req.PartitionColumns) > 0 {
		mode = metrics.ModePartitioned
	}
	cfg, err := w.buildConfig(req.Options)
	if err != nil {
		return res, err
	}
	metrics.ObserveStage(metrics.StageValidate, time.Since(stage))

	// Converting
	w.transition(l, StateConverting)
	stage = time.Now()
	cctx, cspan := observability.StartSpan(ctx, "qparquet.convert",
		attribute.Int("columns", req.Table.NumCols()),
		attribute.Int("rows", req.Table.NumRows()))
	rec, err := w.mapper(l).MapTable(cctx, req.Table)
	observability.EndSpan(cspan, err)
	if err != nil {
		return res, err
	}
	defer rec.Release()
	metrics.ObserveStage(metrics.StageConvert, time.Since(stage))

	res.Rows = rec.NumRows()
	res.Columns = int(rec.NumCols())

	// Writing
	w.transition(l, StateWriting)
	stage = time.Now()
	wctx, wspan := observability.StartSpan(ctx, "qparquet.write_files",
		attribute.String("mode", mode))
	fs, root := w.fs, req.Path
	if fs == nil {
		fs, root, err = storage.FromURIOrPath(wctx, req.Path, w.storage)
		if err != nil {
			observability.EndSpan(wspan, err)
			return res, err
		}
		defer fs.Close()
	}

	if mode == metrics.ModePartitioned {
		err = w.writePartitioned(wctx, l, fs, root, rec, req.PartitionColumns, cfg, &res)
	} else {
		err = w.writeFile(wctx, fs, root, rec, cfg)
		if err == nil {
			res.Files = []string{root}
		}
	}
	observability.EndSpan(wspan, err)
	if err != nil {
		return res, err
	}
	metrics.RowsWritten.WithLabelValues(mode).Add(float64(res.Rows))
	metrics.ObserveStage(metrics.StageWrite, time.Since(stage))

	return res, nil
}

func (w *Writer) buildConfig(opts writeopts.Options) (writeopts.WriteConfig, error) {
	cfg, err := writeopts.Build(writeopts.WriteConfig{}, w.defaults, w.buildOpts...)
	if err != nil {
		return cfg, err
	}
	return writeopts.Build(cfg, opts, w.buildOpts...)
}

func (w *Writer) transition(l *zap.Logger, s State) {
	l.Debug("write state", zap.Stringer("state", s))
	if w.stateHook != nil {
		w.stateHook(s)
	}
}

// writeFile writes rec as one Parquet file at name. On any failure the
// output is aborted so no partial file is published.
func (w *Writer) writeFile(ctx context.Context, fs storage.FileSystem, name string, rec arrow.Record, cfg writeopts.WriteConfig) (err error) {
	out, err := fs.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if aerr := out.Abort(err); aerr != nil {
			logger.FromContext(ctx).Warn("failed to discard output",
				zap.String("path", name), zap.Error(aerr))
		}
	}()

	props := cfg.WriterProperties(w.mem, parquet.WithCreatedBy(createdBy))
	fw, err := pqarrow.NewFileWriter(rec.Schema(), out, props, cfg.ArrowWriterProperties(w.mem))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create parquet writer").
			WithDetail("path", name)
	}
	if err = fw.Write(rec); err != nil {
		err = errors.Wrap(err, errors.ErrorTypeFile, "failed to write parquet file").
			WithDetail("path", name)
		// fw.Close closes out, so abort first
		_ = out.Abort(err)
		_ = fw.Close()
		return err
	}
	if err = fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close parquet file").
			WithDetail("path", name)
	}
	if err = out.Close(); err != nil {
		return err
	}

	metrics.FilesWritten.WithLabelValues(fs.Scheme()).Inc()
	return nil
}

func (w *Writer) writePartitioned(ctx context.Context, l *zap.Logger, fs storage.FileSystem, root string,
	rec arrow.Record, columns []string, cfg writeopts.WriteConfig, res *Result) error {
	plan, err := w.planner().Plan(ctx, rec, columns)
	if err != nil {
		return err
	}
	defer plan.Release()

	res.Partitions = len(plan.Groups)
	metrics.PartitionsPlanned.Observe(float64(len(plan.Groups)))
	l.Debug("partition plan",
		zap.Strings("columns", plan.Columns),
		zap.Int("partitions", len(plan.Groups)),
		zap.Int("files", len(plan.Files)))

	names := make([]string, len(plan.Files))
	writeOne := func(ctx context.Context, i int) error {
		f := plan.Files[i]
		part, err := plan.Record(ctx, f)
		if err != nil {
			return err
		}
		defer part.Release()

		names[i] = fs.Join(root, f.Dir, f.Name)
		return w.writeFile(ctx, fs, names[i], part, cfg)
	}

	if cfg.UseThreads() && len(plan.Files) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.maxParallel)
		for i := range plan.Files {
			g.Go(func() error { return writeOne(gctx, i) })
		}
		err = g.Wait()
	} else {
		for i := range plan.Files {
			if err = writeOne(ctx, i); err != nil {
				break
			}
		}
	}
	if err != nil {
		return err
	}

	res.Files = names
	return nil
}
