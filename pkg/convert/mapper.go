package convert

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qparquet/pkg/errors"
	"github.com/ajitpratap0/qparquet/pkg/qtable"
)

// Mapper converts engine tables to Arrow records. A Mapper holds no state
// between calls and may be shared.
type Mapper struct {
	mem      memory.Allocator
	resolver EnumResolver
	logger   *zap.Logger
}

// Option configures a Mapper
type Option func(*Mapper)

// WithAllocator sets the allocator used for Arrow buffers
func WithAllocator(mem memory.Allocator) Option {
	return func(m *Mapper) { m.mem = mem }
}

// WithEnumResolver sets the resolver for enumerated columns. Without one,
// enumerated columns fail to convert.
func WithEnumResolver(r EnumResolver) Option {
	return func(m *Mapper) { m.resolver = r }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Mapper) { m.logger = l }
}

// NewMapper creates a Mapper
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		mem:      memory.DefaultAllocator,
		resolver: noResolver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = noResolver{}
	}
	return m
}

// MapTable converts every column of t, in order, into one Arrow record.
// The first column that fails aborts the conversion and nothing is returned.
// The caller must release the record.
func (m *Mapper) MapTable(ctx context.Context, t *qtable.Table) (arrow.Record, error) {
	if t == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "not a table")
	}

	n := t.NumRows()
	fields := make([]arrow.Field, 0, t.NumCols())
	arrays := make([]arrow.Array, 0, t.NumCols())
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	for _, nc := range t.Columns() {
		field, arr, err := m.MapColumn(ctx, nc.Name, nc.Column, n)
		if err != nil {
			m.logger.Debug("column conversion failed",
				zap.String("column", nc.Name),
				zap.Stringer("kind", kindOf(nc.Column)),
				zap.Error(err))
			return nil, err
		}
		fields = append(fields, field)
		arrays = append(arrays, arr)
	}

	var md *arrow.Metadata
	if len(t.Metadata) > 0 {
		meta := arrow.MetadataFrom(t.Metadata)
		md = &meta
	}
	schema := arrow.NewSchema(fields, md)

	m.logger.Debug("table converted",
		zap.Int("rows", n),
		zap.Int("columns", len(fields)))

	// NewRecord retains the arrays; the deferred release drops our references.
	return array.NewRecord(schema, arrays, int64(n)), nil
}

func kindOf(c qtable.Column) qtable.Kind {
	if c == nil {
		return -1
	}
	return c.Kind()
}
