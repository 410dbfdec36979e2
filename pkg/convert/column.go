package convert

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qparquet/pkg/errors"
	"github.com/ajitpratap0/qparquet/pkg/qtable"
)

// valueAppender is the subset of the typed Arrow builders used for sentinel columns
type valueAppender[T any] interface {
	array.Builder
	Append(T)
}

// appendWithSentinel appends src to b, turning values for which isNull holds
// into nulls and passing every other value through conv.
func appendWithSentinel[S, T any, B valueAppender[T]](b B, src []S, isNull func(S) bool, conv func(S) T) {
	b.Reserve(len(src))
	for _, v := range src {
		if isNull(v) {
			b.AppendNull()
			continue
		}
		b.Append(conv(v))
	}
}

func same[T any](v T) T { return v }

// MapColumn converts one source column of n rows into an Arrow field and
// array. The caller owns the returned array and must release it.
func (m *Mapper) MapColumn(ctx context.Context, name string, col qtable.Column, n int) (arrow.Field, arrow.Array, error) {
	if col == nil {
		return arrow.Field{}, nil, errors.New(errors.ErrorTypeData, "unsupported column type: nil").
			WithDetail("column", name)
	}
	if col.Len() != n {
		return arrow.Field{}, nil, errors.Newf(errors.ErrorTypeData, "column %s has %d values, expected %d", name, col.Len(), n).
			WithDetail("column", name)
	}

	// Enumerations are resolved once for the whole column, then mapped as symbols.
	if enum, ok := col.(*qtable.EnumColumn); ok {
		syms, err := m.resolver.Resolve(ctx, enum)
		if err == nil && syms == nil {
			err = fmt.Errorf("resolver returned no symbols for domain %q", enum.Domain)
		}
		if err != nil {
			return arrow.Field{}, nil, errors.Wrap(err, errors.ErrorTypeData, "failed to de-enumerate list").
				WithDetail("column", name).
				WithDetail("domain", enum.Domain)
		}
		if syms.Len() != n {
			return arrow.Field{}, nil, errors.Newf(errors.ErrorTypeData, "de-enumerated column %s has %d values, expected %d", name, syms.Len(), n).
				WithDetail("column", name)
		}
		m.logger.Debug("resolved enumeration",
			zap.String("column", name),
			zap.String("domain", enum.Domain))
		col = syms
	}

	dt, ok := TargetType(col.Kind())
	if !ok {
		return arrow.Field{}, nil, unsupported(name, col.Kind())
	}

	arr, err := m.buildArray(name, col, dt)
	if err != nil {
		return arrow.Field{}, nil, err
	}

	return arrow.Field{Name: name, Type: dt, Nullable: true}, arr, nil
}

func (m *Mapper) buildArray(name string, col qtable.Column, dt arrow.DataType) (arrow.Array, error) {
	switch c := col.(type) {
	case *qtable.BoolColumn:
		b := array.NewBooleanBuilder(m.mem)
		defer b.Release()
		b.AppendValues(c.Values, nil)
		return b.NewArray(), nil

	case *qtable.ShortColumn:
		b := array.NewInt16Builder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullShort, same[int16])
		return b.NewArray(), nil

	case *qtable.IntColumn:
		b := array.NewInt32Builder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullInt, same[int32])
		return b.NewArray(), nil

	case *qtable.LongColumn:
		b := array.NewInt64Builder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullLong, same[int64])
		return b.NewArray(), nil

	case *qtable.RealColumn:
		b := array.NewFloat32Builder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullReal, same[float32])
		return b.NewArray(), nil

	case *qtable.FloatColumn:
		b := array.NewFloat64Builder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullFloat, same[float64])
		return b.NewArray(), nil

	case *qtable.DateColumn:
		b := array.NewDate32Builder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullInt, func(v int32) arrow.Date32 {
			return arrow.Date32(qtable.DateToUnixDays(v))
		})
		return b.NewArray(), nil

	case *qtable.TimestampColumn:
		b := array.NewTimestampBuilder(m.mem, dt.(*arrow.TimestampType))
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullLong, func(v int64) arrow.Timestamp {
			return arrow.Timestamp(qtable.TimestampToUnixNanos(v))
		})
		return b.NewArray(), nil

	case *qtable.TimeColumn:
		b := array.NewTime32Builder(m.mem, dt.(*arrow.Time32Type))
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullInt, func(v int32) arrow.Time32 { return arrow.Time32(v) })
		return b.NewArray(), nil

	case *qtable.TimespanColumn:
		b := array.NewTime64Builder(m.mem, dt.(*arrow.Time64Type))
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullLong, func(v int64) arrow.Time64 { return arrow.Time64(v) })
		return b.NewArray(), nil

	case *qtable.SymbolColumn:
		b := array.NewStringBuilder(m.mem)
		defer b.Release()
		appendWithSentinel(b, c.Values, qtable.IsNullSymbol, same[string])
		return b.NewArray(), nil

	case *qtable.GeneralListColumn:
		return m.buildByteLists(name, c.Items, "general list")

	case *qtable.AnyMapColumn:
		return m.buildByteLists(name, c.Items, "anymap")

	default:
		return nil, unsupported(name, col.Kind())
	}
}

// buildByteLists converts a list of byte vectors into strings. The whole list
// is checked before anything is appended.
func (m *Mapper) buildByteLists(name string, items []any, what string) (arrow.Array, error) {
	for i, item := range items {
		if _, ok := item.([]byte); !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "unsupported %s structure (not string list)", what).
				WithDetail("column", name).
				WithDetail("row", i).
				WithDetail("item_type", typeName(item))
		}
	}

	b := array.NewStringBuilder(m.mem)
	defer b.Release()
	b.Reserve(len(items))
	for _, item := range items {
		b.Append(string(item.([]byte)))
	}
	return b.NewArray(), nil
}

func unsupported(name string, kind qtable.Kind) *errors.Error {
	return errors.Newf(errors.ErrorTypeData, "unsupported column type: %s", kind).
		WithDetail("column", name).
		WithDetail("kind", int(kind))
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
