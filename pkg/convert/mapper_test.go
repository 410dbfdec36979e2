package convert

import (
	"context"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/qparquet/pkg/errors"
	"github.com/ajitpratap0/qparquet/pkg/qtable"
	"github.com/ajitpratap0/qparquet/pkg/testutil"
)

func newTestMapper(t *testing.T, opts ...Option) (*Mapper, *memory.CheckedAllocator) {
	t.Helper()
	mem := testutil.CheckedAllocator(t)
	base := []Option{WithAllocator(mem), WithLogger(testutil.TestLogger(t))}
	return NewMapper(append(base, opts...)...), mem
}

func mapOne(t *testing.T, m *Mapper, col qtable.Column) arrow.Record {
	t.Helper()
	rec, err := m.MapTable(context.Background(), qtable.MustTable(qtable.Col("c", col)))
	require.NoError(t, err)
	t.Cleanup(rec.Release)
	return rec
}

func TestTargetType(t *testing.T) {
	tests := []struct {
		kind qtable.Kind
		want arrow.DataType
	}{
		{qtable.KindBoolean, arrow.FixedWidthTypes.Boolean},
		{qtable.KindShort, arrow.PrimitiveTypes.Int16},
		{qtable.KindInt, arrow.PrimitiveTypes.Int32},
		{qtable.KindLong, arrow.PrimitiveTypes.Int64},
		{qtable.KindReal, arrow.PrimitiveTypes.Float32},
		{qtable.KindFloat, arrow.PrimitiveTypes.Float64},
		{qtable.KindDate, arrow.FixedWidthTypes.Date32},
		{qtable.KindTimestamp, &arrow.TimestampType{Unit: arrow.Nanosecond}},
		{qtable.KindTime, &arrow.Time32Type{Unit: arrow.Millisecond}},
		{qtable.KindTimespan, &arrow.Time64Type{Unit: arrow.Nanosecond}},
		{qtable.KindSymbol, arrow.BinaryTypes.String},
		{qtable.KindEnum, arrow.BinaryTypes.String},
		{qtable.KindGeneralList, arrow.BinaryTypes.String},
		{qtable.KindAnyMap, arrow.BinaryTypes.String},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, ok := TargetType(tt.kind)
			require.True(t, ok)
			assert.True(t, arrow.TypeEqual(tt.want, got), "got %s", got)
		})
	}

	_, ok := TargetType(qtable.Kind(2))
	assert.False(t, ok)
}

func TestMapTable_Nulls(t *testing.T) {
	m, _ := newTestMapper(t)

	t.Run("short", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.ShortColumn{Values: []int16{1, qtable.NullShort, -3}})
		arr := rec.Column(0).(*array.Int16)
		assert.Equal(t, 1, arr.NullN())
		assert.True(t, arr.IsNull(1))
		assert.Equal(t, int16(-3), arr.Value(2))
	})

	t.Run("int", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.IntColumn{Values: []int32{qtable.NullInt, 7}})
		arr := rec.Column(0).(*array.Int32)
		assert.True(t, arr.IsNull(0))
		assert.Equal(t, int32(7), arr.Value(1))
	})

	t.Run("long", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.LongColumn{Values: []int64{math.MaxInt64, qtable.NullLong}})
		arr := rec.Column(0).(*array.Int64)
		assert.Equal(t, int64(math.MaxInt64), arr.Value(0))
		assert.True(t, arr.IsNull(1))
	})

	t.Run("real", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.RealColumn{Values: []float32{1.5, qtable.NullReal}})
		arr := rec.Column(0).(*array.Float32)
		assert.Equal(t, float32(1.5), arr.Value(0))
		assert.True(t, arr.IsNull(1))
	})

	t.Run("float", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.FloatColumn{Values: []float64{qtable.NullFloat, 2.25, math.Inf(1)}})
		arr := rec.Column(0).(*array.Float64)
		assert.True(t, arr.IsNull(0))
		assert.Equal(t, 2.25, arr.Value(1))
		assert.True(t, arr.IsValid(2))
	})

	t.Run("symbol", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.SymbolColumn{Values: []string{"a", "", "c"}})
		arr := rec.Column(0).(*array.String)
		assert.Equal(t, "a", arr.Value(0))
		assert.True(t, arr.IsNull(1))
		assert.Equal(t, "c", arr.Value(2))
	})

	t.Run("boolean has no null", func(t *testing.T) {
		rec := mapOne(t, m, &qtable.BoolColumn{Values: []bool{true, false}})
		arr := rec.Column(0).(*array.Boolean)
		assert.Zero(t, arr.NullN())
		assert.True(t, arr.Value(0))
		assert.False(t, arr.Value(1))
	})
}

func TestMapTable_DateEpoch(t *testing.T) {
	m, _ := newTestMapper(t)
	rec := mapOne(t, m, &qtable.DateColumn{Values: []int32{0, -10957, qtable.NullDate, 366}})

	arr := rec.Column(0).(*array.Date32)
	assert.Equal(t, arrow.Date32(10957), arr.Value(0))
	assert.Equal(t, arrow.Date32(0), arr.Value(1))
	assert.True(t, arr.IsNull(2))
	assert.Equal(t, arrow.Date32(10957+366), arr.Value(3))
	assert.Equal(t, "2000-01-01", arr.Value(0).FormattedString())
}

func TestMapTable_TimestampEpoch(t *testing.T) {
	m, _ := newTestMapper(t)
	rec := mapOne(t, m, &qtable.TimestampColumn{Values: []int64{0, qtable.NullTimestamp, 1}})

	arr := rec.Column(0).(*array.Timestamp)
	assert.Equal(t, arrow.Timestamp(946684800000000000), arr.Value(0))
	assert.True(t, arr.IsNull(1))
	assert.Equal(t, arrow.Timestamp(946684800000000001), arr.Value(2))
}

func TestMapTable_TimeAndTimespan(t *testing.T) {
	m, _ := newTestMapper(t)
	rec, err := m.MapTable(context.Background(), qtable.MustTable(
		qtable.Col("t", &qtable.TimeColumn{Values: []int32{34200000, qtable.NullTime}}),
		qtable.Col("n", &qtable.TimespanColumn{Values: []int64{qtable.NullTimespan, 1500}}),
	))
	require.NoError(t, err)
	defer rec.Release()

	tm := rec.Column(0).(*array.Time32)
	assert.Equal(t, arrow.Time32(34200000), tm.Value(0))
	assert.True(t, tm.IsNull(1))

	ts := rec.Column(1).(*array.Time64)
	assert.True(t, ts.IsNull(0))
	assert.Equal(t, arrow.Time64(1500), ts.Value(1))
}

func TestMapTable_Enum(t *testing.T) {
	domains := qtable.Domains{"sym": {"AAPL", "MSFT"}}
	m, _ := newTestMapper(t, WithEnumResolver(DomainResolver{Domains: domains}))

	rec := mapOne(t, m, &qtable.EnumColumn{Domain: "sym", Indices: []int64{0, 1, 0, qtable.NullLong}})
	arr := rec.Column(0).(*array.String)
	require.Equal(t, 4, arr.Len())
	assert.Equal(t, "AAPL", arr.Value(0))
	assert.Equal(t, "MSFT", arr.Value(1))
	assert.Equal(t, "AAPL", arr.Value(2))
	assert.True(t, arr.IsNull(3))
}

func TestMapTable_EnumFailure(t *testing.T) {
	t.Run("no resolver", func(t *testing.T) {
		m, _ := newTestMapper(t)
		_, err := m.MapTable(context.Background(), qtable.MustTable(
			qtable.Col("e", &qtable.EnumColumn{Domain: "sym", Indices: []int64{0}}),
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to de-enumerate list")
		assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	})

	t.Run("index out of range", func(t *testing.T) {
		m, _ := newTestMapper(t, WithEnumResolver(DomainResolver{Domains: qtable.Domains{"sym": {"A"}}}))
		_, err := m.MapTable(context.Background(), qtable.MustTable(
			qtable.Col("e", &qtable.EnumColumn{Domain: "sym", Indices: []int64{0, 5}}),
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to de-enumerate list")
	})

	t.Run("resolver returns wrong length", func(t *testing.T) {
		short := EnumResolverFunc(func(context.Context, *qtable.EnumColumn) (*qtable.SymbolColumn, error) {
			return &qtable.SymbolColumn{Values: []string{"x"}}, nil
		})
		m, _ := newTestMapper(t, WithEnumResolver(short))
		_, err := m.MapTable(context.Background(), qtable.MustTable(
			qtable.Col("e", &qtable.EnumColumn{Domain: "sym", Indices: []int64{0, 0}}),
		))
		require.Error(t, err)
	})

	t.Run("resolver returns nothing", func(t *testing.T) {
		empty := EnumResolverFunc(func(context.Context, *qtable.EnumColumn) (*qtable.SymbolColumn, error) {
			return nil, nil
		})
		m, _ := newTestMapper(t, WithEnumResolver(empty))
		_, err := m.MapTable(context.Background(), qtable.MustTable(
			qtable.Col("e", &qtable.EnumColumn{Domain: "sym", Indices: []int64{0}}),
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to de-enumerate list")
		assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	})
}

func TestMapTable_ByteLists(t *testing.T) {
	m, _ := newTestMapper(t)

	rec := mapOne(t, m, &qtable.GeneralListColumn{Items: []any{[]byte("ab"), []byte(""), []byte("c")}})
	arr := rec.Column(0).(*array.String)
	assert.Equal(t, "ab", arr.Value(0))
	assert.Equal(t, "", arr.Value(1))
	assert.True(t, arr.IsValid(1))
	assert.Equal(t, "c", arr.Value(2))

	rec = mapOne(t, m, &qtable.AnyMapColumn{Items: []any{[]byte("k")}})
	assert.Equal(t, "k", rec.Column(0).(*array.String).Value(0))
}

func TestMapTable_ByteListsRejected(t *testing.T) {
	tests := []struct {
		name string
		col  qtable.Column
		want string
	}{
		{
			name: "general list with number",
			col:  &qtable.GeneralListColumn{Items: []any{[]byte("ab"), int64(5)}},
			want: "unsupported general list structure (not string list)",
		},
		{
			name: "general list with nested list",
			col:  &qtable.GeneralListColumn{Items: []any{[]any{[]byte("x")}}},
			want: "unsupported general list structure (not string list)",
		},
		{
			name: "anymap with nil",
			col:  &qtable.AnyMapColumn{Items: []any{nil}},
			want: "unsupported anymap structure (not string list)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMapper(t)
			rec, err := m.MapTable(context.Background(), qtable.MustTable(qtable.Col("l", tt.col)))
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMapTable_FieldOrderAndMetadata(t *testing.T) {
	m, _ := newTestMapper(t)
	tbl := qtable.MustTable(
		qtable.Col("z", &qtable.LongColumn{Values: []int64{1, 2}}),
		qtable.Col("a", &qtable.SymbolColumn{Values: []string{"x", "y"}}),
		qtable.Col("m", &qtable.BoolColumn{Values: []bool{true, true}}),
	)
	tbl.Metadata = map[string]string{"source": "trade"}

	rec, err := m.MapTable(context.Background(), tbl)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
	names := make([]string, 0, rec.NumCols())
	for _, f := range rec.Schema().Fields() {
		names = append(names, f.Name)
		assert.True(t, f.Nullable)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)

	v, ok := rec.Schema().Metadata().GetValue("source")
	assert.True(t, ok)
	assert.Equal(t, "trade", v)
}

func TestMapTable_FailureReleasesEarlierColumns(t *testing.T) {
	m, _ := newTestMapper(t)
	_, err := m.MapTable(context.Background(), qtable.MustTable(
		qtable.Col("ok", &qtable.LongColumn{Values: []int64{1}}),
		qtable.Col("bad", &qtable.GeneralListColumn{Items: []any{1.5}}),
	))
	require.Error(t, err)
	// the checked allocator asserts zero outstanding bytes on cleanup
}

func TestMapTable_Empty(t *testing.T) {
	m, _ := newTestMapper(t)
	rec, err := m.MapTable(context.Background(), qtable.MustTable())
	require.NoError(t, err)
	defer rec.Release()
	assert.Zero(t, rec.NumCols())
	assert.Zero(t, rec.NumRows())

	_, err = m.MapTable(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a table")
}

func TestMapColumn_Rejects(t *testing.T) {
	m, _ := newTestMapper(t)

	_, _, err := m.MapColumn(context.Background(), "x", nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported column type")

	_, _, err = m.MapColumn(context.Background(), "x", &qtable.LongColumn{Values: []int64{1}}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3")
}
