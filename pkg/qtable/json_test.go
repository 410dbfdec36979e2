package qtable

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradeDocument = `{
  "columns": [
    {"name": "date", "type": "date", "values": ["2024-01-02", 8767, null]},
    {"name": "sym",  "type": "enum", "domain": "sym", "values": [0, 1, null]},
    {"name": "px",   "type": "float", "values": [101.5, null, 3]},
    {"name": "qty",  "type": "short", "values": [1, null, -2]},
    {"name": "ts",   "type": "timestamp", "values": ["2000-01-01T00:00:01Z", 5, null]},
    {"name": "tm",   "type": "time", "values": ["09:30:00.250", null, 1]},
    {"name": "span", "type": "timespan", "values": ["1.5s", null, 7]},
    {"name": "ok",   "type": "boolean", "values": [true, null, false]},
    {"name": "note", "type": "list", "values": ["a", "b", [1, 2]]}
  ],
  "domains": {"sym": ["AAPL", "MSFT"]},
  "metadata": {"source": "tick"}
}`

func TestDecodeJSON(t *testing.T) {
	tbl, domains, err := DecodeJSON(strings.NewReader(tradeDocument))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"date", "sym", "px", "qty", "ts", "tm", "span", "ok", "note"}, tbl.ColumnNames())
	assert.Equal(t, map[string]string{"source": "tick"}, tbl.Metadata)
	assert.Equal(t, Domains{"sym": {"AAPL", "MSFT"}}, domains)

	col, ok := tbl.Column("date")
	require.True(t, ok)
	assert.Equal(t, []int32{8767, 8767, NullDate}, col.(*DateColumn).Values)

	col, _ = tbl.Column("sym")
	enum := col.(*EnumColumn)
	assert.Equal(t, "sym", enum.Domain)
	assert.Equal(t, []int64{0, 1, NullLong}, enum.Indices)

	col, _ = tbl.Column("px")
	px := col.(*FloatColumn).Values
	assert.Equal(t, 101.5, px[0])
	assert.True(t, math.IsNaN(px[1]))
	assert.Equal(t, 3.0, px[2])

	col, _ = tbl.Column("qty")
	assert.Equal(t, []int16{1, NullShort, -2}, col.(*ShortColumn).Values)

	col, _ = tbl.Column("ts")
	assert.Equal(t, []int64{int64(time.Second), 5, NullTimestamp}, col.(*TimestampColumn).Values)

	col, _ = tbl.Column("tm")
	assert.Equal(t, []int32{34200250, NullTime, 1}, col.(*TimeColumn).Values)

	col, _ = tbl.Column("span")
	assert.Equal(t, []int64{int64(1500 * time.Millisecond), NullTimespan, 7}, col.(*TimespanColumn).Values)

	col, _ = tbl.Column("ok")
	assert.Equal(t, []bool{true, false, false}, col.(*BoolColumn).Values)

	col, _ = tbl.Column("note")
	items := col.(*GeneralListColumn).Items
	assert.Equal(t, []byte("a"), items[0])
	assert.Equal(t, []byte("b"), items[1])
	assert.Equal(t, []any{float64(1), float64(2)}, items[2])
}

func TestDecodeJSON_EmptyDomains(t *testing.T) {
	_, domains, err := DecodeJSON(strings.NewReader(`{"columns": [{"name": "a", "type": "long", "values": [1]}]}`))
	require.NoError(t, err)
	assert.NotNil(t, domains)
	assert.Empty(t, domains)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"malformed", `{"columns": [`, "failed to decode table document"},
		{"unknown field", `{"columns": [], "rows": 3}`, "failed to decode table document"},
		{"unknown kind", `{"columns": [{"name": "a", "type": "guid", "values": []}]}`, `unknown column kind: "guid"`},
		{"short out of range", `{"columns": [{"name": "a", "type": "short", "values": [40000]}]}`, "value 0: value 40000 out of range"},
		{"int out of range", `{"columns": [{"name": "a", "type": "int", "values": [1, 3000000000]}]}`, "value 1: value 3000000000 out of range"},
		{"bad date", `{"columns": [{"name": "a", "type": "date", "values": ["2024-13-01"]}]}`, `column "a": value 0`},
		{"enum without domain", `{"columns": [{"name": "a", "type": "enum", "values": [0]}]}`, "enum column requires a domain"},
		{"ragged", `{"columns": [{"name": "a", "type": "long", "values": [1]}, {"name": "b", "type": "long", "values": [1, 2]}]}`, `column "b" has 2 rows, expected 1`},
		{"duplicate", `{"columns": [{"name": "a", "type": "long", "values": [1]}, {"name": "a", "type": "long", "values": [2]}]}`, `duplicate column name "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeJSON(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeJSON_SymbolNulls(t *testing.T) {
	tbl, _, err := DecodeJSON(strings.NewReader(`{"columns": [{"name": "s", "type": "symbol", "values": ["x", null]}]}`))
	require.NoError(t, err)
	col, _ := tbl.Column("s")
	assert.Equal(t, []string{"x", NullSymbol}, col.(*SymbolColumn).Values)
}

func TestDecodeJSON_AnyMap(t *testing.T) {
	tbl, _, err := DecodeJSON(strings.NewReader(`{"columns": [{"name": "m", "type": "anymap", "values": ["k"]}]}`))
	require.NoError(t, err)
	col, _ := tbl.Column("m")
	require.IsType(t, &AnyMapColumn{}, col)
	assert.Equal(t, KindAnyMap, col.Kind())
}
