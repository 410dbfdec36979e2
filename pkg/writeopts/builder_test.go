package writeopts

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/qparquet/pkg/errors"
)

func TestBuild_Empty(t *testing.T) {
	cfg, err := Build(WriteConfig{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Compression())
	enabled, set := cfg.DictionaryDefault()
	assert.True(t, enabled)
	assert.False(t, set)
	assert.Equal(t, parquet.DefaultMaxRowGroupLen, cfg.RowGroupLength())
	assert.False(t, cfg.UseThreads())
	assert.False(t, cfg.StoreSchema())
}

func TestBuild_AllOptions(t *testing.T) {
	cfg, err := Build(WriteConfig{}, Options{
		{Name: OptCompression, Value: "zstd"},
		{Name: OptDisableDict, Value: true},
		{Name: OptEnableDict, Value: []string{"sym", "venue"}},
		{Name: OptChunkSize, Value: int64(1000)},
		{Name: OptUseThreads, Value: true},
		{Name: OptStoreSchema, Value: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "zstd", cfg.Compression())
	enabled, set := cfg.DictionaryDefault()
	assert.False(t, enabled)
	assert.True(t, set)
	assert.True(t, cfg.DictionaryFor("sym"))
	assert.True(t, cfg.DictionaryFor("venue"))
	assert.False(t, cfg.DictionaryFor("price"))
	assert.Equal(t, int64(1000), cfg.RowGroupLength())
	assert.True(t, cfg.UseThreads())
	assert.True(t, cfg.StoreSchema())

	props := cfg.WriterProperties(memory.DefaultAllocator)
	assert.Equal(t, compress.Codecs.Zstd, props.Compression())
	assert.Equal(t, int64(1000), props.MaxRowGroupLength())
	assert.False(t, props.DictionaryEnabled())
	assert.True(t, props.DictionaryEnabledFor("sym"))

	arrowProps := cfg.ArrowWriterProperties(memory.DefaultAllocator)
	assert.NotNil(t, arrowProps)
}

func TestBuild_Compression(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr string
	}{
		{name: "snappy", value: "snappy", want: "snappy"},
		{name: "zstd", value: "zstd", want: "zstd"},
		{name: "gzip", value: "gzip", want: "gzip"},
		{name: "lz4 rejected", value: "lz4", wantErr: "unsupported compression: lz4"},
		{name: "upper case rejected", value: "SNAPPY", wantErr: "unsupported compression: SNAPPY"},
		{name: "non string", value: int64(3), wantErr: "unsupported compression: 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Build(WriteConfig{}, Options{{Name: OptCompression, Value: tt.value}})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Compression())
		})
	}
}

func TestBuild_UnknownOptionAbortsFold(t *testing.T) {
	_, err := Build(WriteConfig{}, Options{
		{Name: OptCompression, Value: "gzip"},
		{Name: "bogus", Value: true},
		{Name: "also_bogus", Value: true},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "invalid option: bogus")
}

func TestBuild_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "chunk_size string", opt: Option{Name: OptChunkSize, Value: "big"}},
		{name: "chunk_size zero", opt: Option{Name: OptChunkSize, Value: 0}},
		{name: "chunk_size negative", opt: Option{Name: OptChunkSize, Value: int64(-5)}},
		{name: "chunk_size fraction", opt: Option{Name: OptChunkSize, Value: 2.5}},
		{name: "use_threads number", opt: Option{Name: OptUseThreads, Value: 1}},
		{name: "store_schema string", opt: Option{Name: OptStoreSchema, Value: "yes"}},
		{name: "enable_dict number", opt: Option{Name: OptEnableDict, Value: 7}},
		{name: "disable_dict mixed list", opt: Option{Name: OptDisableDict, Value: []any{"a", 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(WriteConfig{}, Options{tt.opt})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

			cfg, err := Build(WriteConfig{}, Options{tt.opt}, Lenient())
			require.NoError(t, err)
			assert.Equal(t, WriteConfig{}.RowGroupLength(), cfg.RowGroupLength())
			assert.False(t, cfg.UseThreads())
			assert.False(t, cfg.StoreSchema())
		})
	}
}

func TestBuild_LenientStillRejectsNames(t *testing.T) {
	_, err := Build(WriteConfig{}, Options{{Name: "bogus", Value: 1}}, Lenient())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid option: bogus")
}

func TestBuild_DictionaryFalseIsNoop(t *testing.T) {
	cfg, err := Build(WriteConfig{}, Options{
		{Name: OptDisableDict, Value: true},
		{Name: OptEnableDict, Value: false},
	})
	require.NoError(t, err)

	enabled, set := cfg.DictionaryDefault()
	assert.True(t, set)
	assert.False(t, enabled)
}

func TestBuild_LaterColumnSettingWins(t *testing.T) {
	cfg, err := Build(WriteConfig{}, Options{
		{Name: OptEnableDict, Value: "sym"},
		{Name: OptDisableDict, Value: []any{"sym"}},
	})
	require.NoError(t, err)
	assert.False(t, cfg.DictionaryFor("sym"))
}

func TestBuild_BaseIsNotModified(t *testing.T) {
	base, err := Build(WriteConfig{}, Options{{Name: OptEnableDict, Value: "a"}})
	require.NoError(t, err)

	derived, err := Build(base, Options{{Name: OptDisableDict, Value: "b"}})
	require.NoError(t, err)

	assert.True(t, base.DictionaryFor("a"))
	assert.True(t, base.DictionaryFor("b"))
	assert.False(t, derived.DictionaryFor("b"))
}

func TestBuild_ChunkSizeNumericShapes(t *testing.T) {
	for _, v := range []any{int(10), int32(10), int64(10), uint16(10), float64(10)} {
		cfg, err := Build(WriteConfig{}, Options{{Name: OptChunkSize, Value: v}})
		require.NoError(t, err, "%T", v)
		assert.Equal(t, int64(10), cfg.MaxRowGroupLength())
	}
}

func TestFromMap_SortsNames(t *testing.T) {
	opts := FromMap(map[string]any{"use_threads": true, "compression": "gzip", "chunk_size": 5})
	require.Len(t, opts, 3)
	assert.Equal(t, []string{"chunk_size", "compression", "use_threads"},
		[]string{opts[0].Name, opts[1].Name, opts[2].Name})
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in   string
		want Option
	}{
		{"use_threads=true", Option{Name: "use_threads", Value: true}},
		{"store_schema=false", Option{Name: "store_schema", Value: false}},
		{"chunk_size=4096", Option{Name: "chunk_size", Value: int64(4096)}},
		{"compression=zstd", Option{Name: "compression", Value: "zstd"}},
		{"enable_dict=sym,venue", Option{Name: "enable_dict", Value: []string{"sym", "venue"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlag(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFlag("novalue")
	assert.Error(t, err)
}
