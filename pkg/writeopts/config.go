package writeopts

import (
	"slices"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// codecs maps the accepted compression names to Parquet codecs
var codecs = map[string]compress.Compression{
	"snappy": compress.Codecs.Snappy,
	"zstd":   compress.Codecs.Zstd,
	"gzip":   compress.Codecs.Gzip,
}

// columnDict is one per-column dictionary setting
type columnDict struct {
	column  string
	enabled bool
}

// WriteConfig is a validated writer configuration. The zero value is the
// Parquet default for everything. It is never modified after Build returns.
type WriteConfig struct {
	codec             string
	dictDefault       *bool
	dictColumns       []columnDict
	maxRowGroupLength int64
	useThreads        bool
	storeSchema       bool
}

// Compression returns the configured codec name, or "" for the format default
func (c WriteConfig) Compression() string { return c.codec }

// DictionaryDefault returns the global dictionary setting and whether one was given
func (c WriteConfig) DictionaryDefault() (enabled, set bool) {
	if c.dictDefault == nil {
		return parquet.DefaultDictionaryEnabled, false
	}
	return *c.dictDefault, true
}

// DictionaryFor returns the effective dictionary setting for a column
func (c WriteConfig) DictionaryFor(column string) bool {
	for i := len(c.dictColumns) - 1; i >= 0; i-- {
		if c.dictColumns[i].column == column {
			return c.dictColumns[i].enabled
		}
	}
	enabled, _ := c.DictionaryDefault()
	return enabled
}

// MaxRowGroupLength returns the chunk_size option, or 0 when not given
func (c WriteConfig) MaxRowGroupLength() int64 { return c.maxRowGroupLength }

// RowGroupLength returns the number of rows per row group the writer will use
func (c WriteConfig) RowGroupLength() int64 {
	if c.maxRowGroupLength > 0 {
		return c.maxRowGroupLength
	}
	return parquet.DefaultMaxRowGroupLen
}

// UseThreads reports whether parallel encoding was requested
func (c WriteConfig) UseThreads() bool { return c.useThreads }

// StoreSchema reports whether the Arrow schema is embedded in the file footer
func (c WriteConfig) StoreSchema() bool { return c.storeSchema }

// WriterProperties builds the Parquet writer properties for this config.
// extra properties are applied first so the config always wins.
func (c WriteConfig) WriterProperties(mem memory.Allocator, extra ...parquet.WriterProperty) *parquet.WriterProperties {
	props := slices.Clone(extra)
	if mem != nil {
		props = append(props, parquet.WithAllocator(mem))
	}
	if codec, ok := codecs[c.codec]; ok {
		props = append(props, parquet.WithCompression(codec))
	}
	if c.dictDefault != nil {
		props = append(props, parquet.WithDictionaryDefault(*c.dictDefault))
	}
	for _, cd := range c.dictColumns {
		props = append(props, parquet.WithDictionaryFor(cd.column, cd.enabled))
	}
	props = append(props, parquet.WithMaxRowGroupLength(c.RowGroupLength()))
	return parquet.NewWriterProperties(props...)
}

// ArrowWriterProperties builds the Arrow-level writer properties for this config
func (c WriteConfig) ArrowWriterProperties(mem memory.Allocator) pqarrow.ArrowWriterProperties {
	var opts []pqarrow.WriterOption
	if mem != nil {
		opts = append(opts, pqarrow.WithAllocator(mem))
	}
	if c.storeSchema {
		opts = append(opts, pqarrow.WithStoreSchema())
	}
	return pqarrow.NewArrowWriterProperties(opts...)
}
