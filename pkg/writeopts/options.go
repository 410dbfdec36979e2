// Package writeopts turns the flat option set of a write call into an
// immutable WriteConfig and from there into Parquet writer properties.
//
// Six option names are recognised:
//
//	compression   "snappy" | "zstd" | "gzip"
//	enable_dict   true | column name | list of column names
//	disable_dict  true | column name | list of column names
//	chunk_size    positive integer, maximum rows per row group
//	use_threads   bool
//	store_schema  bool
//
// Options are folded in order and the first invalid one aborts the build.
package writeopts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Recognised option names
const (
	OptCompression = "compression"
	OptEnableDict  = "enable_dict"
	OptDisableDict = "disable_dict"
	OptChunkSize   = "chunk_size"
	OptUseThreads  = "use_threads"
	OptStoreSchema = "store_schema"
)

var allowedOptions = map[string]struct{}{
	OptCompression: {},
	OptEnableDict:  {},
	OptDisableDict: {},
	OptChunkSize:   {},
	OptUseThreads:  {},
	OptStoreSchema: {},
}

// IsAllowed reports whether name is one of the recognised option names
func IsAllowed(name string) bool {
	_, ok := allowedOptions[name]
	return ok
}

// Option is one name/value pair of a write call
type Option struct {
	Name  string
	Value any
}

// Options is an ordered option set
type Options []Option

// FromMap converts a map into Options. Maps carry no order, so names are
// sorted to keep the fold deterministic.
func FromMap(m map[string]any) Options {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make(Options, 0, len(m))
	for _, name := range names {
		opts = append(opts, Option{Name: name, Value: m[name]})
	}
	return opts
}

// ParseFlag parses a command line option of the form name=value. Values
// "true" and "false" become booleans, integers become int64, values with a
// comma become a list of names and anything else stays a string.
func ParseFlag(s string) (Option, error) {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Option{}, fmt.Errorf("option %q is not of the form name=value", s)
	}
	raw = strings.TrimSpace(raw)
	return Option{Name: name, Value: parseFlagValue(raw)}, nil
}

func parseFlagValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				names = append(names, p)
			}
		}
		return names
	}
	return raw
}
