// Package qtable models the column-oriented tables produced by the embedded
// analytic engine: one typed vector per column, with per-kind null sentinels
// and a 2000-01-01 epoch for temporal values.
//
// A Column is a closed set of concrete vector types. Code that needs to act
// on every kind switches over the concrete types and treats anything else as
// unsupported.
package qtable

import (
	"fmt"
	"sort"
)

// Kind is the type tag of a source column
type Kind int8

const (
	// KindGeneralList is an untyped list; valid for export only when every item is a byte vector
	KindGeneralList Kind = 0
	// KindBoolean is a vector of booleans
	KindBoolean Kind = 1
	// KindShort is a vector of 16-bit integers
	KindShort Kind = 5
	// KindInt is a vector of 32-bit integers
	KindInt Kind = 6
	// KindLong is a vector of 64-bit integers
	KindLong Kind = 7
	// KindReal is a vector of 32-bit floats
	KindReal Kind = 8
	// KindFloat is a vector of 64-bit floats
	KindFloat Kind = 9
	// KindSymbol is a vector of interned strings
	KindSymbol Kind = 11
	// KindTimestamp is a vector of nanoseconds since 2000-01-01
	KindTimestamp Kind = 12
	// KindDate is a vector of days since 2000-01-01
	KindDate Kind = 14
	// KindTimespan is a vector of nanosecond durations
	KindTimespan Kind = 16
	// KindTime is a vector of milliseconds since midnight
	KindTime Kind = 19
	// KindEnum is a vector of indices into a named symbol domain
	KindEnum Kind = 20
	// KindAnyMap is a mapped general list; the same rules as KindGeneralList apply
	KindAnyMap Kind = 77
)

var kindNames = map[Kind]string{
	KindGeneralList: "list",
	KindBoolean:     "boolean",
	KindShort:       "short",
	KindInt:         "int",
	KindLong:        "long",
	KindReal:        "real",
	KindFloat:       "float",
	KindSymbol:      "symbol",
	KindTimestamp:   "timestamp",
	KindDate:        "date",
	KindTimespan:    "timespan",
	KindTime:        "time",
	KindEnum:        "enum",
	KindAnyMap:      "anymap",
}

// String returns the lower-case name of the kind, or its numeric tag when unknown
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name back to its tag
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown column kind: %q", name)
}

// Kinds returns every known kind in ascending tag order
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
