package qtable

import "math"

// Null sentinels. Every kind except boolean and the list kinds reserves one
// value of its own width to mean "missing".
const (
	NullShort int16 = math.MinInt16
	NullInt   int32 = math.MinInt32
	NullLong  int64 = math.MinInt64
	NullDate        = NullInt
	NullTime        = NullInt
	// NullTimestamp and NullTimespan share the 64-bit sentinel
	NullTimestamp = NullLong
	NullTimespan  = NullLong
	NullSymbol    = ""
)

// NullReal and NullFloat are the NaN patterns the engine writes for missing
// floats. Any NaN is treated as null, so they are only needed to produce
// nulls, never to test for them.
var (
	NullReal  = float32(math.NaN())
	NullFloat = math.NaN()
)

// IsNullShort reports whether v is the int16 sentinel
func IsNullShort(v int16) bool { return v == NullShort }

// IsNullInt reports whether v is the int32 sentinel (also used by date and time)
func IsNullInt(v int32) bool { return v == NullInt }

// IsNullLong reports whether v is the int64 sentinel (also used by timestamp and timespan)
func IsNullLong(v int64) bool { return v == NullLong }

// IsNullReal reports whether v is a NaN
func IsNullReal(v float32) bool { return math.IsNaN(float64(v)) }

// IsNullFloat reports whether v is a NaN
func IsNullFloat(v float64) bool { return math.IsNaN(v) }

// IsNullSymbol reports whether s is the empty symbol
func IsNullSymbol(s string) bool { return s == NullSymbol }
