package qtable

import "time"

// The engine counts temporal values from 2000-01-01; Arrow counts from
// 1970-01-01. Time of day and timespans have no epoch.
const (
	// DateEpochOffsetDays is the number of days between 1970-01-01 and 2000-01-01
	DateEpochOffsetDays int32 = 10957
	// TimestampEpochOffsetNanos is the same offset expressed in nanoseconds
	TimestampEpochOffsetNanos int64 = 946684800000000000
)

// Epoch is the engine's zero point for dates and timestamps
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateToUnixDays converts an engine day count to days since the Unix epoch.
// Callers must have filtered NullDate out first.
func DateToUnixDays(d int32) int32 { return d + DateEpochOffsetDays }

// TimestampToUnixNanos converts an engine timestamp to nanoseconds since the
// Unix epoch. Callers must have filtered NullTimestamp out first.
func TimestampToUnixNanos(ts int64) int64 { return ts + TimestampEpochOffsetNanos }

// DateFromTime returns the engine day count for the calendar day of t (UTC)
func DateFromTime(t time.Time) int32 {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int32(day.Sub(Epoch) / (24 * time.Hour))
}

// TimestampFromTime returns the engine nanosecond count for t
func TimestampFromTime(t time.Time) int64 {
	return t.UnixNano() - TimestampEpochOffsetNanos
}
