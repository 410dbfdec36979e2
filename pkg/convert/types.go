// Package convert maps engine tables onto Arrow records.
//
// Each source kind has exactly one Arrow type (see TargetType). Values equal
// to the kind's null sentinel become nulls in the validity bitmap, and dates
// and timestamps are shifted from the 2000-01-01 epoch to 1970-01-01.
package convert

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/qparquet/pkg/qtable"
)

var (
	timestampNanos = &arrow.TimestampType{Unit: arrow.Nanosecond}
	time32Millis   = &arrow.Time32Type{Unit: arrow.Millisecond}
	time64Nanos    = &arrow.Time64Type{Unit: arrow.Nanosecond}
)

// TargetType returns the Arrow type a source kind maps to
func TargetType(kind qtable.Kind) (arrow.DataType, bool) {
	switch kind {
	case qtable.KindBoolean:
		return arrow.FixedWidthTypes.Boolean, true
	case qtable.KindShort:
		return arrow.PrimitiveTypes.Int16, true
	case qtable.KindInt:
		return arrow.PrimitiveTypes.Int32, true
	case qtable.KindLong:
		return arrow.PrimitiveTypes.Int64, true
	case qtable.KindReal:
		return arrow.PrimitiveTypes.Float32, true
	case qtable.KindFloat:
		return arrow.PrimitiveTypes.Float64, true
	case qtable.KindDate:
		return arrow.FixedWidthTypes.Date32, true
	case qtable.KindTimestamp:
		return timestampNanos, true
	case qtable.KindTime:
		return time32Millis, true
	case qtable.KindTimespan:
		return time64Nanos, true
	case qtable.KindSymbol, qtable.KindEnum, qtable.KindGeneralList, qtable.KindAnyMap:
		return arrow.BinaryTypes.String, true
	default:
		return nil, false
	}
}
