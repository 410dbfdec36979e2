package partition

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// DefaultPartitionValue names the directory that collects rows whose
// partition value is null or empty.
const DefaultPartitionValue = "__HIVE_DEFAULT_PARTITION__"

const timestampLayout = "2006-01-02 15:04:05.999999999"

// FormatValue renders row i of arr as an unescaped partition value
func FormatValue(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return DefaultPartitionValue
	}

	var s string
	switch a := arr.(type) {
	case *array.String:
		s = a.Value(i)
	case *array.Boolean:
		s = strconv.FormatBool(a.Value(i))
	case *array.Int16:
		s = strconv.FormatInt(int64(a.Value(i)), 10)
	case *array.Int32:
		s = strconv.FormatInt(int64(a.Value(i)), 10)
	case *array.Int64:
		s = strconv.FormatInt(a.Value(i), 10)
	case *array.Float32:
		s = strconv.FormatFloat(float64(a.Value(i)), 'g', -1, 32)
	case *array.Float64:
		s = strconv.FormatFloat(a.Value(i), 'g', -1, 64)
	case *array.Date32:
		s = a.Value(i).FormattedString()
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		s = a.Value(i).ToTime(unit).UTC().Format(timestampLayout)
	case *array.Time32:
		unit := a.DataType().(*arrow.Time32Type).Unit
		s = formatClock(int64(a.Value(i)), unit)
	case *array.Time64:
		unit := a.DataType().(*arrow.Time64Type).Unit
		s = formatClock(int64(a.Value(i)), unit)
	default:
		s = arr.ValueStr(i)
	}

	if s == "" {
		return DefaultPartitionValue
	}
	return s
}

// formatClock renders v as a signed [-]HH:MM:SS.fff clock reading with one
// fraction digit per decimal place of unit. Hours are not wrapped at 24, so
// every distinct value gets a distinct string.
func formatClock(v int64, unit arrow.TimeUnit) string {
	sign := ""
	mag := uint64(v)
	if v < 0 {
		sign = "-"
		mag = -mag
	}

	perSecond := uint64(time.Second / unit.Multiplier())
	secs, frac := mag/perSecond, mag%perSecond
	s := fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, secs/60%60, secs%60)
	if digits := len(strconv.FormatUint(perSecond, 10)) - 1; digits > 0 {
		s += fmt.Sprintf(".%0*d", digits, frac)
	}
	return s
}

// Segment renders one Hive directory level, name=value, with the value
// escaped as a path segment.
func Segment(name, value string) string {
	if value == DefaultPartitionValue {
		return name + "=" + value
	}
	return name + "=" + url.PathEscape(value)
}
