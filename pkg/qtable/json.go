package qtable

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"
)

// Document is the JSON form of a table, used by the CLI and test fixtures.
//
//	{
//	  "columns": [
//	    {"name": "sym",  "type": "enum", "domain": "sym", "values": [0, 1, 0]},
//	    {"name": "date", "type": "date", "values": ["2024-01-02", null]},
//	    {"name": "px",   "type": "float", "values": [101.5, null]}
//	  ],
//	  "domains": {"sym": ["AAPL", "MSFT"]},
//	  "metadata": {"source": "tick"}
//	}
//
// JSON null decodes to the kind's null sentinel. Temporal kinds accept either
// raw engine integers or strings: dates as 2006-01-02, timestamps as
// RFC 3339, times as 15:04:05.000 and timespans as Go durations.
type Document struct {
	Columns  []ColumnDocument  `json:"columns"`
	Domains  Domains           `json:"domains,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ColumnDocument is one column of a Document
type ColumnDocument struct {
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Domain string            `json:"domain,omitempty"`
	Values []json.RawMessage `json:"values"`
}

const timeOfDayLayout = "15:04:05.000"

// DecodeJSON reads a Document from r and builds the table it describes,
// together with the enumeration domains it carries.
func DecodeJSON(r io.Reader) (*Table, Domains, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode table document: %w", err)
	}

	cols := make([]NamedColumn, 0, len(doc.Columns))
	for _, cd := range doc.Columns {
		col, err := cd.decode()
		if err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", cd.Name, err)
		}
		cols = append(cols, NamedColumn{Name: cd.Name, Column: col})
	}

	t, err := NewTable(cols...)
	if err != nil {
		return nil, nil, err
	}
	t.Metadata = doc.Metadata

	domains := doc.Domains
	if domains == nil {
		domains = Domains{}
	}
	return t, domains, nil
}

func (cd ColumnDocument) decode() (Column, error) {
	kind, err := ParseKind(cd.Type)
	if err != nil {
		return nil, err
	}
	n := len(cd.Values)

	switch kind {
	case KindBoolean:
		out := make([]bool, n)
		for i, raw := range cd.Values {
			if !isJSONNull(raw) {
				if err := json.Unmarshal(raw, &out[i]); err != nil {
					return nil, valueError(i, err)
				}
			}
		}
		return &BoolColumn{Values: out}, nil

	case KindShort:
		out := make([]int16, n)
		for i, raw := range cd.Values {
			v, err := decodeInt(raw, int64(NullShort), math.MinInt16, math.MaxInt16)
			if err != nil {
				return nil, valueError(i, err)
			}
			out[i] = int16(v)
		}
		return &ShortColumn{Values: out}, nil

	case KindInt:
		out, err := decodeInt32s(cd.Values, nil)
		if err != nil {
			return nil, err
		}
		return &IntColumn{Values: out}, nil

	case KindLong:
		out, err := decodeInt64s(cd.Values, nil)
		if err != nil {
			return nil, err
		}
		return &LongColumn{Values: out}, nil

	case KindReal:
		out := make([]float32, n)
		for i, raw := range cd.Values {
			if isJSONNull(raw) {
				out[i] = NullReal
				continue
			}
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return nil, valueError(i, err)
			}
		}
		return &RealColumn{Values: out}, nil

	case KindFloat:
		out := make([]float64, n)
		for i, raw := range cd.Values {
			if isJSONNull(raw) {
				out[i] = NullFloat
				continue
			}
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return nil, valueError(i, err)
			}
		}
		return &FloatColumn{Values: out}, nil

	case KindDate:
		out, err := decodeInt32s(cd.Values, func(s string) (int32, error) {
			t, err := time.Parse(time.DateOnly, s)
			if err != nil {
				return 0, err
			}
			return DateFromTime(t), nil
		})
		if err != nil {
			return nil, err
		}
		return &DateColumn{Values: out}, nil

	case KindTime:
		out, err := decodeInt32s(cd.Values, func(s string) (int32, error) {
			t, err := time.Parse(timeOfDayLayout, s)
			if err != nil {
				return 0, err
			}
			midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
			return int32(t.Sub(midnight) / time.Millisecond), nil
		})
		if err != nil {
			return nil, err
		}
		return &TimeColumn{Values: out}, nil

	case KindTimestamp:
		out, err := decodeInt64s(cd.Values, func(s string) (int64, error) {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return 0, err
			}
			return TimestampFromTime(t), nil
		})
		if err != nil {
			return nil, err
		}
		return &TimestampColumn{Values: out}, nil

	case KindTimespan:
		out, err := decodeInt64s(cd.Values, func(s string) (int64, error) {
			d, err := time.ParseDuration(s)
			return int64(d), err
		})
		if err != nil {
			return nil, err
		}
		return &TimespanColumn{Values: out}, nil

	case KindSymbol:
		out := make([]string, n)
		for i, raw := range cd.Values {
			if isJSONNull(raw) {
				continue
			}
			if err := json.Unmarshal(raw, &out[i]); err != nil {
				return nil, valueError(i, err)
			}
		}
		return &SymbolColumn{Values: out}, nil

	case KindEnum:
		if cd.Domain == "" {
			return nil, fmt.Errorf("enum column requires a domain")
		}
		out, err := decodeInt64s(cd.Values, nil)
		if err != nil {
			return nil, err
		}
		return &EnumColumn{Domain: cd.Domain, Indices: out}, nil

	case KindGeneralList, KindAnyMap:
		items := make([]any, n)
		for i, raw := range cd.Values {
			items[i] = decodeListItem(raw)
		}
		if kind == KindAnyMap {
			return &AnyMapColumn{Items: items}, nil
		}
		return &GeneralListColumn{Items: items}, nil
	}

	return nil, fmt.Errorf("column kind %s cannot be decoded from JSON", kind)
}

// decodeListItem turns JSON strings into byte vectors and keeps any other
// value as decoded JSON, so that non-string lists are rejected on export.
func decodeListItem(raw json.RawMessage) any {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	return v
}

func decodeInt32s(values []json.RawMessage, parse func(string) (int32, error)) ([]int32, error) {
	out := make([]int32, len(values))
	for i, raw := range values {
		if parse != nil && isJSONString(raw) {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, valueError(i, err)
			}
			v, err := parse(s)
			if err != nil {
				return nil, valueError(i, err)
			}
			out[i] = v
			continue
		}
		v, err := decodeInt(raw, int64(NullInt), math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, valueError(i, err)
		}
		out[i] = int32(v)
	}
	return out, nil
}

func decodeInt64s(values []json.RawMessage, parse func(string) (int64, error)) ([]int64, error) {
	out := make([]int64, len(values))
	for i, raw := range values {
		if parse != nil && isJSONString(raw) {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, valueError(i, err)
			}
			v, err := parse(s)
			if err != nil {
				return nil, valueError(i, err)
			}
			out[i] = v
			continue
		}
		v, err := decodeInt(raw, NullLong, math.MinInt64, math.MaxInt64)
		if err != nil {
			return nil, valueError(i, err)
		}
		out[i] = v
	}
	return out, nil
}

func decodeInt(raw json.RawMessage, null, lo, hi int64) (int64, error) {
	if isJSONNull(raw) {
		return null, nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return v, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func valueError(i int, err error) error {
	return fmt.Errorf("value %d: %w", i, err)
}
