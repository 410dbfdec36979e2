package qtable

// Column is one typed vector of a Table. The set of implementations is
// closed; see the concrete types below.
type Column interface {
	// Kind returns the column's type tag
	Kind() Kind
	// Len returns the number of values
	Len() int

	column()
}

// BoolColumn holds booleans. Booleans have no null representation.
type BoolColumn struct{ Values []bool }

// ShortColumn holds int16 values; NullShort marks a missing value.
type ShortColumn struct{ Values []int16 }

// IntColumn holds int32 values; NullInt marks a missing value.
type IntColumn struct{ Values []int32 }

// LongColumn holds int64 values; NullLong marks a missing value.
type LongColumn struct{ Values []int64 }

// RealColumn holds float32 values; NaN marks a missing value.
type RealColumn struct{ Values []float32 }

// FloatColumn holds float64 values; NaN marks a missing value.
type FloatColumn struct{ Values []float64 }

// DateColumn holds days since 2000-01-01; NullDate marks a missing value.
type DateColumn struct{ Values []int32 }

// TimestampColumn holds nanoseconds since 2000-01-01; NullTimestamp marks a missing value.
type TimestampColumn struct{ Values []int64 }

// TimeColumn holds milliseconds since midnight; NullTime marks a missing value.
type TimeColumn struct{ Values []int32 }

// TimespanColumn holds nanosecond durations; NullTimespan marks a missing value.
type TimespanColumn struct{ Values []int64 }

// SymbolColumn holds interned strings; the empty symbol marks a missing value.
type SymbolColumn struct{ Values []string }

// GeneralListColumn holds arbitrary items. It can only be exported when it is
// a disguised string column, i.e. every item is a []byte.
type GeneralListColumn struct{ Items []any }

// AnyMapColumn is a general list backed by a mapped file. Export rules are
// the same as for GeneralListColumn.
type AnyMapColumn struct{ Items []any }

// EnumColumn holds indices into the symbol list named by Domain. Values are
// only meaningful after resolution against the host's domains.
type EnumColumn struct {
	Domain  string
	Indices []int64
}

func (*BoolColumn) Kind() Kind        { return KindBoolean }
func (*ShortColumn) Kind() Kind       { return KindShort }
func (*IntColumn) Kind() Kind         { return KindInt }
func (*LongColumn) Kind() Kind        { return KindLong }
func (*RealColumn) Kind() Kind        { return KindReal }
func (*FloatColumn) Kind() Kind       { return KindFloat }
func (*DateColumn) Kind() Kind        { return KindDate }
func (*TimestampColumn) Kind() Kind   { return KindTimestamp }
func (*TimeColumn) Kind() Kind        { return KindTime }
func (*TimespanColumn) Kind() Kind    { return KindTimespan }
func (*SymbolColumn) Kind() Kind      { return KindSymbol }
func (*GeneralListColumn) Kind() Kind { return KindGeneralList }
func (*AnyMapColumn) Kind() Kind      { return KindAnyMap }
func (*EnumColumn) Kind() Kind        { return KindEnum }

func (c *BoolColumn) Len() int        { return len(c.Values) }
func (c *ShortColumn) Len() int       { return len(c.Values) }
func (c *IntColumn) Len() int         { return len(c.Values) }
func (c *LongColumn) Len() int        { return len(c.Values) }
func (c *RealColumn) Len() int        { return len(c.Values) }
func (c *FloatColumn) Len() int       { return len(c.Values) }
func (c *DateColumn) Len() int        { return len(c.Values) }
func (c *TimestampColumn) Len() int   { return len(c.Values) }
func (c *TimeColumn) Len() int        { return len(c.Values) }
func (c *TimespanColumn) Len() int    { return len(c.Values) }
func (c *SymbolColumn) Len() int      { return len(c.Values) }
func (c *GeneralListColumn) Len() int { return len(c.Items) }
func (c *AnyMapColumn) Len() int      { return len(c.Items) }
func (c *EnumColumn) Len() int        { return len(c.Indices) }

func (*BoolColumn) column()        {}
func (*ShortColumn) column()       {}
func (*IntColumn) column()         {}
func (*LongColumn) column()        {}
func (*RealColumn) column()        {}
func (*FloatColumn) column()       {}
func (*DateColumn) column()        {}
func (*TimestampColumn) column()   {}
func (*TimeColumn) column()        {}
func (*TimespanColumn) column()    {}
func (*SymbolColumn) column()      {}
func (*GeneralListColumn) column() {}
func (*AnyMapColumn) column()      {}
func (*EnumColumn) column()        {}
