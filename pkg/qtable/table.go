package qtable

import "fmt"

// NamedColumn pairs a column with its name
type NamedColumn struct {
	Name   string
	Column Column
}

// Table is an ordered set of uniquely named columns of equal length.
// Metadata is free-form and travels with the table into the output schema.
type Table struct {
	Metadata map[string]string

	columns []NamedColumn
	index   map[string]int
}

// NewTable builds a table from columns in order. Names must be non-empty and
// unique and all columns must have the same length.
func NewTable(cols ...NamedColumn) (*Table, error) {
	t := &Table{
		columns: make([]NamedColumn, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if c.Column == nil {
			return nil, fmt.Errorf("column %q is nil", c.Name)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i > 0 && c.Column.Len() != cols[0].Column.Len() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Column.Len(), cols[0].Column.Len())
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. Intended for tests and fixtures.
func MustTable(cols ...NamedColumn) *Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Col is shorthand for building a NamedColumn
func Col(name string, c Column) NamedColumn {
	return NamedColumn{Name: name, Column: c}
}

// NumRows returns the row count, taken from the first column
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Column.Len()
}

// NumCols returns the number of columns
func (t *Table) NumCols() int { return len(t.columns) }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []NamedColumn { return t.columns }

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i].Column, true
}
