// Package partition lays a record out as a Hive-style directory tree.
//
// Each partition column contributes one directory level named
// "column=value". Rows are grouped by their value tuple in order of first
// appearance, the partition columns are dropped from the files, and every
// directory receives files named part0.parquet, part1.parquet and so on.
package partition

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/qparquet/pkg/errors"
)

// Group is the set of rows sharing one partition value tuple
type Group struct {
	// Values holds the unescaped value per partition column
	Values []string
	// Dir is the slash-separated directory relative to the dataset root
	Dir  string
	rows []int64
}

// NumRows returns the number of rows in the group
func (g *Group) NumRows() int { return len(g.rows) }

// File is one output file of a plan
type File struct {
	Dir   string
	Name  string
	group *Group
	lo    int
	hi    int
}

// Path returns the slash-separated path relative to the dataset root
func (f File) Path() string { return path.Join(f.Dir, f.Name) }

// NumRows returns the number of rows that go into the file
func (f File) NumRows() int { return f.hi - f.lo }

// Plan is the partition layout of one record. It holds a reference to the
// record until Release is called.
type Plan struct {
	Columns []string
	Schema  *arrow.Schema
	Groups  []*Group
	Files   []File

	rec  arrow.Record
	keep []int
	mem  memory.Allocator
}

// Planner computes partition plans
type Planner struct {
	mem            memory.Allocator
	maxRowsPerFile int
}

// Option configures a Planner
type Option func(*Planner)

// WithAllocator sets the allocator used for partition arrays
func WithAllocator(mem memory.Allocator) Option {
	return func(p *Planner) { p.mem = mem }
}

// WithMaxRowsPerFile splits groups larger than n rows across several files.
// Zero or less keeps one file per directory.
func WithMaxRowsPerFile(n int) Option {
	return func(p *Planner) { p.maxRowsPerFile = n }
}

// NewPlanner creates a Planner
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{mem: memory.DefaultAllocator}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NormalizeColumns drops empty names and repeats while keeping order
func NormalizeColumns(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Plan groups the rows of rec by the values of columns. Every column must
// exist in the record.
func (p *Planner) Plan(ctx context.Context, rec arrow.Record, columns []string) (*Plan, error) {
	columns = NormalizeColumns(columns)
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "no partition columns")
	}

	schema := rec.Schema()
	partIdx := make([]int, len(columns))
	isPart := make(map[int]bool, len(columns))
	for i, name := range columns {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, errors.New(errors.ErrorTypeValidation, "partition column does not exist").
				WithDetail("column", name)
		}
		partIdx[i] = idx[0]
		isPart[idx[0]] = true
	}
	if len(isPart) == int(rec.NumCols()) {
		return nil, errors.New(errors.ErrorTypeValidation, "partition columns cover every column")
	}

	keep := make([]int, 0, int(rec.NumCols())-len(columns))
	fields := make([]arrow.Field, 0, cap(keep))
	for i, f := range schema.Fields() {
		if isPart[i] {
			continue
		}
		keep = append(keep, i)
		fields = append(fields, f)
	}
	var md *arrow.Metadata
	if schema.HasMetadata() {
		meta := schema.Metadata()
		md = &meta
	}

	plan := &Plan{
		Columns: columns,
		Schema:  arrow.NewSchema(fields, md),
		rec:     rec,
		keep:    keep,
		mem:     p.mem,
	}

	byKey := make(map[string]*Group)
	values := make([]string, len(columns))
	var key []byte
	for row := 0; row < int(rec.NumRows()); row++ {
		if row%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for i, idx := range partIdx {
			values[i] = FormatValue(rec.Column(idx), row)
		}
		key = groupKey(key[:0], values)
		g, ok := byKey[string(key)]
		if !ok {
			g = newGroup(columns, values)
			byKey[string(key)] = g
			plan.Groups = append(plan.Groups, g)
		}
		g.rows = append(g.rows, int64(row))
	}

	for _, g := range plan.Groups {
		plan.Files = append(plan.Files, p.split(g)...)
	}

	rec.Retain()
	return plan, nil
}

// groupKey appends the length-prefixed values to buf
func groupKey(buf []byte, values []string) []byte {
	for _, v := range values {
		buf = strconv.AppendInt(buf, int64(len(v)), 10)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return buf
}

func newGroup(columns, values []string) *Group {
	g := &Group{Values: append([]string(nil), values...)}
	segs := make([]string, len(columns))
	for i, name := range columns {
		segs[i] = Segment(name, values[i])
	}
	g.Dir = strings.Join(segs, "/")
	return g
}

func (p *Planner) split(g *Group) []File {
	n := len(g.rows)
	if p.maxRowsPerFile <= 0 || n <= p.maxRowsPerFile {
		return []File{{Dir: g.Dir, Name: FileName(0), group: g, lo: 0, hi: n}}
	}
	files := make([]File, 0, (n+p.maxRowsPerFile-1)/p.maxRowsPerFile)
	for lo, i := 0, 0; lo < n; lo, i = lo+p.maxRowsPerFile, i+1 {
		hi := min(lo+p.maxRowsPerFile, n)
		files = append(files, File{Dir: g.Dir, Name: FileName(i), group: g, lo: lo, hi: hi})
	}
	return files
}

// FileName returns the name of the i-th file in a partition directory
func FileName(i int) string {
	return fmt.Sprintf("part%d.parquet", i)
}

// Record materializes the rows of f with the partition columns removed.
// The caller must release the record.
func (pl *Plan) Record(ctx context.Context, f File) (arrow.Record, error) {
	rows := f.group.rows[f.lo:f.hi]

	ib := array.NewInt64Builder(pl.mem)
	ib.AppendValues(rows, nil)
	indices := ib.NewArray()
	ib.Release()
	defer indices.Release()

	ctx = compute.WithAllocator(ctx, pl.mem)
	cols := make([]arrow.Array, 0, len(pl.keep))
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	for _, idx := range pl.keep {
		taken, err := compute.TakeArray(ctx, pl.rec.Column(idx), indices)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to select partition rows").
				WithDetail("partition", f.Dir).
				WithDetail("column", pl.rec.ColumnName(idx))
		}
		cols = append(cols, taken)
	}

	return array.NewRecord(pl.Schema, cols, int64(len(rows))), nil
}

// NumRows returns the total number of planned rows
func (pl *Plan) NumRows() int64 { return pl.rec.NumRows() }

// Release drops the plan's reference to the source record
func (pl *Plan) Release() {
	if pl.rec != nil {
		pl.rec.Release()
		pl.rec = nil
	}
}
