package writer

import (
	"fmt"
	"time"

	"github.com/ajitpratap0/qparquet/pkg/errors"
	"github.com/ajitpratap0/qparquet/pkg/partition"
	"github.com/ajitpratap0/qparquet/pkg/qtable"
	"github.com/ajitpratap0/qparquet/pkg/writeopts"
)

// State is a stage of one write
type State int

const (
	// StateValidating checks arguments, partition columns and options
	StateValidating State = iota
	// StateConverting maps the table to Arrow
	StateConverting
	// StateWriting produces the Parquet file or tree
	StateWriting
	// StateDone is the terminal success state
	StateDone
	// StateFailed is the terminal failure state
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateConverting:
		return "converting"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request describes one write
type Request struct {
	Table *qtable.Table
	// Path is a local path, s3://bucket/key or gs://bucket/key
	Path string
	// PartitionColumns selects Hive partitioning; empty names are ignored
	PartitionColumns []string
	Options          writeopts.Options
}

// Result describes a completed write
type Result struct {
	Rows       int64
	Columns    int
	Partitions int
	// Files lists the written files in write order
	Files    []string
	Duration time.Duration
}

// Partitioned reports whether the write produced a partitioned tree
func (r Result) Partitioned() bool { return r.Partitions > 0 }

func (r *Request) validate() error {
	if r.Table == nil {
		return errors.New(errors.ErrorTypeValidation, "not a table")
	}
	if r.Path == "" {
		return errors.New(errors.ErrorTypeValidation, "path not a symbol")
	}
	r.PartitionColumns = partition.NormalizeColumns(r.PartitionColumns)
	for _, name := range r.PartitionColumns {
		if !r.Table.HasColumn(name) {
			return errors.New(errors.ErrorTypeValidation, "partition column does not exist").
				WithDetail("column", name)
		}
	}
	// files with no columns cannot carry a row count
	if n := len(r.PartitionColumns); n > 0 && n == r.Table.NumCols() {
		return errors.New(errors.ErrorTypeValidation, "partition columns cover every column")
	}
	return nil
}

// requestFromValues checks the shapes of host-supplied arguments
func requestFromValues(table, path, partitionColumns, options any) (Request, error) {
	var req Request

	t, ok := table.(*qtable.Table)
	if !ok || t == nil {
		return req, errors.New(errors.ErrorTypeValidation, "not a table")
	}
	req.Table = t

	p, ok := path.(string)
	if !ok || p == "" {
		return req, errors.New(errors.ErrorTypeValidation, "path not a symbol")
	}
	req.Path = p

	switch v := partitionColumns.(type) {
	case nil:
	case string:
		req.PartitionColumns = []string{v}
	case []string:
		req.PartitionColumns = v
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return req, errors.New(errors.ErrorTypeValidation, "partition column(s) must be symbol/symbol list")
			}
			req.PartitionColumns = append(req.PartitionColumns, name)
		}
	default:
		return req, errors.New(errors.ErrorTypeValidation, "partition column(s) must be symbol/symbol list")
	}

	switch v := options.(type) {
	case nil:
	case writeopts.Options:
		req.Options = v
	case map[string]any:
		req.Options = writeopts.FromMap(v)
	default:
		return req, errors.New(errors.ErrorTypeValidation, "opts not a dictionary")
	}

	return req, nil
}
