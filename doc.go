// Package qparquet writes the column-oriented tables of an embedded analytic
// engine to Apache Parquet, either as one file or as a Hive-partitioned
// directory tree.
//
// # Architecture
//
// A write runs in four stages, each in its own package:
//
// 1. Type mapping (pkg/convert): every source column is converted to an
// Arrow array. Null sentinels become Arrow nulls, dates and timestamps are
// shifted from the 2000-01-01 epoch to the Unix epoch, enumerations are
// resolved through their domain and lists of byte vectors become strings.
//
// 2. Write configuration (pkg/writeopts): a dictionary of named options is
// folded into Parquet writer properties. Unknown names abort the fold.
//
// 3. Partition planning (pkg/partition): rows are grouped by the values of
// the partition columns into column=value directories, in order of first
// appearance, with the partition columns dropped from the files.
//
// 4. Orchestration (pkg/writer): validation, conversion and writing, with
// structured logs, metrics and trace spans around each stage.
//
// Tables are modelled by pkg/qtable. Destinations may be local paths,
// s3://bucket/key or gs://bucket/key (pkg/storage).
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/ajitpratap0/qparquet/pkg/qtable"
//	    "github.com/ajitpratap0/qparquet/pkg/writeopts"
//	    "github.com/ajitpratap0/qparquet/pkg/writer"
//	)
//
//	t := qtable.MustTable(
//	    qtable.Col("date", &qtable.DateColumn{Values: []int32{8766, 8767}}),
//	    qtable.Col("px", &qtable.FloatColumn{Values: []float64{101.5, 99.25}}),
//	)
//
//	w := writer.New()
//	_, err := w.Write(context.Background(), writer.Request{
//	    Table:            t,
//	    Path:             "/data/trades",
//	    PartitionColumns: []string{"date"},
//	    Options: writeopts.Options{
//	        {Name: "compression", Value: "zstd"},
//	        {Name: "use_threads", Value: true},
//	    },
//	})
//
// # Command Line
//
// The qparquet command reads a JSON table document and writes it:
//
//	qparquet write --input trades.json --output s3://bucket/trades \
//	    --partition date --option compression=zstd
//
// # Configuration
//
// Defaults for logging, write options, object-store clients and
// observability are read from a YAML file and QPARQUET_* environment
// variables. See pkg/config.
package qparquet
