// Package metrics exposes Prometheus metrics for table writes.
//
// All metrics are registered with the default registry on import. A
// long-running host scrapes them through promhttp; the CLI can dump them to
// a node-exporter textfile with WriteTextfile.
//
// # Basic Usage
//
//	timer := metrics.NewTimer()
//	err := write()
//	metrics.ObserveWrite(metrics.ModeFlat, err, timer.Stop())
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/qparquet/pkg/errors"
)

const namespace = "qparquet"

// Write modes used as label values
const (
	ModeFlat        = "flat"
	ModePartitioned = "partitioned"
)

// Stages used as label values
const (
	StageValidate = "validate"
	StageConvert  = "convert"
	StageWrite    = "write"
)

var (
	// WritesTotal counts write requests by mode and outcome.
	// Labels: mode (flat/partitioned), status (success/failure)
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Total number of table writes",
		},
		[]string{"mode", "status"},
	)

	// WriteErrors counts failed writes by error category
	WriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_errors_total",
			Help:      "Total number of failed writes by error type",
		},
		[]string{"error_type"},
	)

	// RowsWritten counts rows handed to the Parquet writer
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Total number of rows written",
		},
		[]string{"mode"},
	)

	// FilesWritten counts Parquet files closed successfully.
	// Labels: scheme (file/s3/gs)
	FilesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_written_total",
			Help:      "Total number of Parquet files written",
		},
		[]string{"scheme"},
	)

	// StageDuration tracks time spent per write stage in seconds
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of write stages in seconds",
			Buckets: []float64{
				0.001, // 1ms - small tables
				0.01,
				0.1,
				1,
				10,
				60, // 1m - large partitioned writes to object stores
			},
		},
		[]string{"stage"},
	)

	// PartitionsPlanned tracks how many partition directories writes produce
	PartitionsPlanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "partitions_per_write",
			Help:      "Number of partition directories produced per write",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// ObserveWrite records the outcome of one write
func ObserveWrite(mode string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
		WriteErrors.WithLabelValues(string(errors.TypeOf(err))).Inc()
	}
	WritesTotal.WithLabelValues(mode, status).Inc()
	StageDuration.WithLabelValues("total").Observe(d.Seconds())
}

// ObserveStage records the duration of one stage
func ObserveStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
