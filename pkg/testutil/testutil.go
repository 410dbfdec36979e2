// Package testutil holds helpers shared by the qparquet tests: loggers,
// checked Arrow allocators, a suite for write tests and Parquet read-back.
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// TestLogger returns a debug-level logger that writes through t.Log
func TestLogger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel))
}

// CheckedAllocator returns an allocator that fails the test if any Arrow
// buffer is still allocated when the test ends.
func CheckedAllocator(t testing.TB) *memory.CheckedAllocator {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}
