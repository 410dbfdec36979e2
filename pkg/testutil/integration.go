package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// DefaultSuiteTimeout bounds the context of each suite test
const DefaultSuiteTimeout = time.Minute

// WriteSuite is a testify suite for tests that produce Parquet output. Every
// test method runs with its own output directory and a context that is
// cancelled when the method returns.
type WriteSuite struct {
	suite.Suite

	// Timeout overrides DefaultSuiteTimeout when positive
	Timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	dir    string
}

// SetupTest prepares the directory and context of one test method
func (s *WriteSuite) SetupTest() {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSuiteTimeout
	}
	s.ctx, s.cancel = context.WithTimeout(context.Background(), timeout)
	s.dir = s.T().TempDir()
}

// TearDownTest cancels the context of the finished method
func (s *WriteSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Context returns the context of the running test method
func (s *WriteSuite) Context() context.Context {
	return s.ctx
}

// Path returns a slash-separated name resolved below the output directory
// of the running test method.
func (s *WriteSuite) Path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

// RequireFiles fails the test unless root holds exactly the given Parquet
// files, listed as sorted slash-separated relative paths.
func (s *WriteSuite) RequireFiles(root string, want ...string) {
	s.Require().Equal(want, ListParquetFiles(s.T(), root))
}

// SkipShort skips tests that touch the file system when -short is set
func SkipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("writes files; skipped in short mode")
	}
}
