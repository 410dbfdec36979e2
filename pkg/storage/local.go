package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/qparquet/pkg/errors"
)

// Local writes to the local file system
type Local struct{}

// NewLocal creates a local file system
func NewLocal() *Local { return &Local{} }

// Create creates name and any missing parent directories. An existing file
// is truncated. Abort removes the file.
func (l *Local) Create(_ context.Context, name string) (File, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create directory").
			WithDetail("path", filepath.Dir(name))
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open output file").
			WithDetail("path", name)
	}
	return &sink{
		w:      f,
		name:   name,
		commit: f.Close,
		discard: func(error) error {
			_ = f.Close()
			if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to remove partial file").
					WithDetail("path", name)
			}
			return nil
		},
	}, nil
}

// Join joins elements with the OS separator
func (l *Local) Join(elem ...string) string {
	parts := make([]string, len(elem))
	for i, e := range elem {
		parts[i] = filepath.FromSlash(e)
	}
	return filepath.Join(parts...)
}

// Scheme returns "file"
func (l *Local) Scheme() string { return "file" }

// Close is a no-op
func (l *Local) Close() error { return nil }
