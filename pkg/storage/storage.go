// Package storage resolves write destinations to file systems. Local paths,
// s3://bucket/prefix and gs://bucket/prefix are supported.
package storage

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ajitpratap0/qparquet/pkg/errors"
)

// File is an output being written. Close publishes it and Abort discards
// it. A File whose Write failed is discarded by Close too. Only the first
// of Close and Abort takes effect.
type File interface {
	io.WriteCloser
	// Abort discards the output. cause is recorded in logs; the returned
	// error reports only a failed cleanup.
	Abort(cause error) error
}

// FileSystem creates files below a root. Names are full paths in the file
// system's own syntax as produced by Join.
type FileSystem interface {
	// Create opens name for writing, replacing any existing file
	Create(ctx context.Context, name string) (File, error)
	// Join joins path elements; slash-separated elements are accepted
	Join(elem ...string) string
	// Scheme names the backend: file, s3 or gs
	Scheme() string
	// Close releases clients held by the file system
	Close() error
}

// Config holds object-store client settings
type Config struct {
	S3  S3Config  `yaml:"s3" json:"s3" mapstructure:"s3"`
	GCS GCSConfig `yaml:"gcs" json:"gcs" mapstructure:"gcs"`
}

// Location is a parsed destination
type Location struct {
	Scheme string
	Bucket string
	// Path is an absolute local path or an object key without a leading slash
	Path string
}

// ParseLocation splits a destination into scheme, bucket and path. Anything
// without a recognized scheme is a local path and is made absolute.
func ParseLocation(uri string) (Location, error) {
	if uri == "" {
		return Location{}, errors.New(errors.ErrorTypeValidation, "empty destination")
	}

	if i := strings.Index(uri, "://"); i > 0 {
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, errors.Wrap(err, errors.ErrorTypeValidation, "invalid destination uri")
		}
		switch strings.ToLower(u.Scheme) {
		case "file":
			return localLocation(u.Path)
		case "s3":
			return objectLocation("s3", u)
		case "gs", "gcs":
			return objectLocation("gs", u)
		default:
			return Location{}, errors.Newf(errors.ErrorTypeValidation, "unsupported destination scheme: %s", u.Scheme)
		}
	}
	return localLocation(uri)
}

func localLocation(p string) (Location, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return Location{}, errors.Wrap(err, errors.ErrorTypeFile, "failed to resolve path")
	}
	return Location{Scheme: "file", Path: abs}, nil
}

func objectLocation(scheme string, u *url.URL) (Location, error) {
	if u.Host == "" {
		return Location{}, errors.Newf(errors.ErrorTypeValidation, "destination %s has no bucket", u.String())
	}
	key := strings.Trim(u.Path, "/")
	if key == "" {
		return Location{}, errors.Newf(errors.ErrorTypeValidation, "destination %s has no object path", u.String())
	}
	return Location{Scheme: scheme, Bucket: u.Host, Path: key}, nil
}

// FromURIOrPath resolves uri to a file system and the destination's path
// within it.
func FromURIOrPath(ctx context.Context, uri string, cfg Config) (FileSystem, string, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, "", err
	}

	switch loc.Scheme {
	case "s3":
		fs, err := NewS3(ctx, loc.Bucket, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return fs, loc.Path, nil
	case "gs":
		fs, err := NewGCS(ctx, loc.Bucket, cfg.GCS)
		if err != nil {
			return nil, "", err
		}
		return fs, loc.Path, nil
	default:
		return NewLocal(), loc.Path, nil
	}
}

// NewFile returns a File writing to w. commit publishes the output on Close
// and discard drops it on Abort or after a failed Write.
func NewFile(w io.Writer, name string, commit func() error, discard func(cause error) error) File {
	return &sink{w: w, name: name, commit: commit, discard: discard}
}

// sink is the File of every backend. The Parquet writer closes its sink
// itself, so callers may Close or Abort again afterwards.
type sink struct {
	w       io.Writer
	name    string
	commit  func() error
	discard func(cause error) error

	once sync.Once
	werr error
	err  error
}

func (s *sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil && s.werr == nil {
		s.werr = err
	}
	return n, err
}

func (s *sink) Close() error {
	s.once.Do(func() {
		if s.werr == nil {
			s.err = s.commit()
			return
		}
		_ = s.discard(s.werr)
		s.err = errors.Wrap(s.werr, errors.ErrorTypeFile, "write failed, output discarded").
			WithDetail("path", s.name)
	})
	return s.err
}

func (s *sink) Abort(cause error) error {
	if cause == nil {
		cause = errors.New(errors.ErrorTypeFile, "write aborted")
	}
	var cleanupErr error
	s.once.Do(func() {
		cleanupErr = s.discard(cause)
		s.err = errors.Wrap(cause, errors.ErrorTypeFile, "output discarded").
			WithDetail("path", s.name)
	})
	return cleanupErr
}
