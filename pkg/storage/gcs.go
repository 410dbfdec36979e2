package storage

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/qparquet/pkg/errors"
	"github.com/ajitpratap0/qparquet/pkg/logger"
)

// GCSConfig configures the Cloud Storage client
type GCSConfig struct {
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
	ChunkSize       int    `yaml:"chunk_size" json:"chunk_size" mapstructure:"chunk_size"`
}

// GCS writes objects to one Cloud Storage bucket
type GCS struct {
	client    *storage.Client
	bucket    *storage.BucketHandle
	name      string
	chunkSize int
}

// NewGCS creates a GCS file system for bucket
func NewGCS(ctx context.Context, bucket string, cfg GCSConfig) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}

	return &GCS{
		client:    client,
		bucket:    client.Bucket(bucket),
		name:      bucket,
		chunkSize: cfg.ChunkSize,
	}, nil
}

// Create opens a resumable upload of object. Abort cancels the upload so
// no object is created.
func (g *GCS) Create(ctx context.Context, object string) (File, error) {
	log := logger.FromContext(ctx).With(zap.String("bucket", g.name), zap.String("object", object))
	log.Debug("starting GCS upload")

	ctx, cancel := context.WithCancel(ctx)
	w := g.bucket.Object(object).NewWriter(ctx)
	w.ContentType = parquetContentType
	if g.chunkSize > 0 {
		w.ChunkSize = g.chunkSize
	}
	return &sink{
		w:    w,
		name: object,
		commit: func() error {
			defer cancel()
			if err := w.Close(); err != nil {
				log.Warn("GCS upload failed", zap.Error(err))
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to upload to GCS").
					WithDetail("bucket", g.name).
					WithDetail("object", object)
			}
			log.Debug("GCS upload completed", zap.Int64("bytes", w.Attrs().Size))
			return nil
		},
		discard: func(cause error) error {
			cancel()
			_ = w.Close()
			log.Warn("GCS upload aborted", zap.Error(cause))
			return nil
		},
	}, nil
}

// Join joins object name elements with slashes
func (g *GCS) Join(elem ...string) string { return path.Join(elem...) }

// Scheme returns "gs"
func (g *GCS) Scheme() string { return "gs" }

// Close closes the client
func (g *GCS) Close() error { return g.client.Close() }
