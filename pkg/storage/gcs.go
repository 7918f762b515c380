package storage

import (
	"context"
	stderrors "errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/metrics"
)

// GCSStore keeps objects in a Google Cloud Storage bucket below a key prefix
type GCSStore struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
	prefix string
	logger *zap.Logger
}

// NewGCSStore creates a client from a credentials file or the application
// default credentials.
func NewGCSStore(ctx context.Context, cfg Config) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}

	return &GCSStore{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
		prefix: cfg.Root,
		logger: logger.Component("storage.gcs"),
	}, nil
}

// Put streams r into a new object
func (s *GCSStore) Put(ctx context.Context, key string, r io.Reader, meta map[string]string) error {
	k, err := joinKey(s.prefix, key)
	if err != nil {
		return err
	}

	w := s.bucket.Object(k).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.Metadata = meta

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write to GCS").
			WithDetail("bucket", s.name).
			WithDetail("key", k)
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finalize GCS object").
			WithDetail("bucket", s.name).
			WithDetail("key", k)
	}

	metrics.ObjectsStored.WithLabelValues(string(KindGCS), "put").Inc()
	s.logger.Debug("object uploaded",
		zap.String("bucket", s.name),
		zap.String("key", k),
		zap.Int64("bytes", n))
	return nil
}

// Get opens a reader on the object
func (s *GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := joinKey(s.prefix, key)
	if err != nil {
		return nil, err
	}

	rd, err := s.bucket.Object(k).NewReader(ctx)
	if err != nil {
		if stderrors.Is(err, gcs.ErrObjectNotExist) {
			return nil, errors.Newf(errors.ErrorTypeNotFound, "object %q not found", k).
				WithDetail("bucket", s.name)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read from GCS").
			WithDetail("bucket", s.name).
			WithDetail("key", k)
	}

	metrics.ObjectsStored.WithLabelValues(string(KindGCS), "get").Inc()
	return rd, nil
}

// Kind returns KindGCS
func (s *GCSStore) Kind() Kind { return KindGCS }

// Close closes the GCS client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
