package storage

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/metrics"
)

// S3Client is the subset of the S3 API used by S3Store
type S3Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps objects in an S3 bucket below a key prefix
type S3Store struct {
	client   S3Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	logger   *zap.Logger
}

// NewS3Store loads the default AWS credential chain and builds a store
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient builds a store on an existing client
func NewS3StoreWithClient(client S3Client, cfg Config) *S3Store {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
		if cfg.Concurrency > 0 {
			u.Concurrency = cfg.Concurrency
		}
	})
	return &S3Store{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		prefix:   cfg.Root,
		logger:   logger.Component("storage.s3"),
	}
}

// Put uploads r, switching to multipart upload for large bodies
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, meta map[string]string) error {
	k, err := joinKey(s.prefix, key)
	if err != nil {
		return err
	}

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        r,
		ContentType: aws.String("application/octet-stream"),
		Metadata:    meta,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to upload to S3").
			WithDetail("bucket", s.bucket).
			WithDetail("key", k)
	}

	metrics.ObjectsStored.WithLabelValues(string(KindS3), "put").Inc()
	s.logger.Debug("object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", k),
		zap.String("location", result.Location))
	return nil
}

// Get streams the object body
func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := joinKey(s.prefix, key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if stderrors.As(err, &nsk) || stderrors.As(err, &nf) {
			return nil, errors.Newf(errors.ErrorTypeNotFound, "object %q not found", k).
				WithDetail("bucket", s.bucket)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to fetch from S3").
			WithDetail("bucket", s.bucket).
			WithDetail("key", k)
	}

	metrics.ObjectsStored.WithLabelValues(string(KindS3), "get").Inc()
	return out.Body, nil
}

// Kind returns KindS3
func (s *S3Store) Kind() Kind { return KindS3 }

// Close is a no-op; the SDK client holds no resources needing release
func (s *S3Store) Close() error { return nil }
