package storage

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/metrics"
	"github.com/ajitpratap0/structcol/pkg/mmap"
)

// LocalStore keeps objects as files below a root directory
type LocalStore struct {
	root   string
	logger *zap.Logger
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create storage root").
			WithDetail("root", root)
	}
	return &LocalStore{root: root, logger: logger.Component("storage.local")}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put writes r to a temporary file and renames it into place
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create object directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create temporary object")
	}
	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write object").WithDetail("key", key)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close object").WithDetail("key", key)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to store object").WithDetail("key", key)
	}

	metrics.ObjectsStored.WithLabelValues(string(KindLocal), "put").Inc()
	s.logger.Debug("object stored", zap.String("key", key), zap.Int64("bytes", n))
	return nil
}

// Get maps the file stored under key read-only
func (s *LocalStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := mmap.Open(p)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Newf(errors.ErrorTypeNotFound, "object %q not found", key).WithDetail("key", key)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open object").WithDetail("key", key)
	}
	metrics.ObjectsStored.WithLabelValues(string(KindLocal), "get").Inc()
	return f, nil
}

// Kind returns KindLocal
func (s *LocalStore) Kind() Kind { return KindLocal }

// Close is a no-op
func (s *LocalStore) Close() error { return nil }
