// Package storage moves encoded table files to and from object stores.
//
// Three backends are provided: a local directory, Amazon S3 and Google Cloud
// Storage. Keys are slash-separated and relative to the store's root prefix.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

// Kind names a storage backend
type Kind string

const (
	// KindLocal stores objects under a local directory
	KindLocal Kind = "local"
	// KindS3 stores objects in an S3 bucket
	KindS3 Kind = "s3"
	// KindGCS stores objects in a Google Cloud Storage bucket
	KindGCS Kind = "gcs"
)

// Store is an object store for encoded tables
type Store interface {
	// Put uploads r under key with optional user metadata
	Put(ctx context.Context, key string, r io.Reader, meta map[string]string) error
	// Get opens the object stored under key. The caller must Close it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Kind reports the backend kind
	Kind() Kind
	// Close releases backend clients
	Close() error
}

// Config selects and configures a storage backend
type Config struct {
	Kind Kind `yaml:"kind" json:"kind"`
	// Root is the local directory for KindLocal and the key prefix otherwise
	Root   string `yaml:"root" json:"root"`
	Bucket string `yaml:"bucket" json:"bucket"`

	// S3
	Region       string `yaml:"region" json:"region"`
	Endpoint     string `yaml:"endpoint" json:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style" json:"use_path_style"`
	PartSize     int64  `yaml:"part_size" json:"part_size"`
	Concurrency  int    `yaml:"concurrency" json:"concurrency"`

	// GCS
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// DefaultConfig returns a local store rooted at the working directory
func DefaultConfig() Config {
	return Config{
		Kind:        KindLocal,
		Root:        ".",
		PartSize:    5 * 1024 * 1024,
		Concurrency: 4,
	}
}

// Validate checks that the settings required by the backend are present
func (c Config) Validate() error {
	switch c.Kind {
	case KindLocal:
		if c.Root == "" {
			return errors.New(errors.ErrorTypeConfig, "local storage requires a root directory")
		}
	case KindS3:
		if c.Bucket == "" {
			return errors.New(errors.ErrorTypeConfig, "s3 storage requires a bucket")
		}
		if c.Region == "" {
			return errors.New(errors.ErrorTypeConfig, "s3 storage requires a region")
		}
	case KindGCS:
		if c.Bucket == "" {
			return errors.New(errors.ErrorTypeConfig, "gcs storage requires a bucket")
		}
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported storage kind: %q", c.Kind)
	}
	return nil
}

// Open builds the store described by cfg
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindS3:
		return NewS3Store(ctx, cfg)
	case KindGCS:
		return NewGCSStore(ctx, cfg)
	default:
		return NewLocalStore(cfg.Root)
	}
}

// cleanKey normalizes a relative object key and rejects keys escaping the root
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))[1:]
	if k == "" || strings.Contains(key, "\\") {
		return "", errors.Newf(errors.ErrorTypeConfig, "invalid object key %q", key)
	}
	for _, part := range strings.Split(strings.TrimSpace(key), "/") {
		if part == ".." {
			return "", errors.Newf(errors.ErrorTypeConfig, "object key %q escapes the store root", key)
		}
	}
	return k, nil
}

// joinKey prefixes a cleaned key with the store prefix
func joinKey(prefix, key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return k, nil
	}
	return prefix + "/" + k, nil
}
