package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

func TestLocalStorePutGet(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "tables/foo.parquet", bytes.NewReader([]byte("payload")), nil))

	_, err = os.Stat(filepath.Join(root, "tables", "foo.parquet"))
	require.NoError(t, err)

	rc, err := store.Get(ctx, "/tables/./foo.parquet")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, KindLocal, store.Kind())
}

func TestLocalStoreOverwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", bytes.NewReader([]byte("one")), nil))
	require.NoError(t, store.Put(ctx, "k", bytes.NewReader([]byte("two")), nil))

	rc, err := store.Get(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestLocalStoreErrors(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	err = store.Put(ctx, "../escape", bytes.NewReader(nil), nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	err = store.Put(ctx, "", bytes.NewReader(nil), nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.Put(cancelled, "k", bytes.NewReader(nil), nil), context.Canceled)
}

func TestJoinKey(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "a.parquet", "a.parquet"},
		{"data/", "a.parquet", "data/a.parquet"},
		{"/data", "/x//y.avro", "data/x/y.avro"},
	}
	for _, tt := range tests {
		got, err := joinKey(tt.prefix, tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown kind", Config{Kind: "ftp"}},
		{"local without root", Config{Kind: KindLocal}},
		{"s3 without bucket", Config{Kind: KindS3, Region: "us-east-1"}},
		{"s3 without region", Config{Kind: KindS3, Bucket: "b"}},
		{"gcs without bucket", Config{Kind: KindGCS}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

			_, err = Open(context.Background(), tt.cfg)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestOpenLocal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = t.TempDir()
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, KindLocal, store.Kind())
}

// MockS3Client is a testify mock of the S3 API used by S3Store
type MockS3Client struct {
	mock.Mock
	uploaded map[string][]byte
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if params.Body != nil {
		data, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		m.uploaded[*params.Key] = data
	}
	if out := args.Get(0); out != nil {
		return out.(*s3.PutObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*s3.GetObjectOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockS3Client) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	panic("multipart upload not expected")
}

func (m *MockS3Client) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	panic("multipart upload not expected")
}

func (m *MockS3Client) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	panic("multipart upload not expected")
}

func (m *MockS3Client) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	panic("multipart upload not expected")
}

func newMockStore() (*MockS3Client, *S3Store) {
	client := &MockS3Client{uploaded: make(map[string][]byte)}
	store := NewS3StoreWithClient(client, Config{Kind: KindS3, Bucket: "test-bucket", Root: "prefix", Region: "us-east-1"})
	return client, store
}

func TestS3StorePut(t *testing.T) {
	client, store := newMockStore()

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "test-bucket" &&
			*input.Key == "prefix/tables/foo.arrow" &&
			input.Metadata["dtype"] == "dist[lognorm]"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	err := store.Put(context.Background(), "tables/foo.arrow", bytes.NewReader([]byte("payload")),
		map[string]string{"dtype": "dist[lognorm]"})
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), client.uploaded["prefix/tables/foo.arrow"])
	client.AssertExpectations(t)
}

func TestS3StoreGet(t *testing.T) {
	client, store := newMockStore()

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Key == "prefix/foo"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("body")))}, nil).Once()

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
		return *input.Key == "prefix/missing"
	})).Return(nil, &types.NoSuchKey{}).Once()

	rc, err := store.Get(context.Background(), "foo")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))

	_, err = store.Get(context.Background(), "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	client.AssertExpectations(t)
}

func TestS3StorePutFailure(t *testing.T) {
	client, store := newMockStore()
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	err := store.Put(context.Background(), "foo", bytes.NewReader([]byte("x")), nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
