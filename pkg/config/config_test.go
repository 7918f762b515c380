package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/formats/columnar"
	"github.com/ajitpratap0/structcol/pkg/storage"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	wc, err := cfg.WriterConfig()
	require.NoError(t, err)
	assert.Equal(t, columnar.Parquet, wc.Format)
	assert.Equal(t, "snappy", wc.Compression)
}

func TestLoad(t *testing.T) {
	t.Setenv("STRUCTCOL_TEST_BUCKET", "tables-bucket")

	path := filepath.Join(t.TempDir(), "structcol.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
  encoding: console
output:
  format: avro
  compression: deflate
storage:
  kind: s3
  bucket: ${STRUCTCOL_TEST_BUCKET}
  region: eu-west-1
  root: runs/${STRUCTCOL_TEST_MISSING}x
dtypes:
  - "dist[categorical, low, high]"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "avro", cfg.Output.Format)
	assert.Equal(t, storage.KindS3, cfg.Storage.Kind)
	assert.Equal(t, "tables-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "runs/x", cfg.Storage.Root)
	assert.Equal(t, int64(5*1024*1024), cfg.Storage.PartSize)
	assert.Equal(t, []string{"dist[categorical, low, high]"}, cfg.Dtypes)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown format", func(c *Config) { c.Output.Format = "orc" }},
		{"bad encoding", func(c *Config) { c.Logging.Encoding = "xml" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Kind = storage.KindS3 }},
		{"empty dtype", func(c *Config) { c.Dtypes = []string{" "} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.True(t, errors.IsType(cfg.Validate(), errors.ErrorTypeConfig))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Output.Format = "arrow"
	cfg.Dtypes = []string{"dist[lognorm]"}
	require.NoError(t, Save(path, cfg))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Output, back.Output)
	assert.Equal(t, cfg.Storage, back.Storage)
	assert.Equal(t, cfg.Dtypes, back.Dtypes)
	assert.Equal(t, cfg.Logging.Level, back.Logging.Level)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("A_VAR", "a")
	assert.Equal(t, "x-a-y", substituteEnvVars("x-${A_VAR}-y"))
	assert.Equal(t, "unterminated ${A_VAR", substituteEnvVars("unterminated ${A_VAR"))
}
