package config

import (
	"strings"

	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/formats/columnar"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/storage"
)

// Config is the structcol configuration. It is organized into sections:
// logging, output format, object storage and extra dtypes to register.
type Config struct {
	// Logging configures the global zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Output selects how tables are encoded
	Output OutputConfig `yaml:"output" json:"output"`

	// Storage selects where encoded tables are placed
	Storage storage.Config `yaml:"storage" json:"storage"`

	// Dtypes lists canonical dtype names to resolve and pre-register at
	// startup, e.g. "dist[categorical, low, high]".
	Dtypes []string `yaml:"dtypes" json:"dtypes"`
}

// OutputConfig controls table encoding
type OutputConfig struct {
	// Format is parquet, arrow, avro or snapshot
	Format string `yaml:"format" json:"format"`
	// Compression is a codec name understood by the format
	Compression string `yaml:"compression" json:"compression"`
}

// Default returns a configuration with sensible defaults: info-level JSON
// logs, snappy Parquet output and a local store in the working directory.
func Default() *Config {
	return &Config{
		Logging: logger.DefaultConfig(),
		Output: OutputConfig{
			Format:      string(columnar.Parquet),
			Compression: "snappy",
		},
		Storage: storage.DefaultConfig(),
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Encoding) {
	case "", "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "logging.encoding must be json or console, got %q", c.Logging.Encoding)
	}
	if _, err := columnar.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	for _, name := range c.Dtypes {
		if strings.TrimSpace(name) == "" {
			return errors.New(errors.ErrorTypeConfig, "dtypes entries cannot be empty")
		}
	}
	return nil
}

// WriterConfig returns the table writer settings of the output section
func (c *Config) WriterConfig() (*columnar.WriterConfig, error) {
	format, err := columnar.ParseFormat(c.Output.Format)
	if err != nil {
		return nil, err
	}
	return &columnar.WriterConfig{Format: format, Compression: c.Output.Compression}, nil
}
