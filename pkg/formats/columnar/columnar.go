// Package columnar persists tables of structured columns as Parquet, Arrow
// IPC, Avro or compressed snapshot files.
//
// Every format records each column's canonical dtype name, so reading a file
// back resolves the column layouts through a structured.Registry and yields
// a table equal to the one written.
package columnar

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	colstore "github.com/ajitpratap0/structcol/pkg/columnar"
	"github.com/ajitpratap0/structcol/pkg/compression"
	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/metrics"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// Format represents a table file format
type Format string

const (
	// Parquet is Apache Parquet format
	Parquet Format = "parquet"
	// Arrow is Apache Arrow IPC file format
	Arrow Format = "arrow"
	// Avro is Apache Avro object container format
	Avro Format = "avro"
	// Snapshot is the compressed raw-record snapshot format
	Snapshot Format = "snapshot"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{Parquet, Arrow, Avro, Snapshot}
}

// ParseFormat resolves a case-insensitive format name
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if GetFormatInfo(f) == nil {
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported table format: %s", name)
	}
	return f, nil
}

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats() {
		if GetFormatInfo(f).FileExtension == ext {
			return f, nil
		}
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "cannot infer table format from %q", path)
}

// WriterConfig configures table writers
type WriterConfig struct {
	Format Format
	// Compression is a codec name understood by the format: parquet takes
	// snappy/zstd/gzip/lz4/brotli/none, arrow takes lz4/zstd/none, avro
	// takes snappy/deflate/none and snapshot takes any compression.Algorithm.
	Compression string
	Allocator   memory.Allocator
}

// DefaultWriterConfig returns default writer configuration
func DefaultWriterConfig() *WriterConfig {
	return &WriterConfig{
		Format:      Parquet,
		Compression: "snappy",
	}
}

// ReaderConfig configures table readers
type ReaderConfig struct {
	Format Format
	// Registry resolves dtype names; structured.Default() when nil
	Registry *structured.Registry
	// Dtypes overrides the dtype name recorded for a column
	Dtypes    map[string]string
	Allocator memory.Allocator
}

// DefaultReaderConfig returns default reader configuration
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		Format: Parquet,
	}
}

func (c *WriterConfig) allocator() memory.Allocator {
	if c.Allocator == nil {
		return memory.NewGoAllocator()
	}
	return c.Allocator
}

func (c *ReaderConfig) allocator() memory.Allocator {
	if c.Allocator == nil {
		return memory.NewGoAllocator()
	}
	return c.Allocator
}

func (c *ReaderConfig) registry() *structured.Registry {
	if c.Registry == nil {
		return structured.Default()
	}
	return c.Registry
}

// resolve finds the layout for a column from an override or the recorded
// dtype name.
func (c *ReaderConfig) resolve(column, recorded string) (structured.Layout, error) {
	name := recorded
	if override, ok := c.Dtypes[column]; ok {
		name = override
	}
	if name == "" {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "no dtype recorded for column %q", column).
			WithDetail("column", column)
	}
	return c.registry().Lookup(name)
}

type readAtSeeker interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// countingWriter counts bytes passed to the underlying writer
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTable encodes t to w and returns the number of bytes written
func WriteTable(w io.Writer, t *colstore.Table, config *WriterConfig) (int64, error) {
	if config == nil {
		config = DefaultWriterConfig()
	}

	timer := metrics.NewTimer()
	cw := &countingWriter{w: w}

	var err error
	switch config.Format {
	case Parquet:
		err = writeParquet(cw, t, config)
	case Arrow:
		err = writeArrow(cw, t, config)
	case Avro:
		err = writeAvro(cw, t, config)
	case Snapshot:
		err = writeSnapshot(cw, t, config)
	default:
		return 0, errors.Newf(errors.ErrorTypeConfig, "unsupported table format: %s", config.Format)
	}
	if err != nil {
		return cw.n, err
	}

	metrics.ObserveWrite(string(config.Format), t.Len(), cw.n, timer.Stop())
	logger.Component("formats").Debug("table written",
		zap.String("format", string(config.Format)),
		zap.Int("rows", t.Len()),
		zap.Int("columns", t.ColumnCount()),
		zap.Int64("bytes", cw.n))
	return cw.n, nil
}

// ReadTable decodes a table from r
func ReadTable(r io.Reader, config *ReaderConfig) (*colstore.Table, error) {
	if config == nil {
		config = DefaultReaderConfig()
	}

	// Parquet and Arrow need random access; other readers are buffered
	src, ok := r.(readAtSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read table data")
		}
		src = bytes.NewReader(data)
	}

	timer := metrics.NewTimer()
	var (
		t   *colstore.Table
		err error
	)
	switch config.Format {
	case Parquet:
		t, err = readParquet(src, config)
	case Arrow:
		t, err = readArrow(src, config)
	case Avro:
		t, err = readAvro(src, config)
	case Snapshot:
		t, err = colstore.DecodeSnapshot(src, config.registry())
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported table format: %s", config.Format)
	}
	if err != nil {
		return nil, err
	}

	metrics.ObserveRead(string(config.Format), t.Len(), timer.Stop())
	logger.Component("formats").Debug("table read",
		zap.String("format", string(config.Format)),
		zap.Int("rows", t.Len()),
		zap.Int("columns", t.ColumnCount()))
	return t, nil
}

func writeSnapshot(w io.Writer, t *colstore.Table, config *WriterConfig) error {
	algo, err := compression.ParseAlgorithm(config.Compression)
	if err != nil {
		return err
	}
	_, err = colstore.EncodeSnapshot(w, t, colstore.SnapshotOptions{Algorithm: algo, Level: compression.Default})
	return err
}

// FormatInfo provides information about table formats
type FormatInfo struct {
	Format           Format
	Name             string
	Description      string
	FileExtension    string
	MIMEType         string
	SupportsCompress bool
}

// GetFormatInfo returns information about a format, or nil if unknown
func GetFormatInfo(format Format) *FormatInfo {
	switch format {
	case Parquet:
		return &FormatInfo{
			Format:           Parquet,
			Name:             "Apache Parquet",
			Description:      "Columnar storage format optimized for analytics",
			FileExtension:    ".parquet",
			MIMEType:         "application/x-parquet",
			SupportsCompress: true,
		}
	case Arrow:
		return &FormatInfo{
			Format:           Arrow,
			Name:             "Apache Arrow",
			Description:      "Arrow IPC file format",
			FileExtension:    ".arrow",
			MIMEType:         "application/vnd.apache.arrow.file",
			SupportsCompress: true,
		}
	case Avro:
		return &FormatInfo{
			Format:           Avro,
			Name:             "Apache Avro",
			Description:      "Row-oriented object container format",
			FileExtension:    ".avro",
			MIMEType:         "application/avro",
			SupportsCompress: true,
		}
	case Snapshot:
		return &FormatInfo{
			Format:           Snapshot,
			Name:             "Column snapshot",
			Description:      "Raw little-endian records with a JSON header",
			FileExtension:    ".scol",
			MIMEType:         "application/octet-stream",
			SupportsCompress: true,
		}
	default:
		return nil
	}
}
