package columnar

import (
	"context"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	colstore "github.com/ajitpratap0/structcol/pkg/columnar"
	"github.com/ajitpratap0/structcol/pkg/errors"
)

func writeParquet(w io.Writer, t *colstore.Table, config *WriterConfig) error {
	codec, err := getParquetCompression(config.Compression)
	if err != nil {
		return err
	}
	mem := config.allocator()

	rec, err := tableRecord(mem, t)
	if err != nil {
		return err
	}
	defer rec.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithAllocator(mem),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(mem),
	)

	fw, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Parquet writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Parquet row group")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Parquet writer")
	}
	return nil
}

func readParquet(r parquet.ReaderAtSeeker, config *ReaderConfig) (*colstore.Table, error) {
	mem := config.allocator()

	tbl, err := pqarrow.ReadTable(context.Background(), r,
		parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Parquet file")
	}
	defer tbl.Release()

	return tableFromArrow(tbl, config)
}

func getParquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	case "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	default:
		return compress.Codecs.Uncompressed, errors.Newf(errors.ErrorTypeConfig,
			"parquet format does not support %s compression", name)
	}
}
