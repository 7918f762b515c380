package columnar

import (
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	colstore "github.com/ajitpratap0/structcol/pkg/columnar"
	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/logger"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// Metadata keys carrying canonical dtype names. The schema-level key is
// suffixed with the column name; the field-level key is bare.
const (
	dtypeKey       = "dtype"
	schemaDtypeKey = "dtype:"
)

// tableSchema builds the Arrow schema of a table: one struct field per
// column, with the column's dtype name in both schema and field metadata.
func tableSchema(t *colstore.Table) *arrow.Schema {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	keys := make([]string, len(cols))
	values := make([]string, len(cols))
	for i, col := range cols {
		dtype := col.Buffer.Layout().Name()
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     structured.ArrowType(col.Buffer.Layout()),
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{dtypeKey}, []string{dtype}),
		}
		keys[i] = schemaDtypeKey + col.Name
		values[i] = dtype
	}
	md := arrow.NewMetadata(keys, values)
	return arrow.NewSchema(fields, &md)
}

// tableRecord converts a table to a single Arrow record batch. The caller
// must Release the result.
func tableRecord(mem memory.Allocator, t *colstore.Table) (arrow.Record, error) {
	schema := tableSchema(t)
	cols := t.Columns()

	arrays := make([]arrow.Array, 0, len(cols))
	defer func() {
		for _, arr := range arrays {
			arr.Release()
		}
	}()

	for _, col := range cols {
		arr, err := structured.ToArrow(mem, col.Buffer)
		if err != nil {
			return nil, err
		}
		arrays = append(arrays, arr)
	}
	return array.NewRecord(schema, arrays, int64(t.Len())), nil
}

// recordedDtype returns the dtype name stored for field i of schema
func recordedDtype(schema *arrow.Schema, i int) string {
	field := schema.Field(i)
	md := schema.Metadata()
	if idx := md.FindKey(schemaDtypeKey + field.Name); idx >= 0 {
		return md.Values()[idx]
	}
	if idx := field.Metadata.FindKey(dtypeKey); idx >= 0 {
		return field.Metadata.Values()[idx]
	}
	return ""
}

// tableFromArrow converts an Arrow table back to a structured table
func tableFromArrow(tbl arrow.Table, config *ReaderConfig) (*colstore.Table, error) {
	schema := tbl.Schema()
	mem := config.allocator()

	cols := make([]colstore.Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		name := schema.Field(i).Name
		layout, err := config.resolve(name, recordedDtype(schema, i))
		if err != nil {
			return nil, err
		}
		// bridge errors, arrow-go's included, are returned as is
		b, err := structured.FromChunked(tbl.Column(i).Data(), layout, mem)
		if err != nil {
			logger.Component("formats").Debug("column decode failed",
				zap.String("column", name), zap.String("dtype", layout.Name()), zap.Error(err))
			return nil, err
		}
		cols = append(cols, colstore.Column{Name: name, Buffer: b})
	}
	return colstore.NewTable(cols...)
}

func arrowCompression(name string) ([]ipc.Option, error) {
	switch strings.ToLower(name) {
	case "", "none", "uncompressed":
		return nil, nil
	case "lz4":
		return []ipc.Option{ipc.WithLZ4()}, nil
	case "zstd":
		return []ipc.Option{ipc.WithZstd()}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "arrow format does not support %s compression", name)
	}
}

func writeArrow(w io.Writer, t *colstore.Table, config *WriterConfig) error {
	opts, err := arrowCompression(config.Compression)
	if err != nil {
		return err
	}
	mem := config.allocator()

	rec, err := tableRecord(mem, t)
	if err != nil {
		return err
	}
	defer rec.Release()

	opts = append(opts, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	fw, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Arrow writer")
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Arrow record batch")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close Arrow writer")
	}
	return nil
}

func readArrow(r ipc.ReadAtSeeker, config *ReaderConfig) (*colstore.Table, error) {
	mem := config.allocator()

	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create Arrow reader")
	}
	defer fr.Close()

	records := make([]arrow.Record, 0, fr.NumRecords())
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Arrow record batch")
		}
		rec.Retain()
		records = append(records, rec)
	}

	tbl := array.NewTableFromRecords(fr.Schema(), records)
	defer tbl.Release()

	return tableFromArrow(tbl, config)
}
