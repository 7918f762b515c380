package columnar

import (
	"io"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"

	colstore "github.com/ajitpratap0/structcol/pkg/columnar"
	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// OCF metadata key holding the ordered column list with dtype names
const avroColumnsKey = "structcol.columns"

type avroColumn struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
}

// avroSchema builds an Avro schema with one nested record per column.
// Missing values stay NaN, so no union with null is needed.
func avroSchema(t *colstore.Table) (string, error) {
	fields := make([]map[string]interface{}, 0, t.ColumnCount())
	for _, col := range t.Columns() {
		if !isAvroName(col.Name) {
			return "", errors.Newf(errors.ErrorTypeConfig, "column %q is not a valid Avro name", col.Name)
		}
		inner := make([]map[string]interface{}, 0, col.Buffer.Width())
		for _, f := range col.Buffer.Layout().Fields() {
			if !isAvroName(f.Name) {
				return "", errors.Newf(errors.ErrorTypeConfig, "field %q of column %q is not a valid Avro name", f.Name, col.Name)
			}
			inner = append(inner, map[string]interface{}{"name": f.Name, "type": "double"})
		}
		fields = append(fields, map[string]interface{}{
			"name": col.Name,
			"type": map[string]interface{}{
				"type":   "record",
				"name":   col.Name + "_record",
				"fields": inner,
			},
		})
	}

	schema, err := json.Marshal(map[string]interface{}{
		"type":      "record",
		"name":      "table",
		"namespace": "structcol",
		"fields":    fields,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode Avro schema")
	}
	return string(schema), nil
}

// isAvroName reports whether s matches [A-Za-z_][A-Za-z0-9_]*
func isAvroName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func getAvroCompression(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "none", "null":
		return goavro.CompressionNullLabel, nil
	case "snappy":
		return goavro.CompressionSnappyLabel, nil
	case "deflate":
		return goavro.CompressionDeflateLabel, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "avro format does not support %s compression", name)
	}
}

func writeAvro(w io.Writer, t *colstore.Table, config *WriterConfig) error {
	compressionName, err := getAvroCompression(config.Compression)
	if err != nil {
		return err
	}
	schema, err := avroSchema(t)
	if err != nil {
		return err
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to create Avro codec")
	}

	cols := t.Columns()
	meta := make([]avroColumn, len(cols))
	for i, col := range cols {
		meta[i] = avroColumn{Name: col.Name, Dtype: col.Buffer.Layout().Name()}
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode Avro metadata")
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compressionName,
		MetaData:        map[string][]byte{avroColumnsKey: metaBytes},
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Avro writer")
	}

	names := make([][]string, len(cols))
	for i, col := range cols {
		names[i] = structured.FieldNames(col.Buffer.Layout())
	}

	rows := make([]interface{}, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		datum := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			rec, err := col.Buffer.Record(r)
			if err != nil {
				return err
			}
			inner := make(map[string]interface{}, len(rec))
			for j, v := range rec {
				inner[names[i][j]] = v
			}
			datum[col.Name] = inner
		}
		rows = append(rows, datum)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := ocfWriter.Append(rows); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write Avro records")
	}
	return nil
}

func readAvro(r io.Reader, config *ReaderConfig) (*colstore.Table, error) {
	ocfReader, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create Avro reader")
	}

	var meta []avroColumn
	raw, ok := ocfReader.MetaData()[avroColumnsKey]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "avro file has no %s metadata", avroColumnsKey)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid Avro column metadata")
	}

	layouts := make([]structured.Layout, len(meta))
	values := make([][]float64, len(meta))
	for i, m := range meta {
		layouts[i], err = config.resolve(m.Name, m.Dtype)
		if err != nil {
			return nil, err
		}
	}

	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read Avro record")
		}
		row, ok := datum.(map[string]interface{})
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "unexpected Avro datum %T", datum)
		}
		for i, m := range meta {
			inner, _ := row[m.Name].(map[string]interface{})
			for _, f := range layouts[i].Fields() {
				v, ok := inner[f.Name].(float64)
				if !ok {
					v = math.NaN()
				}
				values[i] = append(values[i], v)
			}
		}
	}
	if err := ocfReader.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to scan Avro file")
	}

	cols := make([]colstore.Column, len(meta))
	for i, m := range meta {
		if values[i] == nil {
			values[i] = []float64{}
		}
		b, err := structured.NewBuffer(values[i], layouts[i])
		if err != nil {
			return nil, err
		}
		cols[i] = colstore.Column{Name: m.Name, Buffer: b}
	}
	return colstore.NewTable(cols...)
}
