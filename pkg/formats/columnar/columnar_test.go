package columnar

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	colstore "github.com/ajitpratap0/structcol/pkg/columnar"
	"github.com/ajitpratap0/structcol/pkg/dist"
	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/structured"
	"github.com/ajitpratap0/structcol/pkg/testutil"
)

func sampleTable(t *testing.T) *colstore.Table { return testutil.SampleTable(t) }

func testRegistry(t *testing.T) *structured.Registry { return testutil.Registry(t) }

func TestTableRoundTrip(t *testing.T) {
	tests := []struct {
		format      Format
		compression string
	}{
		{Parquet, "snappy"},
		{Parquet, "zstd"},
		{Parquet, "none"},
		{Arrow, ""},
		{Arrow, "lz4"},
		{Arrow, "zstd"},
		{Avro, "null"},
		{Avro, "deflate"},
		{Avro, "snappy"},
		{Snapshot, "zstd"},
		{Snapshot, "s2"},
	}

	table := sampleTable(t)
	reg := testRegistry(t)

	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.compression, func(t *testing.T) {
			mem := memory.NewGoAllocator()

			var buf bytes.Buffer
			n, err := WriteTable(&buf, table, &WriterConfig{
				Format:      tt.format,
				Compression: tt.compression,
				Allocator:   mem,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			back, err := ReadTable(&buf, &ReaderConfig{Format: tt.format, Registry: reg, Allocator: mem})
			require.NoError(t, err)
			assert.True(t, table.Equal(back))

			col, err := back.GetColumn("y")
			require.NoError(t, err)
			assert.Equal(t, []bool{false, true, false}, col.IsMissing())
			assert.True(t, col.Layout().Equal(dist.LogNormalDtype))
		})
	}
}

func TestParquetFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.parquet")
	table := sampleTable(t)

	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = WriteTable(f, table, DefaultWriterConfig())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	format, err := FormatFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, Parquet, format)

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	back, err := ReadTable(f, &ReaderConfig{Format: format, Registry: testRegistry(t)})
	require.NoError(t, err)
	assert.True(t, table.Equal(back))

	x, err := back.GetColumn("x")
	require.NoError(t, err)
	got, err := x.Get(2)
	require.NoError(t, err)
	want, err := dist.NewCategorical(dist.MustCategoricalDtype("alpha", "beta", "gamma"), 0.3, 0.0, 0.7)
	require.NoError(t, err)
	assert.True(t, want.Equal(got.(dist.Categorical)))
}

func TestReadTableUnknownDtype(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteTable(&buf, sampleTable(t), &WriterConfig{Format: Arrow})
	require.NoError(t, err)

	_, err = ReadTable(bytes.NewReader(buf.Bytes()), &ReaderConfig{Format: Arrow, Registry: structured.NewRegistry()})
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestReadTableDtypeOverride(t *testing.T) {
	s, err := structured.NewSchema("loc_scale", structured.Float64Fields("mu", "sigma"))
	require.NoError(t, err)
	reg := testRegistry(t)
	require.NoError(t, reg.Register(s))

	var buf bytes.Buffer
	_, err = WriteTable(&buf, sampleTable(t), &WriterConfig{Format: Arrow})
	require.NoError(t, err)

	back, err := ReadTable(&buf, &ReaderConfig{
		Format:   Arrow,
		Registry: reg,
		Dtypes:   map[string]string{"y": "loc_scale"},
	})
	require.NoError(t, err)

	y, err := back.GetColumn("y")
	require.NoError(t, err)
	assert.Equal(t, "loc_scale", y.Layout().Name())
	rec, err := y.Record(2)
	require.NoError(t, err)
	assert.Equal(t, structured.Record{2, 0.25}, rec)
}

func TestReadTableBridgeErrorsPassThrough(t *testing.T) {
	s, err := structured.NewSchema("shape_rate", structured.Float64Fields("shape", "rate"))
	require.NoError(t, err)
	reg := testRegistry(t)
	require.NoError(t, reg.Register(s))

	for _, format := range []Format{Arrow, Parquet} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			_, err := WriteTable(&buf, sampleTable(t), &WriterConfig{Format: format})
			require.NoError(t, err)

			_, err = ReadTable(&buf, &ReaderConfig{
				Format:   format,
				Registry: reg,
				Dtypes:   map[string]string{"y": "shape_rate"},
			})
			require.Error(t, err)
			assert.Equal(t, errors.ErrorTypeTypeMismatch, errors.TypeOf(err))
			assert.Contains(t, err.Error(), `no field "shape"`)
		})
	}
}

func TestWriterConfigErrors(t *testing.T) {
	table := sampleTable(t)

	_, err := WriteTable(&bytes.Buffer{}, table, &WriterConfig{Format: "orc"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = WriteTable(&bytes.Buffer{}, table, &WriterConfig{Format: Avro, Compression: "zstd"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = WriteTable(&bytes.Buffer{}, table, &WriterConfig{Format: Arrow, Compression: "gzip"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestAvroRejectsInvalidNames(t *testing.T) {
	b, err := structured.Empty(1, dist.BernoulliDtype)
	require.NoError(t, err)
	table, err := colstore.NewTable(colstore.Column{Name: "bad name", Buffer: b})
	require.NoError(t, err)

	_, err = WriteTable(&bytes.Buffer{}, table, &WriterConfig{Format: Avro})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestAvroEmptyTable(t *testing.T) {
	b, err := structured.Empty(0, dist.BernoulliDtype)
	require.NoError(t, err)
	table, err := colstore.NewTable(colstore.Column{Name: "p", Buffer: b})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = WriteTable(&buf, table, &WriterConfig{Format: Avro})
	require.NoError(t, err)

	back, err := ReadTable(&buf, &ReaderConfig{Format: Avro, Registry: testRegistry(t)})
	require.NoError(t, err)
	assert.Equal(t, 0, back.Len())
	assert.Equal(t, []string{"p"}, back.ColumnNames())
	col, err := back.GetColumn("p")
	require.NoError(t, err)
	assert.True(t, dist.BernoulliDtype.Equal(col.Layout()))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Parquet")
	require.NoError(t, err)
	assert.Equal(t, Parquet, f)

	_, err = ParseFormat("orc")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = FormatFromPath("table.csv")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	f, err = FormatFromPath("/tmp/x.SCOL")
	require.NoError(t, err)
	assert.Equal(t, Snapshot, f)
}
