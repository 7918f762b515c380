package columnar

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/structcol/pkg/compression"
	"github.com/ajitpratap0/structcol/pkg/errors"
	"github.com/ajitpratap0/structcol/pkg/metrics"
	"github.com/ajitpratap0/structcol/pkg/pool"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// Snapshot layout:
//
//	magic "SCOL" | version u8 | header length u32 | JSON header | body
//
// The body is every column's records as little-endian float64 bits, column
// after column, compressed as one block with the header's algorithm.
var snapshotMagic = [4]byte{'S', 'C', 'O', 'L'}

const snapshotVersion = 1

type snapshotHeader struct {
	Version   int              `json:"version"`
	Algorithm string           `json:"algorithm"`
	Rows      int              `json:"rows"`
	Columns   []snapshotColumn `json:"columns"`
}

type snapshotColumn struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
	Width int    `json:"width"`
}

// SnapshotOptions configures snapshot encoding
type SnapshotOptions struct {
	Algorithm compression.Algorithm
	Level     compression.Level
}

// DefaultSnapshotOptions returns zstd at the default level
func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{
		Algorithm: compression.Zstd,
		Level:     compression.Default,
	}
}

// EncodeSnapshot writes t to w as a compressed binary snapshot and returns
// the number of bytes written. NaN payload bits are preserved.
func EncodeSnapshot(w io.Writer, t *Table, opts SnapshotOptions) (int64, error) {
	comp, err := compression.NewCompressor(&compression.Config{Algorithm: opts.Algorithm, Level: opts.Level})
	if err != nil {
		return 0, err
	}

	cols := t.Columns()
	header := snapshotHeader{
		Version:   snapshotVersion,
		Algorithm: string(comp.Algorithm()),
		Rows:      t.Len(),
		Columns:   make([]snapshotColumn, len(cols)),
	}

	var size int
	for _, col := range cols {
		size += col.Buffer.ByteSize()
	}
	scratch := pool.GetBytes(size)
	defer pool.PutBytes(scratch)
	body := scratch[:0]
	for i, col := range cols {
		header.Columns[i] = snapshotColumn{
			Name:  col.Name,
			Dtype: col.Buffer.Layout().Name(),
			Width: col.Buffer.Width(),
		}
		for _, v := range col.Buffer.Data() {
			body = binary.LittleEndian.AppendUint64(body, math.Float64bits(v))
		}
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeData, "failed to encode snapshot header")
	}
	compressed, err := comp.Compress(body)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeData, "failed to compress snapshot body")
	}

	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	buf.Grow(len(snapshotMagic) + 5 + len(headerBytes) + len(compressed))
	buf.Write(snapshotMagic[:])
	buf.WriteByte(snapshotVersion)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(headerBytes))) //nolint:gosec // G115: header is a few hundred bytes
	buf.Write(headerBytes)
	buf.Write(compressed)

	n, err := buf.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(err, errors.ErrorTypeFile, "failed to write snapshot")
	}
	metrics.Snapshots.WithLabelValues("encode", header.Algorithm).Inc()
	return n, nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot, resolving each
// column's dtype through reg.
func DecodeSnapshot(r io.Reader, reg *structured.Registry) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read snapshot")
	}

	if len(data) < len(snapshotMagic)+5 || !bytes.Equal(data[:4], snapshotMagic[:]) {
		return nil, errors.New(errors.ErrorTypeData, "not a column snapshot")
	}
	if v := data[4]; v != snapshotVersion {
		return nil, errors.Newf(errors.ErrorTypeData, "unsupported snapshot version %d", v)
	}
	headerLen := int(binary.LittleEndian.Uint32(data[5:9]))
	if len(data) < 9+headerLen {
		return nil, errors.New(errors.ErrorTypeData, "truncated snapshot header")
	}

	var header snapshotHeader
	if err := json.Unmarshal(data[9:9+headerLen], &header); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid snapshot header")
	}

	algo, err := compression.ParseAlgorithm(header.Algorithm)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid snapshot header")
	}
	comp, err := compression.NewCompressor(&compression.Config{Algorithm: algo})
	if err != nil {
		return nil, err
	}
	body, err := comp.Decompress(data[9+headerLen:])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decompress snapshot body")
	}

	if header.Rows < 0 {
		return nil, errors.Newf(errors.ErrorTypeData, "invalid snapshot row count %d", header.Rows)
	}

	cols := make([]Column, len(header.Columns))
	offset := 0
	for i, hc := range header.Columns {
		if hc.Width <= 0 {
			return nil, errors.Newf(errors.ErrorTypeData, "column %q: invalid record width %d", hc.Name, hc.Width)
		}
		layout, err := reg.Lookup(hc.Dtype)
		if err != nil {
			return nil, err
		}
		if structured.Width(layout) != hc.Width {
			return nil, errors.Newf(errors.ErrorTypeData,
				"column %q: dtype %s has width %d, snapshot has %d",
				hc.Name, hc.Dtype, structured.Width(layout), hc.Width)
		}

		if remaining := len(body)/8 - offset; header.Rows > remaining/hc.Width {
			return nil, errors.Newf(errors.ErrorTypeData, "truncated snapshot body in column %q", hc.Name)
		}
		n := header.Rows * hc.Width
		values := make([]float64, n)
		for j := range values {
			p := (offset + j) * 8
			values[j] = math.Float64frombits(binary.LittleEndian.Uint64(body[p : p+8]))
		}
		offset += n

		b, err := structured.NewBuffer(values, layout)
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Name: hc.Name, Buffer: b}
	}
	if offset*8 != len(body) {
		return nil, errors.Newf(errors.ErrorTypeData, "snapshot body has %d trailing bytes", len(body)-offset*8)
	}

	metrics.Snapshots.WithLabelValues("decode", header.Algorithm).Inc()
	return NewTable(cols...)
}
