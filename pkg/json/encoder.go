// Package json encodes table rows as JSON with pooled buffers
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/structcol/pkg/pool"
	"github.com/ajitpratap0/structcol/pkg/structured"
)

// ObjectWriter builds one JSON object with fields in insertion order.
// Missing scalars are written as null.
type ObjectWriter struct {
	buf    *bytes.Buffer
	fields int
}

// NewObjectWriter starts an empty object on a pooled buffer. Call Release
// when done.
func NewObjectWriter() *ObjectWriter {
	buf := pool.GetBuffer()
	buf.WriteByte('{')
	return &ObjectWriter{buf: buf}
}

// WriteField appends key with the JSON encoding of s
func (w *ObjectWriter) WriteField(key string, s structured.Scalar) error {
	k, err := gojson.Marshal(key)
	if err != nil {
		return err
	}
	v, err := structured.MarshalScalar(s)
	if err != nil {
		return err
	}
	if w.fields > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(v)
	w.fields++
	return nil
}

// Bytes returns a copy of the closed object
func (w *ObjectWriter) Bytes() []byte {
	out := make([]byte, w.buf.Len()+1)
	copy(out, w.buf.Bytes())
	out[len(out)-1] = '}'
	return out
}

// Release returns the buffer to the pool
func (w *ObjectWriter) Release() {
	pool.PutBuffer(w.buf)
	w.buf = nil
}

// MarshalRow encodes the named columns of a row as an ordered object
func MarshalRow(columns []string, row map[string]structured.Scalar) ([]byte, error) {
	w := NewObjectWriter()
	defer w.Release()
	for _, name := range columns {
		if err := w.WriteField(name, row[name]); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// StreamingEncoder writes rows either as newline-delimited JSON or as one
// JSON array.
type StreamingEncoder struct {
	writer      io.Writer
	firstRecord bool
	isArray     bool
	err         error
}

// NewStreamingEncoder creates a new streaming encoder
func NewStreamingEncoder(w io.Writer, isArray bool) *StreamingEncoder {
	se := &StreamingEncoder{
		writer:      w,
		firstRecord: true,
		isArray:     isArray,
	}
	if isArray {
		se.write([]byte{'['})
	}
	return se
}

func (se *StreamingEncoder) write(p []byte) {
	if se.err != nil {
		return
	}
	_, se.err = se.writer.Write(p)
}

// EncodeRow encodes one row
func (se *StreamingEncoder) EncodeRow(columns []string, row map[string]structured.Scalar) error {
	data, err := MarshalRow(columns, row)
	if err != nil {
		return err
	}
	if se.isArray && !se.firstRecord {
		se.write([]byte{','})
	}
	se.firstRecord = false
	se.write(data)
	if !se.isArray {
		se.write([]byte{'\n'})
	}
	return se.err
}

// Close finalizes the encoding
func (se *StreamingEncoder) Close() error {
	if se.isArray {
		se.write([]byte("]\n"))
	}
	return se.err
}
