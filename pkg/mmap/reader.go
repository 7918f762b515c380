// Package mmap provides read-only memory-mapped files for loading persisted
// tables without an intermediate read buffer.
package mmap

import (
	"io"
	"os"
	"sync"

	"github.com/ajitpratap0/structcol/pkg/errors"
)

// Reader is a memory-mapped file. It implements io.Reader, io.ReaderAt,
// io.Seeker and io.Closer over the mapped bytes. On platforms without mmap
// support the file is read into memory instead.
type Reader struct {
	file *os.File
	data []byte
	off  int64

	// mapped reports whether data must be unmapped on Close
	mapped bool
	mu     sync.Mutex
}

// Open maps filename read-only. Empty files are not mapped.
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename) //nolint:gosec // G304: path is resolved by the caller
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat file").WithDetail("path", filename)
	}
	size := stat.Size()
	if size == 0 {
		return &Reader{file: file}, nil
	}

	if !mapped {
		data, err := io.ReadAll(file)
		if err != nil {
			file.Close()
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read file").WithDetail("path", filename)
		}
		return &Reader{file: file, data: data}, nil
	}

	data, err := mmap(int(file.Fd()), int(size))
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to mmap file").WithDetail("path", filename)
	}
	// advice is only a hint
	_ = adviseSequential(data)

	return &Reader{file: file, data: data, mapped: true}, nil
}

// Size returns the file size in bytes
func (r *Reader) Size() int64 {
	return int64(len(r.data))
}

// Bytes returns the mapped data. The slice is invalid after Close.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Read implements io.Reader
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.off:])
	r.off += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Newf(errors.ErrorTypeIndex, "negative offset %d", off)
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.off + offset
	case io.SeekEnd:
		abs = int64(len(r.data)) + offset
	default:
		return 0, errors.Newf(errors.ErrorTypeConfig, "invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.Newf(errors.ErrorTypeIndex, "negative position %d", abs)
	}
	r.off = abs
	return abs, nil
}

// Close unmaps the file and closes it
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.mapped && r.data != nil {
		err = munmap(r.data)
	}
	r.data = nil
	r.mapped = false

	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
