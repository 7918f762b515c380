package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with additional features like statistics tracking
// and automatic reset functionality. The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function is called before an object is returned to the pool.
//
// Example:
//
//	p := New(
//	    func() *bytes.Buffer { return new(bytes.Buffer) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the number of objects created by the pool, the number
// currently checked out and the total number of Get calls. Gets minus
// allocated is the number of reuses.
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

// BufferPool manages byte slice pooling with size-based buckets.
// It maintains one pool per power-of-two size from 4KB to 64MB and selects
// the smallest bucket that fits a request. Larger requests are allocated
// directly and never pooled.
type BufferPool struct {
	pools []*Pool[[]byte]
	sizes []int
}

// NewBufferPool creates a buffer pool with buckets of 4KB, 64KB, 1MB,
// 16MB and 64MB.
func NewBufferPool() *BufferPool {
	sizes := []int{
		4 << 10,  // 4KB
		64 << 10, // 64KB
		1 << 20,  // 1MB
		16 << 20, // 16MB
		64 << 20, // 64MB
	}

	pools := make([]*Pool[[]byte], len(sizes))
	for i, size := range sizes {
		size := size
		pools[i] = New(func() []byte { return make([]byte, size) }, nil)
	}
	return &BufferPool{pools: pools, sizes: sizes}
}

// Get returns a slice of length size whose capacity is a bucket size when
// one fits.
func (p *BufferPool) Get(size int) []byte {
	for i, s := range p.sizes {
		if s >= size {
			return p.pools[i].Get()[:size]
		}
	}
	return make([]byte, size)
}

// Put returns a slice obtained from Get. Slices whose capacity matches no
// bucket are left to the garbage collector.
func (p *BufferPool) Put(buf []byte) {
	size := cap(buf)
	for i, s := range p.sizes {
		if s == size {
			p.pools[i].Put(buf[:size])
			return
		}
	}
}

var (
	byteSlices = NewBufferPool()

	buffers = New(
		func() *bytes.Buffer { return new(bytes.Buffer) },
		func(b *bytes.Buffer) { b.Reset() },
	)
)

// GetBytes returns a pooled byte slice of length size
func GetBytes(size int) []byte { return byteSlices.Get(size) }

// PutBytes returns a slice obtained from GetBytes
func PutBytes(b []byte) { byteSlices.Put(b) }

// GetBuffer returns an empty pooled bytes.Buffer
func GetBuffer() *bytes.Buffer { return buffers.Get() }

// PutBuffer resets b and returns it to the pool
func PutBuffer(b *bytes.Buffer) { buffers.Put(b) }

// BufferStats reports the statistics of the bytes.Buffer pool
func BufferStats() (allocated, inUse, gets int64) { return buffers.Stats() }
