// Package pool provides type-safe object pooling for buffers that are
// allocated per encode and discarded immediately afterwards.
//
// Architecture
//
// Pool[T] wraps sync.Pool with a factory, an optional reset function and
// allocation statistics. BufferPool layers power-of-two size buckets on top
// of Pool[[]byte] for raw byte scratch space, and the package-level
// GetBuffer/PutBuffer pair recycles *bytes.Buffer values used by the
// compressors.
//
// Usage Patterns
//
// Scratch bytes for a snapshot body:
//
//	body := pool.GetBytes(size)[:0]
//	defer pool.PutBytes(body)
//
// Growable buffer for a compressor:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
//
// Objects must not be used after they are returned to the pool, and slices
// handed out by a pooled object must be copied before it is returned.
package pool
