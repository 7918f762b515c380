package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := New(
		func() []int { return make([]int, 0, 4) },
		nil,
	)
	a := p.Get()
	_, inUse, gets := p.Stats()
	assert.Equal(t, int64(1), inUse)
	assert.Equal(t, int64(1), gets)

	p.Put(a)
	allocated, inUse, _ := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(0), inUse)
}

func TestBufferIsEmptyAfterReuse(t *testing.T) {
	b := GetBuffer()
	b.WriteString("payload")
	PutBuffer(b)

	again := GetBuffer()
	defer PutBuffer(again)
	assert.Equal(t, 0, again.Len())
}

func TestBufferPoolBuckets(t *testing.T) {
	bp := NewBufferPool()

	tests := []struct {
		size    int
		wantCap int
	}{
		{0, 4 << 10},
		{4 << 10, 4 << 10},
		{4<<10 + 1, 64 << 10},
		{2 << 20, 16 << 20},
	}
	for _, tt := range tests {
		b := bp.Get(tt.size)
		assert.Len(t, b, tt.size)
		assert.Equal(t, tt.wantCap, cap(b))
		bp.Put(b)
	}
}

func TestPoolConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := GetBytes(512)
				b[0] = byte(j)
				PutBytes(b)
			}
		}()
	}
	wg.Wait()
}
