package audio

import (
	"sync"
	"sync/atomic"
)

// Buffer is a bounded chunk queue sitting between the capture
// collaborator and the live analysis loop. When full, Push evicts the
// oldest unconsumed chunk; capture never blocks on a slow consumer.
type Buffer struct {
	mu      sync.Mutex
	chunks  []Chunk
	cap     int
	dropped atomic.Int64
}

// NewBuffer creates a buffer holding at most capacity chunks.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{cap: capacity}
}

// Push appends a chunk, evicting the oldest one if the buffer is full.
// It never blocks.
func (b *Buffer) Push(c Chunk) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) >= b.cap {
		b.chunks = b.chunks[1:]
		b.dropped.Add(1)
	}
	b.chunks = append(b.chunks, c)
}

// TryNext removes and returns the oldest chunk, if any.
func (b *Buffer) TryNext() (Chunk, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.chunks) == 0 {
		return Chunk{}, false
	}
	c := b.chunks[0]
	b.chunks = b.chunks[1:]
	return c, true
}

// Len returns the number of buffered chunks.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Dropped returns the total number of chunks evicted on overflow.
func (b *Buffer) Dropped() int64 {
	return b.dropped.Load()
}

// Drain discards all buffered chunks.
func (b *Buffer) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = nil
}
