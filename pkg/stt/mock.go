package stt

import (
	"context"
	"sync"

	"github.com/oblivilight/oblivilight/pkg/audio"
)

// Mock implements Transcriber for testing. If the function fields are
// nil, chunk transcription walks the Script slice (empty string after
// exhaustion) and full transcription returns FullText.
type Mock struct {
	ChunkFunc func(ctx context.Context, c audio.Chunk) (string, error)
	FullFunc  func(ctx context.Context, wav []byte) (string, error)

	// Script is consumed one entry per TranscribeChunk call.
	Script []string

	// FullText is returned by TranscribeFull.
	FullText string

	mu         sync.Mutex
	chunkCalls int
	fullCalls  int
}

// TranscribeChunk returns the next scripted result.
func (m *Mock) TranscribeChunk(ctx context.Context, c audio.Chunk) (string, error) {
	m.mu.Lock()
	n := m.chunkCalls
	m.chunkCalls++
	m.mu.Unlock()

	if m.ChunkFunc != nil {
		return m.ChunkFunc(ctx, c)
	}
	if n < len(m.Script) {
		return m.Script[n], nil
	}
	return "", nil
}

// TranscribeFull returns FullText.
func (m *Mock) TranscribeFull(ctx context.Context, wav []byte) (string, error) {
	m.mu.Lock()
	m.fullCalls++
	m.mu.Unlock()

	if m.FullFunc != nil {
		return m.FullFunc(ctx, wav)
	}
	return m.FullText, nil
}

// ChunkCalls returns the number of TranscribeChunk invocations.
func (m *Mock) ChunkCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chunkCalls
}

// FullCalls returns the number of TranscribeFull invocations.
func (m *Mock) FullCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullCalls
}

var _ Transcriber = (*Mock)(nil)
