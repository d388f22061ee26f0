package audio

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Source produces a lazy, non-restartable stream of fixed-duration
// chunks. Real capture lives with the device firmware (frames arrive
// over the device websocket); Source exists so the engine can also run
// against local or synthetic capture.
type Source interface {
	// Start begins producing chunks.
	Start(ctx context.Context) error

	// Stop halts production. Safe to call multiple times.
	Stop() error

	// Stream returns the chunk channel. Closed when the source stops.
	Stream() <-chan Chunk

	// Name returns the backend name (e.g., "mock", "ws").
	Name() string

	io.Closer
}

// MockSource generates synthetic audio (silence or a sine wave) on a
// fixed cadence. Used in tests and for hardware-free runs.
type MockSource struct {
	sampleRate int
	frameDur   time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	ch      chan Chunk
	stopCh  chan struct{}

	phase     float64
	frequency float64 // Hz, 0 = silence
	amplitude float64
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithSineWave configures the mock to generate a sine wave.
func WithSineWave(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.frequency = frequency
		m.amplitude = amplitude
	}
}

// NewMockSource creates a mock source emitting frameDur chunks at
// sampleRate.
func NewMockSource(sampleRate int, frameDur time.Duration, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MockSource{
		sampleRate: sampleRate,
		frameDur:   frameDur,
		logger:     logger,
		ch:         make(chan Chunk, 8),
		stopCh:     make(chan struct{}),
		amplitude:  0.5,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins generating chunks.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return io.ErrClosedPipe
	}
	if m.running {
		return nil
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.ch = make(chan Chunk, 8)

	go m.generateLoop(ctx, m.ch, m.stopCh)

	m.logger.Info("mock audio source started",
		"sample_rate", m.sampleRate,
		"frame_ms", m.frameDur.Milliseconds(),
	)
	return nil
}

// generateLoop owns ch: only this goroutine sends on it, and it
// closes it on exit. Stop only signals via stopCh, so a ready tick
// can never race a close.
func (m *MockSource) generateLoop(ctx context.Context, ch chan Chunk, stop chan struct{}) {
	ticker := time.NewTicker(m.frameDur)
	defer ticker.Stop()
	defer close(ch)

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			return
		case <-stop:
			return
		case <-ticker.C:
			select {
			case ch <- m.generateChunk():
			default:
				// Consumer is behind; the buffer downstream has its
				// own drop policy, so just skip this frame.
			}
		}
	}
}

func (m *MockSource) generateChunk() Chunk {
	n := int(float64(m.sampleRate) * m.frameDur.Seconds())
	samples := make([]int16, n)

	if m.frequency > 0 {
		for i := 0; i < n; i++ {
			v := m.amplitude * math.Sin(2*math.Pi*m.frequency*m.phase/float64(m.sampleRate))
			samples[i] = int16(v * 32767)
			m.phase++
			if m.phase >= float64(m.sampleRate) {
				m.phase = 0
			}
		}
	}

	return Chunk{Samples: samples, SampleRate: m.sampleRate}
}

// Stop halts generation. The stream channel is closed by the
// generator goroutine once it observes the stop.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	close(m.stopCh)
	return nil
}

// Stream returns the chunk channel.
func (m *MockSource) Stream() <-chan Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ch
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return "mock"
}

// Close releases resources.
func (m *MockSource) Close() error {
	m.mu.Lock()
	closed := m.closed
	m.closed = true
	m.mu.Unlock()
	if closed {
		return nil
	}
	return m.Stop()
}

var _ Source = (*MockSource)(nil)
