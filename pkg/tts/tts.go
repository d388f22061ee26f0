// Package tts provides text-to-speech for the lamp's spoken
// confirmations. The only production caller is the Forget workflow,
// which voices a short "here is what I still remember" line; playback
// hardware is the device's problem, this package just produces audio.
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding (e.g. "mp3", "pcm_16000").
	Format string

	// CharCount is the number of characters synthesized.
	CharCount int

	// Duration is the estimated playback duration, when known.
	Duration time.Duration

	// LatencyMs is the time to first byte in milliseconds.
	LatencyMs int64
}
