// Package stt provides speech-to-text collaborators for the diary
// engine.
//
// Two paths exist: a low-latency chunk path used by the live analysis
// loop (a local whisper server), and a high-accuracy bulk path used
// once per session on the full recording (the OpenAI transcription
// API). Both satisfy Transcriber; callers pick the path per call.
package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/oblivilight/oblivilight/pkg/audio"
)

// Sentinel errors.
var (
	// ErrNoAPIKey is returned when the API key is missing.
	ErrNoAPIKey = errors.New("stt: API key required")

	// ErrNoServerURL is returned when the whisper server URL is missing.
	ErrNoServerURL = errors.New("stt: server URL required")
)

// Transcriber converts captured audio to text.
//
// TranscribeChunk may return an empty string for silence; that is not
// an error and the caller discards the result. TranscribeFull failures
// are fatal to the summary attempt and must be surfaced.
type Transcriber interface {
	// TranscribeChunk transcribes a single captured frame.
	TranscribeChunk(ctx context.Context, c audio.Chunk) (string, error)

	// TranscribeFull transcribes a complete session recording (WAV).
	TranscribeFull(ctx context.Context, wav []byte) (string, error)
}

// APIError represents an error response from a transcription API.
type APIError struct {
	StatusCode int
	Message    string
	Provider   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("stt [%s]: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable returns true if the request should be retried.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode < 600)
}

// wrapErr adds provider context to an error.
func wrapErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("stt [%s]: %w", provider, err)
}
