package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/oblivilight/oblivilight/internal/httpc"
	"github.com/oblivilight/oblivilight/pkg/audio"
)

const providerWhisper = "whisper"

// WhisperServer is a client for a local whisper.cpp-style inference
// server. It serves the low-latency chunk path; the daemon keeps the
// model warm so a 250ms frame round-trips well under the loop cadence.
type WhisperServer struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewWhisperServer creates a client for the server at baseURL
// (e.g. "http://127.0.0.1:8080").
func NewWhisperServer(baseURL string, logger *slog.Logger) (*WhisperServer, error) {
	if baseURL == "" {
		return nil, ErrNoServerURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WhisperServer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpc.NewClient(15 * time.Second),
		logger:  logger.With("component", "stt.whisper"),
	}, nil
}

// TranscribeChunk sends one frame as WAV and returns the recognized
// text. Silence comes back as an empty string.
func (w *WhisperServer) TranscribeChunk(ctx context.Context, c audio.Chunk) (string, error) {
	return w.inference(ctx, audio.ChunkWAV(c))
}

// TranscribeFull sends a complete recording. Prefer the cloud path for
// this; it exists here so a fully offline deployment still works.
func (w *WhisperServer) TranscribeFull(ctx context.Context, wav []byte) (string, error) {
	return w.inference(ctx, wav)
}

func (w *WhisperServer) inference(ctx context.Context, wav []byte) (string, error) {
	body, contentType, err := wavForm(wav)
	if err != nil {
		return "", wrapErr(providerWhisper, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+"/inference", body)
	if err != nil {
		return "", wrapErr(providerWhisper, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return "", wrapErr(providerWhisper, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			Provider:   providerWhisper,
		}
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", wrapErr(providerWhisper, fmt.Errorf("decode response: %w", err))
	}

	text := cleanTranscript(out.Text)
	w.logger.Debug("chunk transcribed",
		"bytes", len(wav),
		"chars", len(text),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// wavForm builds the multipart body for a WAV upload.
func wavForm(wav []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// cleanTranscript trims whitespace and whisper's silence markers.
func cleanTranscript(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "[BLANK_AUDIO]", "[SILENCE]", "(silence)", ".":
		return ""
	}
	return s
}

var _ Transcriber = (*WhisperServer)(nil)
