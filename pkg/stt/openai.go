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

const (
	openAITranscribeURL = "https://api.openai.com/v1/audio/transcriptions"
	providerOpenAI      = "openai"

	// ModelWhisper1 is the hosted whisper model.
	ModelWhisper1 = "whisper-1"
)

// OpenAI is the cloud transcription client used for the once-per-
// session bulk path, where accuracy matters more than latency.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	maxRetries int
	retryDelay time.Duration
}

// OpenAIOpt configures the OpenAI transcriber.
type OpenAIOpt func(*OpenAI)

// WithModel overrides the transcription model.
func WithModel(model string) OpenAIOpt {
	return func(o *OpenAI) { o.model = model }
}

// WithTranscribeURL overrides the API endpoint.
func WithTranscribeURL(url string) OpenAIOpt {
	return func(o *OpenAI) { o.baseURL = url }
}

// WithRetry configures retry behavior for retryable API errors.
func WithRetry(maxRetries int, delay time.Duration) OpenAIOpt {
	return func(o *OpenAI) {
		o.maxRetries = maxRetries
		o.retryDelay = delay
	}
}

// NewOpenAI creates the cloud transcriber.
func NewOpenAI(apiKey string, logger *slog.Logger, opts ...OpenAIOpt) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := &OpenAI{
		apiKey:     apiKey,
		model:      ModelWhisper1,
		baseURL:    openAITranscribeURL,
		client:     httpc.NewClient(120 * time.Second),
		logger:     logger.With("component", "stt.openai"),
		maxRetries: 2,
		retryDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// TranscribeChunk is supported but not intended for the live loop;
// the hosted API adds too much latency per frame.
func (o *OpenAI) TranscribeChunk(ctx context.Context, c audio.Chunk) (string, error) {
	return o.TranscribeFull(ctx, audio.ChunkWAV(c))
}

// TranscribeFull transcribes a complete WAV recording.
func (o *OpenAI) TranscribeFull(ctx context.Context, wav []byte) (string, error) {
	body, contentType, err := o.form(wav)
	if err != nil {
		return "", wrapErr(providerOpenAI, err)
	}
	raw := body.Bytes()

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", wrapErr(providerOpenAI, ctx.Err())
			case <-time.After(o.retryDelay * time.Duration(attempt)):
			}
		}

		text, err := o.post(ctx, raw, contentType)
		if err == nil {
			return text, nil
		}
		lastErr = err

		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.IsRetryable() {
			return "", err
		}
		o.logger.Warn("transcription retrying", "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func (o *OpenAI) post(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", wrapErr(providerOpenAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return "", wrapErr(providerOpenAI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", wrapErr(providerOpenAI, fmt.Errorf("decode response: %w", err))
	}

	o.logger.Info("full recording transcribed",
		"chars", len(out.Text),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(out.Text), nil
}

func (o *OpenAI) form(wav []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("model", o.model); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	part, err := mw.CreateFormFile("file", "session.wav")
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

// parseAPIError extracts a structured error from a non-200 response.
func parseAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg, Provider: providerOpenAI}
}

var _ Transcriber = (*OpenAI)(nil)
