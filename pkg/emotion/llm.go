package emotion

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/oblivilight/oblivilight/pkg/generate"
)

// LLMClassifier classifies utterances with a chat model that answers
// in JSON. Model responses are often slightly malformed; they go
// through jsonrepair before parsing, and anything still unreadable
// resolves to Neutral.
type LLMClassifier struct {
	chat   generate.Chat
	logger *slog.Logger
}

// NewLLMClassifier creates a classifier over the given chat backend.
func NewLLMClassifier(chat generate.Chat, logger *slog.Logger) *LLMClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClassifier{
		chat:   chat,
		logger: logger.With("component", "emotion"),
	}
}

// Classify maps text to a label, falling back to Neutral on any
// failure.
func (c *LLMClassifier) Classify(ctx context.Context, text string) Label {
	raw, err := c.chat.Complete(ctx, generate.ClassifyPrompt(), text)
	if err != nil {
		c.logger.Warn("classification failed, falling back to neutral", "error", err)
		return Neutral
	}

	var out struct {
		TextEmotion string `json:"text_emotion"`
	}
	if err := unmarshalRepair(raw, &out); err != nil {
		c.logger.Warn("unparseable classifier response", "response", raw, "error", err)
		return Neutral
	}
	return ParseLabel(out.TextEmotion)
}

// unmarshalRepair unmarshals model JSON, stripping markdown fences and
// attempting a jsonrepair pass when the first parse fails.
func unmarshalRepair(raw string, v any) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}
	fixed, rerr := jsonrepair.JSONRepair(s)
	if rerr != nil {
		return err
	}
	return json.Unmarshal([]byte(fixed), v)
}

var _ Classifier = (*LLMClassifier)(nil)
