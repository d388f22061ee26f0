package emotion

import (
	"context"
	"errors"
	"testing"

	"github.com/oblivilight/oblivilight/pkg/generate"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in   string
		want Label
	}{
		{"happy", Happy},
		{" WARM ", Warm},
		{"Anxious", Anxious},
		{"ecstatic", Neutral}, // out of set
		{"", Neutral},
	}

	for _, tt := range tests {
		if got := ParseLabel(tt.in); got != tt.want {
			t.Errorf("ParseLabel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLabelsClosedSet(t *testing.T) {
	if len(Labels()) != 10 {
		t.Errorf("expected 10 labels, got %d", len(Labels()))
	}
}

func TestLLMClassifier(t *testing.T) {
	ctx := context.Background()

	t.Run("clean JSON", func(t *testing.T) {
		chat := &generate.MockChat{CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
			return `{"text_emotion": "warm"}`, nil
		}}
		c := NewLLMClassifier(chat, nil)
		if got := c.Classify(ctx, "dinner was nice"); got != Warm {
			t.Errorf("expected warm, got %s", got)
		}
	})

	t.Run("fenced JSON", func(t *testing.T) {
		chat := &generate.MockChat{CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
			return "```json\n{\"text_emotion\": \"anxious\"}\n```", nil
		}}
		c := NewLLMClassifier(chat, nil)
		if got := c.Classify(ctx, "work was hard"); got != Anxious {
			t.Errorf("expected anxious, got %s", got)
		}
	})

	t.Run("malformed JSON is repaired", func(t *testing.T) {
		chat := &generate.MockChat{CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
			return `{text_emotion: 'sad'}`, nil
		}}
		c := NewLLMClassifier(chat, nil)
		if got := c.Classify(ctx, "I miss her"); got != Sad {
			t.Errorf("expected sad, got %s", got)
		}
	})

	t.Run("out-of-set label falls back to neutral", func(t *testing.T) {
		chat := &generate.MockChat{CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
			return `{"text_emotion": "melancholic"}`, nil
		}}
		c := NewLLMClassifier(chat, nil)
		if got := c.Classify(ctx, "hmm"); got != Neutral {
			t.Errorf("expected neutral, got %s", got)
		}
	})

	t.Run("backend error falls back to neutral", func(t *testing.T) {
		chat := &generate.MockChat{CompleteFunc: func(ctx context.Context, system, user string) (string, error) {
			return "", errors.New("backend down")
		}}
		c := NewLLMClassifier(chat, nil)
		if got := c.Classify(ctx, "anything"); got != Neutral {
			t.Errorf("expected neutral, got %s", got)
		}
	})
}
