// Package emotion maps utterance text to one label out of a fixed
// closed set. Classification is best-effort: anything the classifier
// cannot make sense of comes back as neutral rather than failing the
// live loop.
package emotion

import (
	"context"
	"strings"
)

// Label is one emotional tone out of the closed set.
type Label string

const (
	Happy      Label = "happy"
	Sad        Label = "sad"
	Warm       Label = "warm"
	Optimistic Label = "optimistic"
	Anxious    Label = "anxious"
	Peaceful   Label = "peaceful"
	Depressed  Label = "depressed"
	Lonely     Label = "lonely"
	Angry      Label = "angry"
	Neutral    Label = "neutral"
)

// Labels returns all supported labels.
func Labels() []Label {
	return []Label{
		Happy, Sad, Warm, Optimistic, Anxious,
		Peaceful, Depressed, Lonely, Angry, Neutral,
	}
}

// ParseLabel normalizes a raw classifier response to a Label.
// Out-of-set values fall back to Neutral.
func ParseLabel(s string) Label {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Labels() {
		if l == known {
			return l
		}
	}
	return Neutral
}

// Classifier maps single-utterance text to a label. Implementations
// must not fail the caller: internal errors resolve to Neutral.
type Classifier interface {
	Classify(ctx context.Context, text string) Label
}

// Static is a Classifier returning a fixed label. Useful in tests.
type Static Label

// Classify returns the fixed label.
func (s Static) Classify(ctx context.Context, text string) Label {
	return Label(s)
}
