// Package session is the orchestration core of the bedside diary.
// It owns the night's conversational state, reacts to device
// signals, runs the live listening loop, and drives the nightly
// summary pipeline.
package session

import (
	"time"

	"github.com/oblivilight/oblivilight/pkg/emotion"
	"github.com/oblivilight/oblivilight/pkg/memory"
)

// Utterance is one recognized speech segment in tonight's session.
type Utterance struct {
	Text    string
	Emotion emotion.Label
	At      time.Time
}

// Status is a read-only snapshot of the agent's state.
type Status struct {
	IsListening   bool `json:"is_listening"`
	IsProcessing  bool `json:"is_processing"`
	HistoryLength int  `json:"history_length"`
}

// Status returns the current agent state.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		IsListening:   a.listening,
		IsProcessing:  a.processing,
		HistoryLength: len(a.history),
	}
}

// InjectContext replaces the background context used by the next
// summary and forget acknowledgements. The text is carried verbatim
// into generation prompts.
func (a *Agent) InjectContext(text string) {
	a.mu.Lock()
	a.injected = text
	a.mu.Unlock()
}

// History returns a copy of tonight's utterances.
func (a *Agent) History() []Utterance {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Utterance, len(a.history))
	copy(out, a.history)
	return out
}

func toStored(history []Utterance) []memory.Utterance {
	out := make([]memory.Utterance, len(history))
	for i, u := range history {
		out[i] = memory.Utterance{
			Text:    u.Text,
			Emotion: string(u.Emotion),
			At:      u.At,
		}
	}
	return out
}
