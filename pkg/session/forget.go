package session

import (
	"context"
	"strings"

	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/light"
)

// forget removes whole utterances from the tail of the history until
// at least threshold words are gone, then acknowledges out loud.
func (a *Agent) forget(ctx context.Context, threshold int) {
	defer a.endProcessing()

	a.mu.Lock()
	removed := dropTailWords(&a.history, threshold)
	remaining := make([]Utterance, len(a.history))
	copy(remaining, a.history)
	injected := a.injected
	a.mu.Unlock()

	log.Info("forgot utterances", "removed", removed, "remaining", len(remaining))
	a.deps.Lights.SetMode(light.ModeForget)

	ack, err := a.deps.Generator.ForgetAck(ctx, joinTexts(remaining), injected)
	if err != nil {
		log.Warn("forget acknowledgement failed", "error", err)
		return
	}
	a.speak(ctx, ack)
}

// dropTailWords removes whole utterances from the end of history
// until the removed word count reaches threshold, capped at the
// total word count. It returns how many utterances were removed.
func dropTailWords(history *[]Utterance, threshold int) int {
	h := *history
	total := 0
	for _, u := range h {
		total += wordCount(u.Text)
	}
	if threshold > total {
		threshold = total
	}
	if threshold <= 0 {
		return 0
	}

	removed := 0
	words := 0
	i := len(h)
	for i > 0 && words < threshold {
		i--
		words += wordCount(h[i].Text)
		removed++
	}
	*history = h[:i]
	return removed
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func joinTexts(history []Utterance) string {
	parts := make([]string, len(history))
	for i, u := range history {
		parts[i] = u.Text
	}
	return strings.Join(parts, "\n")
}
