package session

import (
	"context"
	"time"

	"github.com/oblivilight/oblivilight/internal/log"
)

// Run drives the live listening loop until ctx is cancelled. Each
// tick takes at most one buffered chunk, transcribes it, classifies
// the emotion, and lights the room. Transcription is synchronous so
// at most one request is ever in flight.
func (a *Agent) Run(ctx context.Context) {
	a.runCtx = ctx
	ticker := time.NewTicker(a.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

// tick processes one live-loop step. The loop pauses while a
// summary or forget operation holds the processing flag.
func (a *Agent) tick(ctx context.Context) {
	a.mu.Lock()
	live := a.listening && !a.processing
	a.mu.Unlock()
	if !live {
		return
	}

	chunk, ok := a.deps.Buffer.TryNext()
	if !ok {
		return
	}
	if a.deps.Recorder != nil {
		a.deps.Recorder.Append(chunk)
	}

	text, err := a.deps.STT.TranscribeChunk(ctx, chunk)
	if err != nil {
		log.Warn("chunk transcription failed", "error", err)
		return
	}
	if text == "" {
		return
	}

	label := a.deps.Classifier.Classify(ctx, text)

	a.mu.Lock()
	// The session may have been closed while we were transcribing;
	// in that case the result is dropped entirely.
	appended := a.listening && !a.processing
	if appended {
		a.history = append(a.history, Utterance{Text: text, Emotion: label, At: a.now()})
	}
	a.mu.Unlock()
	if !appended {
		return
	}

	a.deps.Lights.SetEmotion(label)
	log.Debug("utterance", "text", text, "emotion", string(label))
}
