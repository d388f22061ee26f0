package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/card"
	"github.com/oblivilight/oblivilight/pkg/light"
	"github.com/oblivilight/oblivilight/pkg/memory"
)

// summarize runs the nightly pipeline: transcript, full summary,
// closing line, persisted record, printed card, reset. On failure
// the history is retained so another sleep signal can retry.
func (a *Agent) summarize(ctx context.Context) {
	a.deps.Lights.SetMode(light.ModeSleep)

	a.mu.Lock()
	history := make([]Utterance, len(a.history))
	copy(history, a.history)
	injected := a.injected
	a.mu.Unlock()

	if len(history) == 0 {
		log.Info("empty session, nothing to summarize")
		a.reset()
		a.endProcessing()
		a.deps.Lights.SetMode(light.ModeIdle)
		return
	}

	transcript, err := a.transcript(ctx, history)
	if err != nil {
		a.fail("full transcription failed", err)
		return
	}

	full, err := a.deps.Generator.DailySummary(ctx, transcript, injected)
	if err != nil {
		a.fail("daily summary failed", err)
		return
	}
	closing, err := a.deps.Generator.ClosingLine(ctx, full)
	if err != nil {
		a.fail("closing line failed", err)
		return
	}

	date := a.now().Format("2006-01-02")
	rec := &memory.Record{
		UUID:            uuid.NewString(),
		Date:            date,
		FullSummary:     full,
		ShortSummary:    closing,
		RawConversation: toStored(history),
	}
	if err := a.deps.Store.Create(rec); err != nil {
		a.fail("store record failed", err)
		return
	}
	log.Info("memory stored", "uuid", rec.UUID, "date", date, "utterances", len(history))

	a.printCard(ctx, rec)
	a.speak(ctx, closing)

	a.reset()
	a.endProcessing()
	a.deps.Lights.SetMode(light.ModeIdle)
}

// transcript uses the full-session recording when one exists; a
// transcription failure there is fatal to this attempt. The live
// history join serves only the recording-disabled path.
func (a *Agent) transcript(ctx context.Context, history []Utterance) (string, error) {
	if a.deps.Recorder != nil && a.deps.Recorder.Len() > 0 {
		text, err := a.deps.STT.TranscribeFull(ctx, a.deps.Recorder.WAV())
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	return joinTexts(history), nil
}

// printCard renders and prints the memory card. Card output is best
// effort; the memory is already stored.
func (a *Agent) printCard(ctx context.Context, rec *memory.Record) {
	url := a.opts.MemoryURLBase + "/memory/" + rec.UUID
	png, err := card.Render(rec.Date, rec.ShortSummary, url)
	if err != nil {
		log.Warn("card render failed", "error", err)
		return
	}
	if a.deps.Printer == nil {
		return
	}
	if err := a.deps.Printer.Print(ctx, png); err != nil {
		log.Warn("card print failed", "error", err)
	}
}

// fail aborts the pipeline, keeping the history for a retry. The
// device stays out of listening mode until the next wake or sleep.
func (a *Agent) fail(msg string, err error) {
	log.Error(msg, "error", err)
	a.endProcessing()
}

// reset clears the night's state after a successful summary.
func (a *Agent) reset() {
	a.mu.Lock()
	a.history = nil
	a.injected = ""
	a.mu.Unlock()

	a.deps.Buffer.Drain()
	if a.deps.Recorder != nil {
		a.deps.Recorder.Reset()
	}
}
