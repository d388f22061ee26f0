package session

import (
	"context"
	"sync"
	"time"

	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/audio"
	"github.com/oblivilight/oblivilight/pkg/card"
	"github.com/oblivilight/oblivilight/pkg/emotion"
	"github.com/oblivilight/oblivilight/pkg/generate"
	"github.com/oblivilight/oblivilight/pkg/light"
	"github.com/oblivilight/oblivilight/pkg/memory"
	"github.com/oblivilight/oblivilight/pkg/stt"
	"github.com/oblivilight/oblivilight/pkg/tts"
)

// Options tunes agent behavior.
type Options struct {
	// Tick is the live loop interval.
	Tick time.Duration

	// ForgetShortWords and ForgetLongWords are the word-count
	// thresholds for the two forget gestures.
	ForgetShortWords int
	ForgetLongWords  int

	// ClearContextOnWake drops injected context when a new session
	// begins.
	ClearContextOnWake bool

	// MemoryURLBase is the public base URL encoded into card QR
	// codes, e.g. "http://light.local".
	MemoryURLBase string
}

// Deps are the agent's collaborators. TTS, Recorder, Printer and
// Playback are optional.
type Deps struct {
	Buffer     *audio.Buffer
	Recorder   *audio.Recorder
	STT        stt.Transcriber
	Classifier emotion.Classifier
	Generator  generate.Generator
	TTS        tts.Provider
	Lights     *light.Controller
	Store      memory.Store
	Printer    *card.Printer
	Playback   func(ctx context.Context, audio []byte) error
}

// Timeouts bounding the dispatched workflows.
const (
	summaryTimeout = 3 * time.Minute
	forgetTimeout  = 45 * time.Second
)

// Agent orchestrates one bedside device: a single mutex guards all
// session state, and at most one signal is processed at a time.
type Agent struct {
	opts Options
	deps Deps

	mu         sync.Mutex
	listening  bool
	processing bool
	history    []Utterance
	injected   string

	runCtx context.Context

	now func() time.Time
}

// New creates an agent.
func New(opts Options, deps Deps) *Agent {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.ForgetShortWords <= 0 {
		opts.ForgetShortWords = 25
	}
	if opts.ForgetLongWords <= 0 {
		opts.ForgetLongWords = 60
	}
	return &Agent{opts: opts, deps: deps, now: time.Now}
}

// HandleSignal validates and dispatches a device signal. The
// acknowledgement is immediate; summary and forget work continues in
// the background.
func (a *Agent) HandleSignal(ctx context.Context, raw string) error {
	sig, err := ParseSignal(raw)
	if err != nil {
		return err
	}
	log.Info("device signal", "signal", string(sig))

	switch sig {
	case SignalWake:
		return a.wake()
	case SignalSleep:
		if err := a.beginSummary(); err != nil {
			return err
		}
		go func() {
			ctx, cancel := context.WithTimeout(a.background(), summaryTimeout)
			defer cancel()
			a.summarize(ctx)
		}()
		return nil
	default: // SignalForgetShort, SignalForgetLong
		if err := a.beginForget(); err != nil {
			return err
		}
		threshold := a.opts.ForgetShortWords
		if sig == SignalForgetLong {
			threshold = a.opts.ForgetLongWords
		}
		go func() {
			ctx, cancel := context.WithTimeout(a.background(), forgetTimeout)
			defer cancel()
			a.forget(ctx, threshold)
		}()
		return nil
	}
}

// wake starts a fresh session. A wake while already listening
// restarts the night from empty.
func (a *Agent) wake() error {
	a.mu.Lock()
	if a.processing {
		a.mu.Unlock()
		return ErrBusy
	}
	a.listening = true
	a.history = nil
	if a.opts.ClearContextOnWake {
		a.injected = ""
	}
	a.mu.Unlock()

	a.deps.Buffer.Drain()
	if a.deps.Recorder != nil {
		a.deps.Recorder.Reset()
	}
	a.deps.Lights.SetMode(light.ModeIdle)
	return nil
}

// beginSummary transitions to exclusive processing for the summary
// pipeline. A retried sleep after a failed summary is allowed as
// long as the night's history survived.
func (a *Agent) beginSummary() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.processing {
		return ErrBusy
	}
	if !a.listening && len(a.history) == 0 {
		return ErrNotListening
	}
	a.listening = false
	a.processing = true
	return nil
}

// beginForget transitions to exclusive processing for a forget
// gesture.
func (a *Agent) beginForget() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.processing {
		return ErrBusy
	}
	if !a.listening {
		return ErrNotListening
	}
	a.processing = true
	return nil
}

func (a *Agent) endProcessing() {
	a.mu.Lock()
	a.processing = false
	a.mu.Unlock()
}

func (a *Agent) background() context.Context {
	if a.runCtx != nil {
		return a.runCtx
	}
	return context.Background()
}

// speak synthesizes text and hands the audio to the playback sink.
// Speech is best effort and never fails the operation around it.
func (a *Agent) speak(ctx context.Context, text string) {
	if a.deps.TTS == nil || text == "" {
		return
	}
	result, err := a.deps.TTS.Synthesize(ctx, text)
	if err != nil {
		log.Warn("tts failed", "error", err)
		return
	}
	if a.deps.Playback == nil {
		return
	}
	if err := a.deps.Playback(ctx, result.Audio); err != nil {
		log.Warn("playback failed", "error", err)
	}
}
