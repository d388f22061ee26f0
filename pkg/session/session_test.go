package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oblivilight/oblivilight/pkg/audio"
	"github.com/oblivilight/oblivilight/pkg/emotion"
	"github.com/oblivilight/oblivilight/pkg/generate"
	"github.com/oblivilight/oblivilight/pkg/light"
	"github.com/oblivilight/oblivilight/pkg/memory"
	"github.com/oblivilight/oblivilight/pkg/stt"
)

// captureHub records every projector event the agent emits.
type captureHub struct {
	events []light.Event
}

func (c *captureHub) BroadcastJSON(v interface{}) error {
	if evt, ok := v.(light.Event); ok {
		c.events = append(c.events, evt)
	}
	return nil
}

func (c *captureHub) modes() []string {
	var out []string
	for _, e := range c.events {
		if e.Type == "SET_MODE" {
			out = append(out, e.Payload["mode"].(string))
		}
	}
	return out
}

func (c *captureHub) emotions() []string {
	var out []string
	for _, e := range c.events {
		if e.Type == "SET_EMOTION" {
			out = append(out, e.Payload["emotion"].(string))
		}
	}
	return out
}

// mapClassifier classifies by exact text lookup, defaulting to neutral.
type mapClassifier map[string]emotion.Label

func (m mapClassifier) Classify(ctx context.Context, text string) emotion.Label {
	if label, ok := m[text]; ok {
		return label
	}
	return emotion.Neutral
}

// captureStore records created records in memory.
type captureStore struct {
	created   []*memory.Record
	createErr error
}

func (s *captureStore) Create(rec *memory.Record) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, rec)
	return nil
}

func (s *captureStore) Read(uuid string) (*memory.Record, error) {
	for _, r := range s.created {
		if r.UUID == uuid {
			return r, nil
		}
	}
	return nil, memory.ErrNotFound
}

func (s *captureStore) Update(uuid string, upd memory.Update) (*memory.Record, error) {
	rec, err := s.Read(uuid)
	if err != nil {
		return nil, err
	}
	if upd.FullSummary != nil {
		rec.FullSummary = *upd.FullSummary
	}
	if upd.ShortSummary != nil {
		rec.ShortSummary = *upd.ShortSummary
	}
	return rec, nil
}

func (s *captureStore) Close() error { return nil }

type fixture struct {
	agent *Agent
	hub   *captureHub
	chat  *generate.MockChat
	stt   *stt.Mock
	store *captureStore
}

func newFixture(t *testing.T, mutate func(*Options, *Deps)) *fixture {
	t.Helper()
	hub := &captureHub{}
	chat := &generate.MockChat{}
	transcriber := &stt.Mock{}
	store := &captureStore{}

	opts := Options{
		Tick:               10 * time.Millisecond,
		ForgetShortWords:   25,
		ForgetLongWords:    60,
		ClearContextOnWake: true,
		MemoryURLBase:      "http://light.local",
	}
	deps := Deps{
		Buffer:     audio.NewBuffer(8),
		STT:        transcriber,
		Classifier: mapClassifier{},
		Generator:  generate.NewGenerator(chat),
		Lights:     light.NewController(hub),
		Store:      store,
	}
	if mutate != nil {
		mutate(&opts, &deps)
	}
	return &fixture{
		agent: New(opts, deps),
		hub:   hub,
		chat:  chat,
		stt:   transcriber,
		store: store,
	}
}

func pushChunk(f *fixture) {
	f.agent.deps.Buffer.Push(audio.Chunk{Samples: make([]int16, 160), SampleRate: 16000})
}

func seedHistory(a *Agent, texts ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listening = true
	for _, text := range texts {
		a.history = append(a.history, Utterance{Text: text, Emotion: emotion.Neutral, At: time.Now()})
	}
}

func TestWakeStartsSession(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.agent.HandleSignal(context.Background(), "WAKE_UP"); err != nil {
		t.Fatal(err)
	}

	st := f.agent.Status()
	if !st.IsListening || st.IsProcessing || st.HistoryLength != 0 {
		t.Errorf("unexpected status after wake: %+v", st)
	}
	if modes := f.hub.modes(); len(modes) != 1 || modes[0] != "IDLE" {
		t.Errorf("expected IDLE mode event, got %v", modes)
	}
}

func TestWakeClearsInjectedContext(t *testing.T) {
	f := newFixture(t, nil)
	f.agent.InjectContext("he changed jobs recently")

	if err := f.agent.HandleSignal(context.Background(), "WAKE_UP"); err != nil {
		t.Fatal(err)
	}
	f.agent.mu.Lock()
	injected := f.agent.injected
	f.agent.mu.Unlock()
	if injected != "" {
		t.Errorf("expected injected context cleared, got %q", injected)
	}
}

func TestWakeKeepsInjectedContextWhenConfigured(t *testing.T) {
	f := newFixture(t, func(o *Options, d *Deps) {
		o.ClearContextOnWake = false
	})
	f.agent.InjectContext("he changed jobs recently")

	if err := f.agent.HandleSignal(context.Background(), "WAKE_UP"); err != nil {
		t.Fatal(err)
	}
	f.agent.mu.Lock()
	injected := f.agent.injected
	f.agent.mu.Unlock()
	if injected != "he changed jobs recently" {
		t.Errorf("expected injected context kept, got %q", injected)
	}
}

func TestInvalidSignal(t *testing.T) {
	f := newFixture(t, nil)
	seedHistory(f.agent, "hello")
	before := f.agent.Status()

	if err := f.agent.HandleSignal(context.Background(), "DANCE"); !errors.Is(err, ErrInvalidSignal) {
		t.Errorf("expected ErrInvalidSignal, got %v", err)
	}
	if after := f.agent.Status(); after != before {
		t.Errorf("invalid signal must not mutate state: %+v != %+v", after, before)
	}
	if len(f.hub.events) != 0 {
		t.Error("invalid signal must not emit events")
	}
}

func TestForgetRequiresListening(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.agent.HandleSignal(context.Background(), "FORGET_SHORT"); !errors.Is(err, ErrNotListening) {
		t.Errorf("expected ErrNotListening, got %v", err)
	}
}

func TestSleepRequiresSessionOrHistory(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.agent.HandleSignal(context.Background(), "SLEEP_TRIGGER"); !errors.Is(err, ErrNotListening) {
		t.Errorf("expected ErrNotListening, got %v", err)
	}
}

func TestSignalsRejectedWhileProcessing(t *testing.T) {
	f := newFixture(t, nil)
	seedHistory(f.agent, "hello there")
	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}

	for _, sig := range []string{"WAKE_UP", "SLEEP_TRIGGER", "FORGET_SHORT", "FORGET_LONG"} {
		if err := f.agent.HandleSignal(context.Background(), sig); !errors.Is(err, ErrBusy) {
			t.Errorf("%s: expected ErrBusy, got %v", sig, err)
		}
	}
}

func TestLiveLoop(t *testing.T) {
	f := newFixture(t, func(o *Options, d *Deps) {
		d.Classifier = mapClassifier{
			"I feel tired":        emotion.Neutral,
			"work was hard":       emotion.Anxious,
			"but dinner was nice": emotion.Warm,
		}
	})
	f.stt.Script = []string{"I feel tired", "work was hard", "but dinner was nice"}

	if err := f.agent.HandleSignal(context.Background(), "WAKE_UP"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		pushChunk(f)
		f.agent.tick(context.Background())
	}

	history := f.agent.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(history))
	}
	wantEmotions := []emotion.Label{emotion.Neutral, emotion.Anxious, emotion.Warm}
	for i, u := range history {
		if u.Emotion != wantEmotions[i] {
			t.Errorf("utterance %d: expected %s, got %s", i, wantEmotions[i], u.Emotion)
		}
	}
	if got := f.hub.emotions(); len(got) != 3 || got[1] != "anxious" {
		t.Errorf("unexpected emotion events %v", got)
	}
}

func TestTickSkipsEmptyTranscript(t *testing.T) {
	f := newFixture(t, nil)
	f.stt.Script = []string{""}

	f.agent.HandleSignal(context.Background(), "WAKE_UP")
	pushChunk(f)
	f.agent.tick(context.Background())

	if got := f.agent.Status().HistoryLength; got != 0 {
		t.Errorf("empty transcript must not append, got %d utterances", got)
	}
	if len(f.hub.emotions()) != 0 {
		t.Error("empty transcript must not emit emotion events")
	}
}

func TestTickDropsResultWhenSessionClosesMidTranscription(t *testing.T) {
	f := newFixture(t, nil)
	f.stt.ChunkFunc = func(ctx context.Context, c audio.Chunk) (string, error) {
		// Sleep arrives while transcription is in flight.
		f.agent.mu.Lock()
		f.agent.listening = false
		f.agent.mu.Unlock()
		return "too late", nil
	}

	f.agent.HandleSignal(context.Background(), "WAKE_UP")
	f.hub.events = nil
	pushChunk(f)
	f.agent.tick(context.Background())

	if got := f.agent.Status().HistoryLength; got != 0 {
		t.Errorf("closed session must drop the result, got %d utterances", got)
	}
	if len(f.hub.emotions()) != 0 {
		t.Errorf("dropped result must not emit a light event, got %v", f.hub.emotions())
	}
}

func TestTickPausesWhileProcessing(t *testing.T) {
	f := newFixture(t, nil)
	seedHistory(f.agent, "hello")
	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}

	pushChunk(f)
	f.agent.tick(context.Background())

	if f.stt.ChunkCalls() != 0 {
		t.Error("live loop must not transcribe while processing")
	}
	if f.agent.deps.Buffer.Len() != 1 {
		t.Error("paused loop must leave the buffer untouched")
	}
}

func TestForgetRemovesWholeUtterancesFromTail(t *testing.T) {
	f := newFixture(t, nil)
	// 4 + 4 + 5 words, tail first
	seedHistory(f.agent,
		"today was a day",
		"work was very hard",
		"but dinner was really nice",
	)
	f.agent.InjectContext("he likes cooking")

	if err := f.agent.beginForget(); err != nil {
		t.Fatal(err)
	}
	f.agent.forget(context.Background(), 7)

	history := f.agent.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 utterance left, got %d", len(history))
	}
	if history[0].Text != "today was a day" {
		t.Errorf("wrong survivor %q", history[0].Text)
	}

	st := f.agent.Status()
	if st.IsProcessing || !st.IsListening {
		t.Errorf("forget must return to listening, got %+v", st)
	}
	if modes := f.hub.modes(); len(modes) != 1 || modes[0] != "FORGET" {
		t.Errorf("expected FORGET mode event, got %v", modes)
	}

	last := f.chat.LastCall()
	if last == nil {
		t.Fatal("expected a forget acknowledgement call")
	}
	if !strings.Contains(last.User, "today was a day") {
		t.Errorf("acknowledgement must see the remaining text, got %q", last.User)
	}
	if strings.Contains(last.User, "dinner") {
		t.Errorf("acknowledgement must not see forgotten text, got %q", last.User)
	}
	if !strings.Contains(last.User, "he likes cooking") {
		t.Errorf("acknowledgement must carry injected context, got %q", last.User)
	}
}

func TestForgetEverythingWhenThresholdExceedsTotal(t *testing.T) {
	f := newFixture(t, nil)
	seedHistory(f.agent, "one two", "three four")

	if err := f.agent.beginForget(); err != nil {
		t.Fatal(err)
	}
	f.agent.forget(context.Background(), 1000)

	if got := f.agent.Status().HistoryLength; got != 0 {
		t.Errorf("expected everything forgotten, got %d utterances", got)
	}
}

func TestSummaryPipeline(t *testing.T) {
	f := newFixture(t, nil)
	f.chat.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		if strings.Contains(user, "work was hard") {
			return "A long day softened by a shared dinner.", nil
		}
		return "Rest found you in the end.", nil
	}

	seedHistory(f.agent, "I feel tired", "work was hard", "but dinner was nice")
	f.agent.InjectContext("he changed jobs recently")

	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}
	f.agent.summarize(context.Background())

	if len(f.store.created) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(f.store.created))
	}
	rec := f.store.created[0]
	if rec.UUID == "" {
		t.Error("record must carry a UUID")
	}
	if rec.Date != time.Now().Format("2006-01-02") {
		t.Errorf("unexpected date %q", rec.Date)
	}
	if rec.FullSummary != "A long day softened by a shared dinner." {
		t.Errorf("unexpected full summary %q", rec.FullSummary)
	}
	if rec.ShortSummary != "Rest found you in the end." {
		t.Errorf("unexpected closing line %q", rec.ShortSummary)
	}
	if len(rec.RawConversation) != 3 || rec.RawConversation[2].Text != "but dinner was nice" {
		t.Errorf("raw conversation not preserved: %+v", rec.RawConversation)
	}

	// Injected context travels verbatim into the summary prompt.
	calls := f.chat.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(calls))
	}
	if !strings.Contains(calls[0].User, "he changed jobs recently") {
		t.Errorf("summary prompt must carry injected context verbatim, got %q", calls[0].User)
	}

	st := f.agent.Status()
	if st.IsListening || st.IsProcessing || st.HistoryLength != 0 {
		t.Errorf("expected reset idle state, got %+v", st)
	}
	if modes := f.hub.modes(); len(modes) != 2 || modes[0] != "SLEEP" || modes[1] != "IDLE" {
		t.Errorf("expected SLEEP then IDLE, got %v", modes)
	}
}

func TestSummaryEmptySession(t *testing.T) {
	f := newFixture(t, nil)
	f.agent.HandleSignal(context.Background(), "WAKE_UP")

	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}
	f.agent.summarize(context.Background())

	if len(f.store.created) != 0 {
		t.Error("empty session must not store a record")
	}
	if len(f.chat.Calls()) != 0 {
		t.Error("empty session must not call the generator")
	}
	st := f.agent.Status()
	if st.IsListening || st.IsProcessing {
		t.Errorf("expected idle state, got %+v", st)
	}
}

func TestSummaryFailureRetainsHistoryForRetry(t *testing.T) {
	f := newFixture(t, nil)
	boom := errors.New("model unavailable")
	f.chat.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "", boom
	}
	seedHistory(f.agent, "I feel tired", "work was hard")

	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}
	f.agent.summarize(context.Background())

	st := f.agent.Status()
	if st.IsListening || st.IsProcessing {
		t.Errorf("failed summary must release processing, got %+v", st)
	}
	if st.HistoryLength != 2 {
		t.Errorf("failed summary must retain history, got %d", st.HistoryLength)
	}
	if len(f.store.created) != 0 {
		t.Error("failed summary must not store a record")
	}

	// A second sleep signal retries the pipeline.
	f.chat.CompleteFunc = nil
	if err := f.agent.beginSummary(); err != nil {
		t.Fatalf("retry must be allowed, got %v", err)
	}
	f.agent.summarize(context.Background())
	if len(f.store.created) != 1 {
		t.Errorf("expected retry to store the record, got %d", len(f.store.created))
	}
}

func TestSummaryStoreFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.store.createErr = errors.New("disk full")
	seedHistory(f.agent, "hello world")

	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}
	f.agent.summarize(context.Background())

	st := f.agent.Status()
	if st.HistoryLength != 1 {
		t.Errorf("store failure must retain history, got %d", st.HistoryLength)
	}
	if modes := f.hub.modes(); len(modes) != 1 || modes[0] != "SLEEP" {
		t.Errorf("failed summary must not return to IDLE, got %v", modes)
	}
}

func TestSummaryFullTranscriptionFailureAborts(t *testing.T) {
	f := newFixture(t, func(o *Options, d *Deps) {
		d.Recorder = audio.NewRecorder(16000)
	})
	f.stt.FullFunc = func(ctx context.Context, wav []byte) (string, error) {
		return "", errors.New("whisper unavailable")
	}
	f.agent.deps.Recorder.Append(audio.Chunk{Samples: make([]int16, 160), SampleRate: 16000})
	seedHistory(f.agent, "I feel tired", "work was hard")

	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}
	f.agent.summarize(context.Background())

	if len(f.store.created) != 0 {
		t.Fatalf("failed transcription must not store a record, got %d", len(f.store.created))
	}
	if len(f.chat.Calls()) != 0 {
		t.Error("failed transcription must not reach the generator")
	}
	st := f.agent.Status()
	if st.IsProcessing {
		t.Error("failed transcription must release processing")
	}
	if st.HistoryLength != 2 {
		t.Errorf("failed transcription must retain history, got %d", st.HistoryLength)
	}
	if modes := f.hub.modes(); len(modes) != 1 || modes[0] != "SLEEP" {
		t.Errorf("aborted summary must not return to IDLE, got %v", modes)
	}
}

func TestSummaryPrefersFullRecording(t *testing.T) {
	f := newFixture(t, func(o *Options, d *Deps) {
		d.Recorder = audio.NewRecorder(16000)
	})
	f.stt.FullText = "the complete nightly recording transcript"
	f.agent.deps.Recorder.Append(audio.Chunk{Samples: make([]int16, 160), SampleRate: 16000})
	seedHistory(f.agent, "partial live text")

	if err := f.agent.beginSummary(); err != nil {
		t.Fatal(err)
	}
	f.agent.summarize(context.Background())

	if f.stt.FullCalls() != 1 {
		t.Fatalf("expected one full transcription, got %d", f.stt.FullCalls())
	}
	calls := f.chat.Calls()
	if len(calls) == 0 || !strings.Contains(calls[0].User, "the complete nightly recording transcript") {
		t.Errorf("summary must use the full transcript, got %q", calls[0].User)
	}
}

func TestHandleSignalAcksImmediately(t *testing.T) {
	f := newFixture(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.chat.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		once.Do(func() { close(started) })
		<-release
		return "done", nil
	}
	seedHistory(f.agent, "hello world")

	if err := f.agent.HandleSignal(context.Background(), "SLEEP_TRIGGER"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("summary pipeline did not start")
	}
	if st := f.agent.Status(); !st.IsProcessing {
		t.Error("expected processing while pipeline runs")
	}
	close(release)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !f.agent.Status().IsProcessing {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("pipeline never finished")
}

func TestStatusJSONShape(t *testing.T) {
	data, err := json.Marshal(Status{IsListening: true, HistoryLength: 2})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"is_listening", "is_processing", "history_length"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %s in %s", key, data)
		}
	}
}
