// Oblivilight - bedside diary appliance daemon.
// Listens to the night, lights the room to match, and condenses each
// session into a stored, printable memory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oblivilight/oblivilight/internal/config"
	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/audio"
	"github.com/oblivilight/oblivilight/pkg/card"
	"github.com/oblivilight/oblivilight/pkg/emotion"
	"github.com/oblivilight/oblivilight/pkg/generate"
	"github.com/oblivilight/oblivilight/pkg/hub"
	"github.com/oblivilight/oblivilight/pkg/light"
	"github.com/oblivilight/oblivilight/pkg/memory"
	"github.com/oblivilight/oblivilight/pkg/server"
	"github.com/oblivilight/oblivilight/pkg/session"
	"github.com/oblivilight/oblivilight/pkg/stt"
	"github.com/oblivilight/oblivilight/pkg/tts"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "oblivilight: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	configPath := flag.String("config", "oblivilight.yaml", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	mockAudio := flag.Bool("mock-audio", false, "Generate synthetic audio instead of device capture")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *mockAudio {
		cfg.MockAudio = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Init(cfg.LogLevel)
	log.Info("starting oblivilight", "addr", cfg.ListenAddr, "mock_audio", cfg.MockAudio)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := memory.Open(cfg.MemoryDir)
	if err != nil {
		return err
	}
	defer store.Close()

	transcriber, err := newTranscriber(cfg)
	if err != nil {
		return err
	}

	chat, err := generate.NewOpenAIChat(cfg.OpenAIKey, cfg.ChatModel, chatOptions(cfg)...)
	if err != nil {
		return err
	}

	var speech tts.Provider
	if cfg.TTSVoice != "" {
		speech, err = tts.NewOpenAI(
			tts.WithAPIKey(cfg.OpenAIKey),
			tts.WithVoice(cfg.TTSVoice),
			tts.WithLogger(log.L()),
		)
		if err != nil {
			return err
		}
		defer speech.Close()
	}

	projector := hub.New("projector")
	go projector.Run(ctx)

	buffer := audio.NewBuffer(cfg.BufferFrames)
	var recorder *audio.Recorder
	if cfg.RecordFullSession {
		recorder = audio.NewRecorder(cfg.SampleRate)
	}

	agent := session.New(session.Options{
		Tick:               cfg.Tick,
		ForgetShortWords:   cfg.ForgetShortWords,
		ForgetLongWords:    cfg.ForgetLongWords,
		ClearContextOnWake: cfg.ClearContextOnWake,
		MemoryURLBase:      cfg.MemoryURLBase,
	}, session.Deps{
		Buffer:     buffer,
		Recorder:   recorder,
		STT:        transcriber,
		Classifier: emotion.NewLLMClassifier(chat, log.L()),
		Generator:  generate.NewGenerator(chat),
		TTS:        speech,
		Lights:     light.NewController(projector),
		Store:      store,
		Printer:    card.NewPrinter(cfg.PrintGatewayURL),
	})
	go agent.Run(ctx)

	if cfg.MockAudio {
		source := audio.NewMockSource(cfg.SampleRate, cfg.FrameDuration, log.L(), audio.WithSineWave(440, 0.3))
		if err := source.Start(ctx); err != nil {
			return err
		}
		defer source.Close()
		go pump(source, buffer)
	}

	srv := server.New(cfg.ListenAddr, agent, store, projector, buffer, cfg.SampleRate)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// newTranscriber prefers a local whisper server and falls back to
// the cloud API.
func newTranscriber(cfg config.Config) (stt.Transcriber, error) {
	if cfg.WhisperURL != "" {
		return stt.NewWhisperServer(cfg.WhisperURL, log.L())
	}
	return stt.NewOpenAI(cfg.OpenAIKey, log.L())
}

func chatOptions(cfg config.Config) []generate.OpenAIOption {
	if cfg.OpenAIBaseURL != "" {
		return []generate.OpenAIOption{generate.WithBaseURL(cfg.OpenAIBaseURL)}
	}
	return nil
}

// pump moves chunks from a local source into the capture buffer.
func pump(source audio.Source, buffer *audio.Buffer) {
	for chunk := range source.Stream() {
		buffer.Push(chunk)
	}
}
