// Package config loads daemon configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Defaults.
const (
	DefaultListenAddr    = ":8000"
	DefaultLogLevel      = "info"
	DefaultTick          = 800 * time.Millisecond
	DefaultForgetShort   = 25
	DefaultForgetLong    = 60
	DefaultMemoryDir     = "datastore"
	DefaultMemoryURLBase = "http://localhost:3000"
	DefaultChatModel     = "gpt-4.1-nano"
	DefaultSampleRate    = 16000
	DefaultFrameDuration = 250 * time.Millisecond
	DefaultBufferFrames  = 64
)

// Config holds all tunables for the oblivilight daemon.
type Config struct {
	// Transport
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`

	// Collaborator endpoints and credentials
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	ChatModel       string `yaml:"chat_model"`
	WhisperURL      string `yaml:"whisper_url"`
	PrintGatewayURL string `yaml:"print_gateway_url"`

	// Audio capture
	SampleRate    int           `yaml:"sample_rate"`
	FrameDuration time.Duration `yaml:"frame_duration"`
	BufferFrames  int           `yaml:"buffer_frames"`
	MockAudio     bool          `yaml:"mock_audio"`

	// Session engine
	Tick               time.Duration `yaml:"tick"`
	ForgetShortWords   int           `yaml:"forget_short_words"`
	ForgetLongWords    int           `yaml:"forget_long_words"`
	ClearContextOnWake bool          `yaml:"clear_context_on_wake"`
	RecordFullSession  bool          `yaml:"record_full_session"`

	// Persistence and artifacts
	MemoryDir     string `yaml:"memory_dir"`
	MemoryURLBase string `yaml:"memory_url_base"`

	// Speech output (optional; empty voice disables TTS)
	TTSVoice string `yaml:"tts_voice"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr:         DefaultListenAddr,
		LogLevel:           DefaultLogLevel,
		ChatModel:          DefaultChatModel,
		SampleRate:         DefaultSampleRate,
		FrameDuration:      DefaultFrameDuration,
		BufferFrames:       DefaultBufferFrames,
		Tick:               DefaultTick,
		ForgetShortWords:   DefaultForgetShort,
		ForgetLongWords:    DefaultForgetLong,
		ClearContextOnWake: true,
		MemoryDir:          DefaultMemoryDir,
		MemoryURLBase:      DefaultMemoryURLBase,
	}
}

// Load reads configuration from path (if non-empty and the file
// exists), then applies environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.ChatModel, "OPENAI_MODEL_NAME")
	setString(&c.WhisperURL, "WHISPER_SERVER_URL")
	setString(&c.PrintGatewayURL, "PRINT_GATEWAY_URL")
	setString(&c.MemoryDir, "MEMORY_DIR")
	setString(&c.MemoryURLBase, "MEMORY_URL_BASE")
	setString(&c.TTSVoice, "TTS_VOICE")
	setBool(&c.MockAudio, "MOCK_AUDIO")
	setBool(&c.RecordFullSession, "RECORD_FULL_SESSION")
	setBool(&c.ClearContextOnWake, "CLEAR_CONTEXT_ON_WAKE")
	setInt(&c.ForgetShortWords, "FORGET_SHORT_WORDS")
	setInt(&c.ForgetLongWords, "FORGET_LONG_WORDS")
	setInt(&c.SampleRate, "SAMPLE_RATE")
	setInt(&c.BufferFrames, "BUFFER_FRAMES")
	setDuration(&c.Tick, "TICK")
	setDuration(&c.FrameDuration, "FRAME_DURATION")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("config: tick must be positive, got %v", c.Tick)
	}
	if c.ForgetShortWords <= 0 || c.ForgetLongWords <= 0 {
		return fmt.Errorf("config: forget thresholds must be positive, got short=%d long=%d",
			c.ForgetShortWords, c.ForgetLongWords)
	}
	if c.ForgetLongWords < c.ForgetShortWords {
		return fmt.Errorf("config: forget_long_words (%d) must be >= forget_short_words (%d)",
			c.ForgetLongWords, c.ForgetShortWords)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameDuration <= 0 {
		return fmt.Errorf("config: frame_duration must be positive, got %v", c.FrameDuration)
	}
	if c.BufferFrames <= 0 {
		return fmt.Errorf("config: buffer_frames must be positive, got %d", c.BufferFrames)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
