package session

import (
	"errors"
	"fmt"
	"strings"
)

// Signal is a discrete command from the bedside device.
type Signal string

const (
	// SignalWake begins a new listening session.
	SignalWake Signal = "WAKE_UP"

	// SignalSleep ends the session and starts the summary pipeline.
	SignalSleep Signal = "SLEEP_TRIGGER"

	// SignalForgetShort discards the most recent stretch of speech.
	SignalForgetShort Signal = "FORGET_SHORT"

	// SignalForgetLong discards a longer stretch of speech.
	SignalForgetLong Signal = "FORGET_LONG"
)

// Sentinel errors for signal handling.
var (
	// ErrInvalidSignal is returned for unknown signal names.
	ErrInvalidSignal = errors.New("session: invalid signal")

	// ErrBusy is returned while a previous signal is still being
	// processed.
	ErrBusy = errors.New("session: busy processing")

	// ErrNotListening is returned when a signal needs an active
	// session and there is none.
	ErrNotListening = errors.New("session: not listening")
)

// ParseSignal validates a raw signal name.
func ParseSignal(raw string) (Signal, error) {
	switch s := Signal(strings.ToUpper(strings.TrimSpace(raw))); s {
	case SignalWake, SignalSleep, SignalForgetShort, SignalForgetLong:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSignal, raw)
	}
}
