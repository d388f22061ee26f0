// Package light translates session events into projector light
// commands and broadcasts them over the projector hub.
package light

import (
	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/emotion"
)

// Mode is a named lighting program on the projector.
type Mode string

const (
	// ModeIdle is the ambient program shown outside active sessions.
	ModeIdle Mode = "IDLE"

	// ModeSleep is shown while the nightly summary is being produced.
	ModeSleep Mode = "SLEEP"

	// ModeForget is the brief visual played when memories are discarded.
	ModeForget Mode = "FORGET"
)

// Event is the wire shape sent to projector clients.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Broadcaster is the subset of the hub the controller needs.
type Broadcaster interface {
	BroadcastJSON(v interface{}) error
}

// Controller sends light commands to all connected projectors.
type Controller struct {
	hub Broadcaster
}

// NewController creates a controller over the given broadcaster.
func NewController(hub Broadcaster) *Controller {
	return &Controller{hub: hub}
}

// SetEmotion changes the projection color to match the given emotion.
func (c *Controller) SetEmotion(label emotion.Label) {
	evt := Event{
		Type:    "SET_EMOTION",
		Payload: map[string]any{"emotion": string(label)},
	}
	if err := c.hub.BroadcastJSON(evt); err != nil {
		log.Error("broadcast emotion failed", "error", err)
	}
}

// SetMode switches the projector to a named lighting program.
func (c *Controller) SetMode(mode Mode) {
	evt := Event{
		Type:    "SET_MODE",
		Payload: map[string]any{"mode": string(mode)},
	}
	if err := c.hub.BroadcastJSON(evt); err != nil {
		log.Error("broadcast mode failed", "error", err)
	}
}
