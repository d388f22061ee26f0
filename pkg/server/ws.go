package server

import (
	"github.com/gofiber/websocket/v2"
	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/audio"
	"github.com/oblivilight/oblivilight/pkg/hub"
)

// handleProjectorWS attaches a projector page to the broadcast hub.
// The client only receives; its pumps handle keepalive.
func (s *Server) handleProjectorWS(c *websocket.Conn) {
	client := hub.NewClient(s.projector, c)
	client.Run()
}

// handleDeviceAudioWS receives the bedside device's microphone
// stream as binary PCM16 frames and feeds the capture buffer.
func (s *Server) handleDeviceAudioWS(c *websocket.Conn) {
	defer c.Close()
	log.Info("device audio stream connected")

	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			log.Info("device audio stream closed", "error", err)
			return
		}
		if msgType != websocket.BinaryMessage || len(data) < 2 {
			continue
		}
		var chunk audio.Chunk
		chunk.FromBytes(data, s.sampleRate)
		s.buffer.Push(chunk)
	}
}
