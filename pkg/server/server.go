// Package server exposes the diary engine over HTTP: device
// signals, session control, stored memories, and the projector and
// device-audio websockets.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/oblivilight/oblivilight/internal/log"
	"github.com/oblivilight/oblivilight/pkg/audio"
	"github.com/oblivilight/oblivilight/pkg/hub"
	"github.com/oblivilight/oblivilight/pkg/memory"
	"github.com/oblivilight/oblivilight/pkg/session"
)

// Server is the appliance's HTTP and websocket surface.
type Server struct {
	app  *fiber.App
	addr string

	agent     *session.Agent
	store     memory.Store
	projector *hub.Hub

	buffer     *audio.Buffer
	sampleRate int
}

// New creates the server and registers all routes.
func New(addr string, agent *session.Agent, store memory.Store, projector *hub.Hub, buffer *audio.Buffer, sampleRate int) *Server {
	s := &Server{
		addr:       addr,
		agent:      agent,
		store:      store,
		projector:  projector,
		buffer:     buffer,
		sampleRate: sampleRate,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Oblivilight",
		DisableStartupMessage: true,
	})

	// CORS for the projector page during development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Post("/device/signal", s.handleSignal)
	api.Get("/session/status", s.handleStatus)
	api.Post("/session/inject-context", s.handleInjectContext)
	api.Get("/memory/:uuid", s.handleReadMemory)
	api.Put("/memory/:uuid", s.handleUpdateMemory)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/projector", websocket.New(s.handleProjectorWS))
	app.Get("/ws/device/audio", websocket.New(s.handleDeviceAudioWS))

	s.app = app
	return s
}

// Start begins serving. It blocks until Shutdown is called.
func (s *Server) Start() error {
	log.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
