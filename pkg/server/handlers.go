package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/oblivilight/oblivilight/pkg/memory"
	"github.com/oblivilight/oblivilight/pkg/session"
)

// SignalRequest is the body of POST /api/device/signal.
type SignalRequest struct {
	Signal string `json:"signal"`
}

// InjectContextRequest is the body of POST /api/session/inject-context.
type InjectContextRequest struct {
	Context string `json:"context"`
}

// UpdateMemoryRequest is the body of PUT /api/memory/:uuid. Omitted
// fields are left unchanged.
type UpdateMemoryRequest struct {
	FullSummary  *string `json:"full_summary"`
	ShortSummary *string `json:"short_summary"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"projectors": s.projector.ClientCount(),
	})
}

// handleSignal acknowledges a device signal. The heavy work runs in
// the background; only validation errors are reported here.
func (s *Server) handleSignal(c *fiber.Ctx) error {
	var req SignalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := s.agent.HandleSignal(c.Context(), req.Signal)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"status": "ok", "signal": strings.ToUpper(strings.TrimSpace(req.Signal))})
	case errors.Is(err, session.ErrInvalidSignal):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNotListening):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.agent.Status())
}

func (s *Server) handleInjectContext(c *fiber.Ctx) error {
	var req InjectContextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	text := strings.TrimSpace(req.Context)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "context must not be empty",
		})
	}
	s.agent.InjectContext(text)
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReadMemory(c *fiber.Ctx) error {
	rec, err := s.store.Read(c.Params("uuid"))
	if errors.Is(err, memory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "memory not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

func (s *Server) handleUpdateMemory(c *fiber.Ctx) error {
	var req UpdateMemoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	rec, err := s.store.Update(c.Params("uuid"), memory.Update{
		FullSummary:  req.FullSummary,
		ShortSummary: req.ShortSummary,
	})
	if errors.Is(err, memory.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "memory not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}
