package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// ModelProbe reports on the model server.
type ModelProbe interface {
	IsAvailable(ctx context.Context) bool
	ListModels(ctx context.Context) []string
}

// HealthHandler reports service and model server health.
type HealthHandler struct {
	probe ModelProbe
}

// NewHealthHandler creates a new API health handler.
func NewHealthHandler(probe ModelProbe) *HealthHandler {
	return &HealthHandler{probe: probe}
}

// Check always answers 200; model server problems show up in the body.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	available := h.probe.IsAvailable(c.Context())

	models := []string{}
	if available {
		models = h.probe.ListModels(c.Context())
	}

	return jsonOK(c, fiber.Map{
		"status":           "ok",
		"ollama_available": available,
		"models":           models,
	})
}
