package api

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
)

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	dirs []string
}

// NewProbeHandler creates a probe handler that requires dirs to be writable.
func NewProbeHandler(dirs ...string) *ProbeHandler {
	return &ProbeHandler{dirs: dirs}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// The model server is not checked: jobs still complete while it is down.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	for _, dir := range h.dirs {
		if err := checkWritable(dir); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "directory not writable: " + filepath.Base(dir),
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".readyz-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
