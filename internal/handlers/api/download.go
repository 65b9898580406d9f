package api

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"

	"kwclassify/internal/validation"
)

// DownloadHandler serves exported result files.
type DownloadHandler struct {
	outputDir string
}

// NewDownloadHandler creates a download handler reading from outputDir.
func NewDownloadHandler(outputDir string) *DownloadHandler {
	return &DownloadHandler{outputDir: outputDir}
}

// Download sends an export as an attachment. Only bare file names directly
// inside the output directory are served.
func (h *DownloadHandler) Download(c fiber.Ctx) error {
	name := c.Params("filename")
	if valid, _ := validation.ValidateDownloadName(name); !valid {
		return jsonError(c, fiber.StatusNotFound, "File not found")
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return jsonError(c, fiber.StatusNotFound, "File not found")
	}

	return c.Download(path, name)
}
