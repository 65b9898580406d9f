package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kwclassify/internal/keywords"
	"kwclassify/internal/validation"
)

// UploadHandler stores keyword CSV uploads.
type UploadHandler struct {
	uploadDir string
	logger    zerolog.Logger
}

// NewUploadHandler creates an upload handler writing into uploadDir.
func NewUploadHandler(uploadDir string, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{uploadDir: uploadDir, logger: logger}
}

// Upload saves the "file" part, then validates it as a keyword CSV. Files
// failing validation are removed again.
func (h *UploadHandler) Upload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "No file provided")
	}

	if valid, msg := validation.ValidateUploadName(fh.Filename); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	name := validation.SanitizeFilename(fh.Filename)
	if name == "" {
		return jsonError(c, fiber.StatusBadRequest, "Invalid file name")
	}
	name = uuid.NewString() + "_" + name

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Error().Err(err).Str("dir", h.uploadDir).Msg("failed to create upload directory")
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save file")
	}

	path := filepath.Join(h.uploadDir, name)
	if err := c.SaveFile(fh, path); err != nil {
		h.logger.Error().Err(err).Str("path", path).Msg("failed to save upload")
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save file")
	}

	rows, err := keywords.LoadFile(path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			h.logger.Warn().Err(rmErr).Str("path", path).Msg("failed to remove rejected upload")
		}
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	h.logger.Info().Str("filename", name).Int("keywords", len(rows)).Msg("upload accepted")

	return jsonOK(c, fiber.Map{
		"success":       true,
		"filename":      name,
		"filepath":      path,
		"keyword_count": len(rows),
		"message":       fmt.Sprintf("Loaded %d keywords", len(rows)),
	})
}
