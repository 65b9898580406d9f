package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"kwclassify/internal/classifier"
)

// SettingsHandler exposes the server's default classification settings.
type SettingsHandler struct {
	defaults classifier.Settings
}

// NewSettingsHandler creates a settings handler around defaults.
func NewSettingsHandler(defaults classifier.Settings) *SettingsHandler {
	return &SettingsHandler{defaults: defaults.Clone()}
}

// settingsBody is the request shape shared by POST /api/settings and
// POST /api/process.
type settingsBody struct {
	ConfidenceThreshold  *int     `json:"confidence_threshold"`
	Categories           []string `json:"categories"`
	ClassificationPrompt string   `json:"classification_prompt"`
	Mode                 string   `json:"mode"`
	RelevancePrompt      string   `json:"relevance_prompt"`
	CategoryPrompt       string   `json:"category_prompt"`
}

// resolve merges the body over defaults.
func (b settingsBody) resolve(defaults classifier.Settings) (classifier.Settings, error) {
	mode, err := classifier.ParseMode(b.Mode)
	if err != nil {
		return classifier.Settings{}, err
	}

	s := defaults.WithOverrides(b.ConfidenceThreshold, b.Categories, b.ClassificationPrompt)
	if mode == classifier.ModeTwoCall {
		s = s.WithTwoCall(b.RelevancePrompt, b.CategoryPrompt)
	}
	return s, nil
}

// Get returns the default settings.
func (h *SettingsHandler) Get(c fiber.Ctx) error {
	return jsonOK(c, h.defaults)
}

// Validate normalizes a settings body and echoes it back. Nothing is stored.
func (h *SettingsHandler) Validate(c fiber.Ctx) error {
	var body settingsBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	s, err := body.resolve(h.defaults)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	return jsonOK(c, fiber.Map{
		"success":  true,
		"settings": s,
	})
}
