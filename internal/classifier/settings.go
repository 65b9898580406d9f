package classifier

import (
	"fmt"
	"slices"
	"strings"

	"kwclassify/internal/config"
	"kwclassify/internal/models"
)

// DefaultConfidenceThreshold is the minimum relevance confidence to accept a keyword.
const DefaultConfidenceThreshold = 75

// Mode selects how many model calls are made per keyword.
type Mode string

const (
	ModeCombined Mode = "combined" // one call for relevance and category
	ModeTwoCall  Mode = "two_call" // legacy: separate relevance and category calls
)

// Settings are the per-job classification parameters. Build them with
// NewSettings or DefaultSettings; a job keeps its own copy for its lifetime.
type Settings struct {
	ConfidenceThreshold  int      `json:"confidence_threshold"`
	Categories           []string `json:"categories"`
	ClassificationPrompt string   `json:"classification_prompt"`
	RelevancePrompt      string   `json:"relevance_prompt"`
	CategoryPrompt       string   `json:"category_prompt"`
	Mode                 Mode     `json:"mode"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		ConfidenceThreshold:  DefaultConfidenceThreshold,
		Categories:           slices.Clone(DefaultCategories),
		ClassificationPrompt: DefaultClassificationPrompt,
		RelevancePrompt:      DefaultRelevancePrompt,
		CategoryPrompt:       DefaultCategoryPrompt,
		Mode:                 ModeCombined,
	}
}

// NewSettings validates and normalizes raw settings: the threshold is clamped
// to [0,100], categories are trimmed and de-duplicated in order, and empty
// prompts or category lists fall back to the defaults.
func NewSettings(threshold int, categories []string, classificationPrompt string) Settings {
	return DefaultSettings().WithOverrides(&threshold, categories, classificationPrompt)
}

// WithTwoCall switches s to the legacy two-call mode, overriding either
// prompt when non-empty.
func (s Settings) WithTwoCall(relevancePrompt, categoryPrompt string) Settings {
	s = s.Clone()
	s.Mode = ModeTwoCall
	if strings.TrimSpace(relevancePrompt) != "" {
		s.RelevancePrompt = relevancePrompt
	}
	if strings.TrimSpace(categoryPrompt) != "" {
		s.CategoryPrompt = categoryPrompt
	}
	return s
}

// ApplyFile overlays the non-empty values of a settings file.
func (s Settings) ApplyFile(sf *config.SettingsFile) Settings {
	s = s.Clone()
	if sf == nil {
		return s
	}
	if sf.ConfidenceThreshold != nil {
		s.ConfidenceThreshold = ClampScore(*sf.ConfidenceThreshold)
	}
	if cats := normalizeCategories(sf.Categories); len(cats) > 0 {
		s.Categories = cats
	}
	if strings.TrimSpace(sf.ClassificationPrompt) != "" {
		s.ClassificationPrompt = sf.ClassificationPrompt
	}
	if strings.TrimSpace(sf.RelevancePrompt) != "" {
		s.RelevancePrompt = sf.RelevancePrompt
	}
	if strings.TrimSpace(sf.CategoryPrompt) != "" {
		s.CategoryPrompt = sf.CategoryPrompt
	}
	return s
}

// WithOverrides applies per-request values on top of s. A nil threshold,
// empty category list or blank prompt keeps the current value.
func (s Settings) WithOverrides(threshold *int, categories []string, classificationPrompt string) Settings {
	s = s.Clone()
	if threshold != nil {
		s.ConfidenceThreshold = ClampScore(*threshold)
	}
	if cats := normalizeCategories(categories); len(cats) > 0 {
		s.Categories = cats
	}
	if strings.TrimSpace(classificationPrompt) != "" {
		s.ClassificationPrompt = classificationPrompt
	}
	return s
}

// ParseMode maps a request value to a Mode.
func ParseMode(v string) (Mode, error) {
	switch Mode(strings.TrimSpace(v)) {
	case "", ModeCombined:
		return ModeCombined, nil
	case ModeTwoCall:
		return ModeTwoCall, nil
	default:
		return "", fmt.Errorf("unknown classification mode %q", v)
	}
}

// Clone returns a deep copy so the caller can't mutate a running job's settings.
func (s Settings) Clone() Settings {
	s.Categories = slices.Clone(s.Categories)
	return s
}

// HasCategory reports whether category is in the configured set.
func (s Settings) HasCategory(category string) bool {
	return slices.Contains(s.Categories, category)
}

// ValidateCategory returns category when it is configured or "none", and
// "unknown" otherwise.
func (s Settings) ValidateCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == models.CategoryNone || s.HasCategory(category) {
		return category
	}
	return models.CategoryUnknown
}

// ClampScore clamps v to [0,100].
func ClampScore(v int) int {
	return max(0, min(100, v))
}

func normalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}
