package classifier

import (
	"context"

	"kwclassify/internal/models"
)

const (
	reasonMissing         = "No reason provided"
	reasonRelevanceFailed = "Failed to analyze"
	reasonCategoryFailed  = "Failed to classify"
	reasonCategorySkipped = "Not classified (rejected)"
)

// classifyTwoCall is the legacy mode: one model call for relevance, then one
// for category. The category call is skipped for rejected keywords since
// their category is discarded anyway.
func (c *Classifier) classifyTwoCall(ctx context.Context, keyword, topic string, s Settings) models.Decision {
	accepted, score, relevanceReason := c.checkRelevance(ctx, keyword, topic, s)

	category, categoryConfidence, categoryReason := models.CategoryNone, 0, reasonCategorySkipped
	if accepted {
		category, categoryConfidence, categoryReason = c.classifyCategory(ctx, keyword, s)
	}

	d := models.Decision{
		Keyword:            keyword,
		RelevanceAccepted:  accepted,
		RelevanceScore:     score,
		Category:           category,
		CategoryConfidence: categoryConfidence,
		Reason:             "Relevance: " + relevanceReason + " | Category: " + categoryReason,
	}
	return d.Normalize()
}

func (c *Classifier) checkRelevance(ctx context.Context, keyword, topic string, s Settings) (bool, int, string) {
	prompt := RenderPrompt(s.RelevancePrompt, topic, keyword, s.Categories)
	obj, ok := c.ask(ctx, keyword, prompt)
	if !ok {
		return false, 0, reasonRelevanceFailed
	}

	confidence, err := intField(obj, "confidence")
	if err != nil {
		c.logger.Warn().Str("keyword", keyword).Err(err).Msg("bad relevance confidence")
		return false, 0, reasonRelevanceFailed
	}

	accepted := boolField(obj, "relevant") && confidence >= s.ConfidenceThreshold
	return accepted, confidence, stringField(obj, "reason", reasonMissing)
}

func (c *Classifier) classifyCategory(ctx context.Context, keyword string, s Settings) (string, int, string) {
	prompt := RenderPrompt(s.CategoryPrompt, "", keyword, s.Categories)
	obj, ok := c.ask(ctx, keyword, prompt)
	if !ok {
		return models.CategoryUnknown, 0, reasonCategoryFailed
	}

	confidence, err := intField(obj, "confidence")
	if err != nil {
		c.logger.Warn().Str("keyword", keyword).Err(err).Msg("bad category confidence")
		return models.CategoryUnknown, 0, reasonCategoryFailed
	}

	category := s.ValidateCategory(stringField(obj, "category", models.CategoryUnknown))
	return category, confidence, stringField(obj, "reason", reasonMissing)
}
