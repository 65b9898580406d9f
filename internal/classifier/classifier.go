// Package classifier turns model answers into keyword decisions.
package classifier

import (
	"context"

	"github.com/rs/zerolog"

	"kwclassify/internal/metrics"
	"kwclassify/internal/models"
	"kwclassify/internal/ollama"
)

// Generator produces raw model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier decides relevance and intent category for keywords.
type Classifier struct {
	gen    Generator
	logger zerolog.Logger
}

// New creates a classifier backed by gen.
func New(gen Generator, logger zerolog.Logger) *Classifier {
	return &Classifier{
		gen:    gen,
		logger: logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify returns the decision for keyword against topic. It never fails:
// model errors, unparseable answers and bad field types all produce the
// default-reject decision.
func (c *Classifier) Classify(ctx context.Context, keyword, topic string, s Settings) models.Decision {
	if s.Mode == ModeTwoCall {
		return c.record(c.classifyTwoCall(ctx, keyword, topic, s))
	}

	prompt := RenderPrompt(s.ClassificationPrompt, topic, keyword, s.Categories)
	obj, ok := c.ask(ctx, keyword, prompt)
	if !ok {
		return c.fallback(keyword)
	}

	relevanceConfidence, err := intField(obj, "relevance_confidence")
	if err != nil {
		c.logger.Warn().Str("keyword", keyword).Err(err).Msg("bad relevance confidence, rejecting")
		return c.fallback(keyword)
	}
	categoryConfidence, err := intField(obj, "category_confidence")
	if err != nil {
		c.logger.Warn().Str("keyword", keyword).Err(err).Msg("bad category confidence, rejecting")
		return c.fallback(keyword)
	}

	decision := models.Decision{
		Keyword:            keyword,
		RelevanceAccepted:  boolField(obj, "relevant") && relevanceConfidence >= s.ConfidenceThreshold,
		RelevanceScore:     relevanceConfidence,
		Category:           s.ValidateCategory(stringField(obj, "category", models.CategoryUnknown)),
		CategoryConfidence: categoryConfidence,
	}

	return c.record(decision.Normalize())
}

// ask calls the model and parses its answer. ok is false when either step fails.
func (c *Classifier) ask(ctx context.Context, keyword, prompt string) (map[string]any, bool) {
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn().Str("keyword", keyword).Err(err).Msg("model call failed, rejecting")
		return nil, false
	}

	obj := ollama.ParseObject(text)
	if obj == nil {
		c.logger.Warn().Str("keyword", keyword).Str("response", text).Msg("unparseable model response, rejecting")
		return nil, false
	}
	return obj, true
}

func (c *Classifier) fallback(keyword string) models.Decision {
	metrics.RecordDecision(metrics.DecisionFallback)
	return models.DefaultReject(keyword)
}

func (c *Classifier) record(d models.Decision) models.Decision {
	if d.RelevanceAccepted {
		metrics.RecordDecision(metrics.DecisionAccepted)
	} else {
		metrics.RecordDecision(metrics.DecisionRejected)
	}
	return d
}
