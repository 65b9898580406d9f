// Package jobs runs keyword classification batches in the background and
// exposes their progress and results.
package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kwclassify/internal/classifier"
	"kwclassify/internal/models"
	"kwclassify/internal/results"
)

// KeywordClassifier decides one keyword. Implementations must always return
// a decision.
type KeywordClassifier interface {
	Classify(ctx context.Context, keyword, topic string, s classifier.Settings) models.Decision
}

// Coordinator submits jobs and serves their status. Each job runs on its
// own goroutine and classifies keywords sequentially in input order.
type Coordinator struct {
	store      *Store
	classifier KeywordClassifier
	outputDir  string
	logger     zerolog.Logger
}

// NewCoordinator creates a coordinator writing exports into outputDir.
func NewCoordinator(store *Store, cls KeywordClassifier, outputDir string, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:      store,
		classifier: cls,
		outputDir:  outputDir,
		logger:     logger.With().Str("component", "jobs").Logger(),
	}
}

// Submit validates the request, registers a pending job and starts it in
// the background. It returns the job id without waiting for any keyword.
func (c *Coordinator) Submit(topic string, keywords []models.Keyword, settings classifier.Settings) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrTopicRequired
	}
	if len(keywords) == 0 {
		return "", ErrNoKeywords
	}

	job := newJob(uuid.NewString(), topic, keywords, settings)
	c.store.Add(job)

	c.logger.Info().
		Str("job_id", job.ID).
		Str("topic", topic).
		Int("total", job.Total()).
		Str("mode", string(job.settings.Mode)).
		Msg("job submitted")

	go c.run(context.Background(), job)

	return job.ID, nil
}

// Poll returns the progress snapshot of a job.
func (c *Coordinator) Poll(id string) (models.JobProgress, error) {
	job, err := c.store.Get(id)
	if err != nil {
		return models.JobProgress{}, err
	}
	return job.Progress(), nil
}

// Results returns statistics and export paths of a completed job.
func (c *Coordinator) Results(id string) (models.JobResults, error) {
	job, err := c.store.Get(id)
	if err != nil {
		return models.JobResults{}, err
	}
	return job.Results()
}

// Wait blocks until the job reaches a terminal status or ctx ends.
func (c *Coordinator) Wait(ctx context.Context, id string) (models.JobProgress, error) {
	job, err := c.store.Get(id)
	if err != nil {
		return models.JobProgress{}, err
	}

	select {
	case <-job.Done():
		return job.Progress(), nil
	case <-ctx.Done():
		return job.Progress(), ctx.Err()
	}
}

// Job returns the registered job with id.
func (c *Coordinator) Job(id string) (*Job, error) {
	return c.store.Get(id)
}

// run processes every keyword of job, then exports and completes it.
// Rejected keywords are ordinary results; only export errors or panics fail the job.
func (c *Coordinator) run(ctx context.Context, job *Job) {
	logger := c.logger.With().Str("job_id", job.ID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("job crashed")
			job.fail(fmt.Errorf("unexpected error: %v", r))
		}
	}()

	job.start()
	logger.Info().Msg("job started")

	agg := results.NewAggregator()
	for i, kw := range job.keywords {
		job.setCurrent(kw.Title)

		decision := c.classifier.Classify(ctx, kw.Title, job.Topic, job.settings)
		agg.Add(kw, decision)

		job.advance(i + 1)
		logger.Debug().
			Str("keyword", kw.Title).
			Bool("accepted", decision.RelevanceAccepted).
			Str("category", decision.Category).
			Int("progress", i+1).
			Msg("keyword classified")
	}

	acceptedFile, rejectedFile, err := agg.Export(c.outputDir)
	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		job.fail(err)
		return
	}

	stats := agg.Statistics()
	job.complete(stats, agg.Rows(), acceptedFile, rejectedFile)

	logger.Info().
		Int("total", stats.Total).
		Int("accepted", stats.Accepted).
		Int("rejected", stats.Rejected).
		Float64("acceptance_rate", stats.AcceptanceRate).
		Msg("job completed")
}
