package api

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"kwclassify/internal/classifier"
	"kwclassify/internal/jobs"
	"kwclassify/internal/keywords"
	"kwclassify/internal/models"
	"kwclassify/internal/validation"
)

// JobRunner submits classification jobs and reports on them.
type JobRunner interface {
	Submit(topic string, keywords []models.Keyword, settings classifier.Settings) (string, error)
	Poll(id string) (models.JobProgress, error)
	Results(id string) (models.JobResults, error)
}

// JobHandler serves job submission, progress and results.
type JobHandler struct {
	runner    JobRunner
	defaults  classifier.Settings
	uploadDir string
	logger    zerolog.Logger
}

// NewJobHandler creates a job handler. Uploaded keyword files are only
// read from uploadDir.
func NewJobHandler(runner JobRunner, defaults classifier.Settings, uploadDir string, logger zerolog.Logger) *JobHandler {
	return &JobHandler{
		runner:    runner,
		defaults:  defaults.Clone(),
		uploadDir: uploadDir,
		logger:    logger,
	}
}

type processBody struct {
	settingsBody
	Topic       string `json:"topic"`
	Filepath    string `json:"filepath"`
	ManualInput string `json:"manual_input"`
}

// Process starts a classification job and returns its id immediately.
func (h *JobHandler) Process(c fiber.Ctx) error {
	var body processBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(body.Topic) == "" {
		return jsonError(c, fiber.StatusBadRequest, "Topic is required")
	}

	settings, err := body.resolve(h.defaults)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var rows []models.Keyword
	switch {
	case body.Filepath != "":
		path := filepath.Clean(body.Filepath)
		if !validation.WithinDir(h.uploadDir, path) {
			return jsonError(c, fiber.StatusBadRequest, "Invalid file path")
		}
		rows, err = keywords.LoadFile(path)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
	case strings.TrimSpace(body.ManualInput) != "":
		rows = keywords.ParseManual(body.ManualInput)
	default:
		return jsonError(c, fiber.StatusBadRequest, "No keywords provided")
	}

	id, err := h.runner.Submit(body.Topic, rows, settings)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrNoKeywords):
			return jsonError(c, fiber.StatusBadRequest, "No keywords to process")
		case errors.Is(err, jobs.ErrTopicRequired):
			return jsonError(c, fiber.StatusBadRequest, "Topic is required")
		}
		h.logger.Error().Err(err).Msg("failed to submit job")
		return jsonError(c, fiber.StatusInternalServerError, "failed to start job")
	}

	return jsonOK(c, fiber.Map{
		"success":        true,
		"job_id":         id,
		"total_keywords": len(rows),
	})
}

// Progress returns the poll view of a job.
func (h *JobHandler) Progress(c fiber.Ctx) error {
	p, err := h.runner.Poll(c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}
	return jsonOK(c, p)
}

// Results returns statistics and export file names of a completed job.
func (h *JobHandler) Results(c fiber.Ctx) error {
	res, err := h.runner.Results(c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}

	return jsonOK(c, fiber.Map{
		"status":            res.Status,
		"statistics":        res.Statistics,
		"accepted_file":     res.AcceptedFile,
		"rejected_file":     res.RejectedFile,
		"accepted_filename": filepath.Base(res.AcceptedFile),
		"rejected_filename": filepath.Base(res.RejectedFile),
	})
}

func (h *JobHandler) lookupError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		return jsonError(c, fiber.StatusNotFound, "Job not found")
	case errors.Is(err, jobs.ErrJobNotReady):
		return jsonError(c, fiber.StatusBadRequest, "Job not completed yet")
	}
	h.logger.Error().Err(err).Msg("job lookup failed")
	return jsonError(c, fiber.StatusInternalServerError, "failed to fetch job")
}
