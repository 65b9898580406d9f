// Package ollama is a thin client for a locally hosted Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"kwclassify/internal/metrics"
)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "llama3.1:8b"
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second
	DefaultTimeout    = 60 * time.Second

	probeTimeout = 5 * time.Second

	// Low temperature and a short completion keep answers terse and JSON-shaped.
	temperature = 0.3
	numPredict  = 500
)

var (
	// ErrGenerationFailed is returned once every attempt has failed.
	ErrGenerationFailed = errors.New("ollama generation failed")
	// ErrUnexpectedStatus marks a non-200 reply from the generate endpoint.
	ErrUnexpectedStatus = errors.New("unexpected status from ollama")
)

// Client talks to the Ollama HTTP API.
type Client struct {
	baseURL    string
	model      string
	maxRetries int
	retryDelay time.Duration
	http       *http.Client
	probe      *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name sent with every generate request.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxRetries sets the total number of generate attempts.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryDelay sets the fixed delay between generate attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithTimeout sets the per-request timeout for generate calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the Ollama server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      DefaultModel,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		http:       &http.Client{Timeout: DefaultTimeout},
		probe:      &http.Client{Timeout: probeTimeout},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "ollama").Str("model", c.model).Logger()

	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Generate sends prompt to the model and returns the raw response text.
// Transport failures, timeouts and non-200 replies are retried with a fixed
// delay; an undecodable 200 body is not. After the last attempt the error
// wraps ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
			NumPredict:  numPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrGenerationFailed, err)
	}

	var (
		text    string
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(c.maxRetries-1), retry.NewConstant(c.retryDelay))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		start := time.Now()

		out, err := c.generateOnce(ctx, payload)
		if err != nil {
			metrics.ObserveModelRequest(metrics.OutcomeError, time.Since(start))
			c.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Msg("ollama request failed")
			return err
		}

		metrics.ObserveModelRequest(metrics.OutcomeSuccess, time.Since(start))
		text = out
		return nil
	})
	if err != nil {
		c.logger.Error().Err(err).Int("attempts", attempt).Msg("ollama generation gave up")
		return "", fmt.Errorf("%w after %d attempt(s): %v", ErrGenerationFailed, attempt, err)
	}

	return text, nil
}

// generateOnce performs a single generate call. Errors wrapped with
// retry.RetryableError are retried by Generate.
func (c *Client) generateOnce(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("ollama api request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", retry.RetryableError(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return strings.TrimSpace(out.Response), nil
}

// IsAvailable reports whether the Ollama server answers on its tags endpoint.
// Any error maps to false.
func (c *Client) IsAvailable(ctx context.Context) bool {
	resp, err := c.getTags(ctx)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ListModels returns the names of installed models, or an empty slice on any failure.
func (c *Client) ListModels(ctx context.Context) []string {
	models := []string{}

	resp, err := c.getTags(ctx)
	if err != nil {
		return models
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return models
	}

	for _, m := range tags.Models {
		models = append(models, m.Name)
	}
	return models
}

func (c *Client) getTags(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	return c.probe.Do(req)
}
