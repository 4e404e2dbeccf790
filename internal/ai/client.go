// Package ai proxies generation requests to a local Ollama instance.
//
// ClassKit never sends prompts to hosted AI services; the point of the proxy
// is that teacher-authored prompts stay on the local network. The payloads
// teachers send here are plaintext by definition - encrypted roster data
// cannot be used as prompt material because the server cannot read it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/classkit/classkit/internal/infrastructure/config"
	"github.com/classkit/classkit/internal/infrastructure/logging"
)

// ErrUnavailable is returned when the Ollama service cannot be reached or
// responds with an error.
var ErrUnavailable = errors.New("ai service unavailable")

// maxResponseBytes caps how much of an Ollama response we read.
const maxResponseBytes = 1 << 20 // 1 MiB

// Client talks to the Ollama HTTP API.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *logging.Logger
}

// NewClient creates an Ollama client from configuration.
func NewClient(cfg config.AIConfig, logger *logging.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		http: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateOptions tunes a single generation. Zero values fall back to the
// model defaults and are omitted from the upstream request.
type GenerateOptions struct {
	System      string  // system prompt prepended by Ollama
	Temperature float64 // sampling temperature, 0 means model default
	MaxTokens   int     // response token cap, 0 means model default
}

type modelOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options *modelOptions `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a prompt to Ollama and returns the full response text.
// Streaming is disabled: classroom helpers are short generations and a
// single response keeps the proxy simple.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	req := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: opts.System,
		Stream: false,
	}
	if opts.Temperature != 0 || opts.MaxTokens != 0 {
		req.Options = &modelOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("ollama request failed", "error", err)
		return "", ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("ollama returned error status", "status", resp.StatusCode)
		return "", ErrUnavailable
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}

	return out.Response, nil
}

// HealthCheck verifies Ollama is reachable. Used by the status endpoint so
// the UI can grey out AI features instead of failing requests.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrUnavailable
	}
	return nil
}
