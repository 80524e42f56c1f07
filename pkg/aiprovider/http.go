// Package aiprovider implements widget generators backed by the claims AI
// endpoint, Gemini models or fixtures.
package aiprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// GenerationPath is the backend route that turns a prompt into a widget.
const GenerationPath = "/ai-data-provider/"

// HTTPConfig configures the HTTP generator.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPGenerator posts prompts to the generation backend. It performs exactly
// one request per call.
type HTTPGenerator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ dashboard.Generator = (*HTTPGenerator)(nil)

// NewHTTPGenerator builds a generator for the backend at cfg.BaseURL.
func NewHTTPGenerator(cfg HTTPConfig) (*HTTPGenerator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("aiprovider: base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPGenerator{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + GenerationPath,
		apiKey:   cfg.APIKey,
		client:   client,
	}, nil
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate sends the prompt and decodes the {type, content} envelope.
// Transport and status failures wrap ErrGenerationFailed; an undecodable body
// wraps ErrMalformedResponse.
func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) (dashboard.GenerationResponse, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: encode prompt: %w", dashboard.ErrGenerationFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: build request: %w", dashboard.ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: %w", dashboard.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: status %d: %s", dashboard.ErrGenerationFailed, resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	var out dashboard.GenerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: decode envelope: %w", dashboard.ErrMalformedResponse, err)
	}
	return out, nil
}
