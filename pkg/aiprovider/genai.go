package aiprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// DefaultGenAIModel is used when GenAIConfig.Model is empty.
const DefaultGenAIModel = "gemini-2.5-flash"

const chartInstruction = `You generate chart widgets for a vehicle warranty claims dashboard.
Answer with a JSON object with exactly two string fields:
"title": a short human readable chart title,
"config": a Chart.js configuration object written as JSON text with "type"
(bar, line, pie, doughnut or scatter), "data" with "labels" and "datasets"
(each with "label", numeric "data" and optional "backgroundColor",
"borderColor", "borderWidth") and optional "options".
Do not include functions or comments.`

// GenAIConfig configures the Gemini generator.
type GenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// Claims, when set, supplies recent claim rows that are sent with the prompt.
	Claims dashboard.ClaimsRepository
	// MaxRows bounds how many claim rows are sent. Defaults to 200.
	MaxRows int
}

// GenAIGenerator asks a Gemini model for a chart widget.
type GenAIGenerator struct {
	client  *genai.Client
	model   string
	claims  dashboard.ClaimsRepository
	maxRows int
}

var _ dashboard.Generator = (*GenAIGenerator)(nil)

// NewGenAIGenerator creates a Gemini API client.
func NewGenAIGenerator(ctx context.Context, cfg GenAIConfig) (*GenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("aiprovider: genai api key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("aiprovider: create genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGenAIModel
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = 200
	}
	return &GenAIGenerator{client: client, model: model, claims: cfg.Claims, maxRows: maxRows}, nil
}

// Generate builds the prompt, calls the model once and wraps its JSON answer
// in a chart envelope.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (dashboard.GenerationResponse, error) {
	text := prompt
	if g.claims != nil {
		data, err := g.claimsContext(ctx)
		if err != nil {
			return dashboard.GenerationResponse{}, fmt.Errorf("%w: load claims context: %w", dashboard.ErrGenerationFailed, err)
		}
		text = prompt + "\n\nClaims data (JSON lines):\n" + data
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(chartInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		})
	if err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: %w", dashboard.ErrGenerationFailed, err)
	}
	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: empty model answer", dashboard.ErrMalformedResponse)
	}
	return dashboard.GenerationResponse{Type: dashboard.WidgetTypeChart, Content: content}, nil
}

func (g *GenAIGenerator) claimsContext(ctx context.Context) (string, error) {
	records, err := g.claims.LastMonthClaims(ctx)
	if err != nil {
		return "", err
	}
	if len(records) > g.maxRows {
		records = records[:g.maxRows]
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
