package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

// ChartConfigParser turns chart configuration text into a ChartConfig. JSON and
// JavaScript object literals (unquoted keys, single quoted strings, comments,
// trailing commas) are decoded as JSON5; nothing in the text is ever evaluated.
type ChartConfigParser struct {
	validator ConfigValidator
}

// NewChartConfigParser builds a parser. A nil validator uses the bundled chart schema.
func NewChartConfigParser(validator ConfigValidator) *ChartConfigParser {
	if validator == nil {
		validator = NewChartConfigValidator()
	}
	return &ChartConfigParser{validator: validator}
}

var defaultChartParser = NewChartConfigParser(nil)

// ParseChartConfig parses text with the default parser.
func ParseChartConfig(text string) (ChartConfig, error) {
	return defaultChartParser.Parse(text)
}

// Parse decodes and validates a chart configuration.
func (p *ChartConfigParser) Parse(text string) (ChartConfig, error) {
	source := trimConfigText(text)
	if source == "" {
		return ChartConfig{}, fmt.Errorf("%w: configuration is empty", ErrInvalidConfig)
	}
	var raw any
	if err := json5.Unmarshal([]byte(source), &raw); err != nil {
		return ChartConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return ChartConfig{}, fmt.Errorf("%w: configuration must be an object", ErrInvalidConfig)
	}
	payload, err := normalizeJSON(raw)
	if err != nil {
		return ChartConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	stringifyLabels(payload)
	if err := rejectExecutable(payload, "config"); err != nil {
		return ChartConfig{}, err
	}
	if err := p.validator.Validate(payload); err != nil {
		return ChartConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ChartConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	var cfg ChartConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ChartConfig{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

type generatedContent struct {
	Title  string          `json:"title"`
	Config json.RawMessage `json:"config"`
}

// ParseGenerated converts a generation response into an unsaved widget. The
// widget has no id; the creation flow assigns one.
func (p *ChartConfigParser) ParseGenerated(resp GenerationResponse) (Widget, error) {
	if resp.Type != WidgetTypeChart {
		return Widget{}, fmt.Errorf("%w: unsupported widget type %q", ErrMalformedResponse, resp.Type)
	}
	var content generatedContent
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &content); err != nil {
		return Widget{}, fmt.Errorf("%w: decode content: %w", ErrMalformedResponse, err)
	}
	source, err := configSource(content.Config)
	if err != nil {
		return Widget{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	cfg, err := p.Parse(source)
	if err != nil {
		return Widget{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return Widget{
		Title:  strings.TrimSpace(content.Title),
		Type:   WidgetTypeChart,
		Config: cfg,
		View:   ViewChart,
	}, nil
}

// configSource accepts the configuration either as embedded text or as a JSON object.
func configSource(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", errors.New("config is missing")
	}
	if trimmed[0] != '"' {
		return string(trimmed), nil
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return "", fmt.Errorf("decode config text: %w", err)
	}
	return text, nil
}

func trimConfigText(text string) string {
	source := stripCodeFence(text)
	for _, prefix := range []string{"const ", "let ", "var "} {
		if strings.HasPrefix(source, prefix) {
			if idx := strings.Index(source, "="); idx >= 0 {
				source = strings.TrimSpace(source[idx+1:])
			}
			break
		}
	}
	return strings.TrimSpace(strings.TrimSuffix(source, ";"))
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}

func normalizeJSON(raw any) (map[string]any, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// stringifyLabels rewrites numeric category and series labels (years, model
// numbers) as strings.
func stringifyLabels(payload map[string]any) {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return
	}
	if labels, ok := data["labels"].([]any); ok {
		for i, label := range labels {
			if n, ok := label.(float64); ok {
				labels[i] = strconv.FormatFloat(n, 'f', -1, 64)
			}
		}
	}
	if datasets, ok := data["datasets"].([]any); ok {
		for _, item := range datasets {
			ds, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if n, ok := ds["label"].(float64); ok {
				ds["label"] = strconv.FormatFloat(n, 'f', -1, 64)
			}
		}
	}
}

// displayKeys hold text that is drawn, never run.
var displayKeys = map[string]bool{"label": true, "labels": true, "text": true, "title": true}

var functionSyntax = regexp.MustCompile(`^(async\s+)?(function\b|(\([^()]*\)|[A-Za-z_$][\w$]*)\s*=>)`)

func rejectExecutable(v any, path string) error {
	return walkExecutable(v, path, false)
}

func walkExecutable(v any, path string, display bool) error {
	switch val := v.(type) {
	case map[string]any:
		for key, item := range val {
			if err := walkExecutable(item, path+"."+key, displayKeys[key]); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range val {
			if err := walkExecutable(item, fmt.Sprintf("%s[%d]", path, i), display); err != nil {
				return err
			}
		}
	case string:
		if !display && functionSyntax.MatchString(strings.TrimSpace(val)) {
			return fmt.Errorf("%w: executable value at %s", ErrInvalidConfig, path)
		}
	}
	return nil
}
