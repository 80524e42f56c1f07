package aiprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ettle/strcase"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

// MockGenerator answers every prompt with the same claims-by-model bar chart
// titled after the prompt. It is used for demos and offline development.
type MockGenerator struct {
	mu     sync.Mutex
	calls  int
	labels []string
	values []float64
}

var _ dashboard.Generator = (*MockGenerator)(nil)

// NewMockGenerator returns a generator with a fixed claims dataset.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		labels: []string{"MAZDA_CX_5", "MAZDA3_SEDAN", "MAZDA_CX_30", "MAZDA_CX_90", "MAZDA_MX_5_MIATA"},
		values: []float64{858, 882, 831, 878, 819},
	}
}

// Calls reports how many prompts were answered.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate returns a chart envelope. The config is an object literal like the
// real backend produces.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (dashboard.GenerationResponse, error) {
	if err := ctx.Err(); err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: %w", dashboard.ErrGenerationFailed, err)
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	labels := make([]string, len(m.labels))
	for i, l := range m.labels {
		labels[i] = "'" + l + "'"
	}
	values := make([]string, len(m.values))
	for i, v := range m.values {
		values[i] = fmt.Sprintf("%g", v)
	}
	config := fmt.Sprintf(`{ type: 'bar', data: { labels: [%s], datasets: [{ label: 'Claim Count', data: [%s], backgroundColor: 'rgba(54, 162, 235, 0.6)', borderColor: 'rgba(54, 162, 235, 1)', borderWidth: 1 }] }, options: { responsive: true, maintainAspectRatio: false } }`,
		strings.Join(labels, ", "), strings.Join(values, ", "))
	content, err := json.Marshal(map[string]string{
		"title":  mockTitle(prompt),
		"config": config,
	})
	if err != nil {
		return dashboard.GenerationResponse{}, fmt.Errorf("%w: %w", dashboard.ErrGenerationFailed, err)
	}
	return dashboard.GenerationResponse{Type: dashboard.WidgetTypeChart, Content: string(content)}, nil
}

func mockTitle(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) > 8 {
		words = words[:8]
	}
	title := strcase.ToCase(strings.Join(words, " "), strcase.TitleCase, ' ')
	if title == "" {
		return "Claims"
	}
	return title
}
