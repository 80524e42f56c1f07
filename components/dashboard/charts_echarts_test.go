package dashboard

import (
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartOf(kind string) ChartConfig {
	return ChartConfig{
		Type: kind,
		Data: ChartData{
			Labels: []string{"Approved", "Pending", "Rejected"},
			Datasets: []Dataset{
				{Label: "2024", Data: []float64{70, 20, 10}, BackgroundColor: Colors{"#34D399", "#FBBF24", "#F87171"}},
				{Label: "2023", Data: []float64{60, 25, 15}, BorderColor: Colors{"#60A5FA"}, Tension: 0.3},
			},
		},
	}
}

func TestEChartsRendererSupportedTypes(t *testing.T) {
	t.Parallel()
	renderer := NewEChartsRenderer()
	for _, kind := range []string{"bar", "line", "pie", "doughnut", "scatter", "BAR"} {
		kind := kind
		t.Run(kind, func(t *testing.T) {
			t.Parallel()
			markup, err := renderer.RenderHTML("Claims by status", chartOf(kind))
			require.NoError(t, err)
			assert.Contains(t, markup, "echarts")
			assert.Contains(t, markup, "Claims by status")
		})
	}
}

func TestEChartsRendererUnsupportedType(t *testing.T) {
	t.Parallel()
	_, err := NewEChartsRenderer().RenderHTML("x", chartOf("radar"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestEChartsRendererThemeAndHeight(t *testing.T) {
	t.Parallel()
	renderer := NewEChartsRenderer(
		WithChartTheme(types.ThemeWalden),
		WithChartHeight("480px"),
		WithChartAssetsHost("https://cdn.example.com/echarts/"),
	)
	markup, err := renderer.RenderHTML("Themed", chartOf("bar"))
	require.NoError(t, err)
	assert.Contains(t, markup, types.ThemeWalden)
	assert.Contains(t, markup, "480px")
	assert.Contains(t, markup, "https://cdn.example.com/echarts/")
}

func TestEChartsRendererPrefersConfiguredTitle(t *testing.T) {
	t.Parallel()
	cfg := chartOf("bar")
	cfg.Options = map[string]any{"plugins": map[string]any{"title": map[string]any{"text": "Configured title"}}}
	markup, err := NewEChartsRenderer().RenderHTML("Widget title", cfg)
	require.NoError(t, err)
	assert.Contains(t, markup, "Configured title")
	assert.Equal(t, "Chart", chartTitle(ChartConfig{}, ""))
}

func TestEChartsRendererKeepsTextReadable(t *testing.T) {
	t.Parallel()
	cfg := chartOf("bar")
	cfg.Data.Labels = []string{"R&D", "Sales & Ops", "Legal"}
	cfg.Data.Datasets[0].Label = "Q1 > Q4"
	markup, err := NewEChartsRenderer().RenderHTML("Claims by R&D team", cfg)
	require.NoError(t, err)
	assert.NotContains(t, markup, "&amp;")
	assert.NotContains(t, markup, "&gt;")
	assert.Contains(t, markup, `R\u0026D`)
	assert.Contains(t, markup, `Claims by R\u0026D team`)
	assert.Contains(t, markup, `Q1 \u003e Q4`)
}

func TestEChartsRendererKeepsTextInsideScript(t *testing.T) {
	t.Parallel()
	cfg := chartOf("bar")
	cfg.Data.Labels = []string{`</script><img src=x onerror=alert(1)>`}
	cfg.Data.Datasets[0].Label = `<b onclick="hack">Series</b>`
	markup, err := NewEChartsRenderer().RenderHTML(`<script>alert("xss")</script>`, cfg)
	require.NoError(t, err)
	assert.NotContains(t, markup, "<img src")
	assert.NotContains(t, markup, "<b onclick")
	assert.NotContains(t, markup, `<script>alert("xss")`)
	assert.Contains(t, markup, `\u003c/script\u003e\u003cimg src=x onerror=alert(1)\u003e`)
}

func TestSeriesHelpers(t *testing.T) {
	assert.Equal(t, "Series 2", seriesName(Dataset{}, 1))
	assert.Equal(t, "", labelAt([]string{"a"}, 3))
	assert.Nil(t, seriesColor(Dataset{BackgroundColor: Colors{"a", "b"}}))
	assert.Len(t, seriesColor(Dataset{BorderColor: Colors{"#fff"}}), 1)
}
