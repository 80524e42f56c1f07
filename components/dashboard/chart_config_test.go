package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChartConfigObjectLiteral(t *testing.T) {
	cfg, err := ParseChartConfig(topModelsConfig)
	require.NoError(t, err)

	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, []string{"Corolla", "Camry", "RAV4", "Hilux", "Yaris"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 1)
	ds := cfg.Data.Datasets[0]
	assert.Equal(t, "Claims", ds.Label)
	assert.Equal(t, []float64{120, 95, 80, 64, 51}, ds.Data)
	assert.Equal(t, Colors{"rgba(54, 162, 235, 0.6)"}, ds.BackgroundColor)
	assert.Equal(t, 1.0, ds.BorderWidth)
	assert.Equal(t, true, cfg.Options["responsive"])

	literals := map[string]struct {
		text   string
		labels []string
		series string
	}{
		"compact": {
			text:   "{type:'bar',data:{labels:['a'],datasets:[{label:'x',data:[1]}]}}",
			labels: []string{"a"},
			series: "x",
		},
		"line comments": {
			text:   "{\n  // claims per region\n  type: 'bar',\n  data: {\n    labels: ['North', 'South'], // two regions\n    datasets: [{ label: 'Open', data: [4, 7], },],\n  },\n}",
			labels: []string{"North", "South"},
			series: "Open",
		},
		"arrow in labels": {
			text:   "{ type: 'bar', data: { labels: ['A => B', 'B => C'], datasets: [{ label: 'Transfers => Closed', data: [2, 3] }] }, options: { plugins: { title: { text: 'x => y' } } } }",
			labels: []string{"A => B", "B => C"},
			series: "Transfers => Closed",
		},
	}
	for name, tc := range literals {
		t.Run(name, func(t *testing.T) {
			cfg, err := ParseChartConfig(tc.text)
			require.NoError(t, err)
			assert.Equal(t, "bar", cfg.Type)
			assert.Equal(t, tc.labels, cfg.Data.Labels)
			require.Len(t, cfg.Data.Datasets, 1)
			assert.Equal(t, tc.series, cfg.Data.Datasets[0].Label)
		})
	}
}

func TestParseChartConfigAcceptsJSON(t *testing.T) {
	cfg, err := ParseChartConfig(`{"type":"pie","data":{"labels":["Approved","Rejected"],"datasets":[{"data":[70,30],"backgroundColor":["#34D399","#F87171"]}]}}`)
	require.NoError(t, err)
	assert.Equal(t, "pie", cfg.Type)
	assert.Equal(t, Colors{"#34D399", "#F87171"}, cfg.Data.Datasets[0].BackgroundColor)
	assert.Nil(t, cfg.Options)
}

func TestParseChartConfigStripsDeclarationAndFence(t *testing.T) {
	text := "```javascript\nconst config = {\n\ttype: 'line',\n\tdata: { labels: [2021, 2022, 2023], datasets: [{ label: 2024, data: [3, 5, 8], fill: false, tension: 0.4 }] }\n};\n```"
	cfg, err := ParseChartConfig(text)
	require.NoError(t, err)
	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, []string{"2021", "2022", "2023"}, cfg.Data.Labels)
	assert.Equal(t, "2024", cfg.Data.Datasets[0].Label)
	require.NotNil(t, cfg.Data.Datasets[0].Fill)
	assert.False(t, *cfg.Data.Datasets[0].Fill)
	assert.Equal(t, 0.4, cfg.Data.Datasets[0].Tension)
}

func TestParseChartConfigRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"empty":              "   ",
		"not an object":      "[1, 2, 3]",
		"syntax error":       "{ type: 'bar', data: {",
		"unsupported type":   "{ type: 'radar', data: { labels: ['a'], datasets: [{ data: [1] }] } }",
		"missing data":       "{ type: 'bar' }",
		"unknown top key":    "{ type: 'bar', plugins: [], data: { labels: ['a'], datasets: [{ data: [1] }] } }",
		"non numeric series": "{ type: 'bar', data: { labels: ['a'], datasets: [{ data: ['x'] }] } }",
		"no datasets":        "{ type: 'bar', data: { labels: ['a'], datasets: [] } }",
		"arrow function":     "{ type: 'bar', data: { labels: ['a'], datasets: [{ data: [1] }] }, options: { onClick: '() => alert(1)' } }",
		"function value":     "{ type: 'bar', data: { labels: ['a'], datasets: [{ data: [1], borderColor: 'function() { return 1 }' }] } }",
		"bare arrow":         "{ type: 'bar', data: { labels: ['a'], datasets: [{ data: [1] }] }, options: { onHover: 'e => e.x' } }",
		"nested style":       "{ type: 'bar', data: { labels: ['a'], datasets: [{ data: [1], pointStyle: { a: 1 } }] } }",
		"negative width":     "{ type: 'bar', data: { labels: ['a'], datasets: [{ data: [1], borderWidth: -1 }] } }",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseChartConfig(text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseGeneratedAcceptsObjectConfig(t *testing.T) {
	parser := NewChartConfigParser(nil)
	widget, err := parser.ParseGenerated(GenerationResponse{
		Type:    WidgetTypeChart,
		Content: `{"title":" Claims by status ","config":{"type":"doughnut","data":{"labels":["A","R"],"datasets":[{"data":[4,1]}]}}}`,
	})
	require.NoError(t, err)
	assert.Empty(t, widget.ID)
	assert.Equal(t, "Claims by status", widget.Title)
	assert.Equal(t, WidgetTypeChart, widget.Type)
	assert.Equal(t, ViewChart, widget.View)
	assert.Equal(t, "doughnut", widget.Config.Type)
}

func TestParseGeneratedFencedContent(t *testing.T) {
	widget, err := defaultChartParser.ParseGenerated(GenerationResponse{
		Type:    WidgetTypeChart,
		Content: "```json\n{\"title\":\"x\",\"config\":\"{ type: 'bar', data: { labels: ['a'], datasets: [{ data: [1] }] } }\"}\n```",
	})
	require.NoError(t, err)
	assert.Equal(t, "bar", widget.Config.Type)
}

func TestProjectTable(t *testing.T) {
	table := ProjectTable(ChartConfig{
		Data: ChartData{
			Labels: []string{"Corolla", "Camry", "RAV4"},
			Datasets: []Dataset{
				{Data: []float64{1.5, 2}},
				{Label: "ignored", Data: []float64{9, 9, 9}},
			},
		},
	})
	assert.Equal(t, []string{"Model", "Value"}, table.Headers)
	assert.Equal(t, [][]string{{"Corolla", "1.5"}, {"Camry", "2"}, {"RAV4", ""}}, table.Rows)

	empty := ProjectTable(ChartConfig{})
	assert.Equal(t, []string{"Model", "Value"}, empty.Headers)
	assert.Empty(t, empty.Rows)
}

func TestColorsJSON(t *testing.T) {
	var c Colors
	require.NoError(t, c.UnmarshalJSON([]byte(`"red"`)))
	assert.Equal(t, Colors{"red"}, c)
	assert.Equal(t, "red", c.At(3))

	require.NoError(t, c.UnmarshalJSON([]byte(`["red","blue"]`)))
	assert.Equal(t, "blue", c.At(1))
	assert.Equal(t, "", c.At(2))
	assert.Error(t, c.UnmarshalJSON([]byte(`42`)))

	out, err := Colors{"red"}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"red"`, string(out))
}
