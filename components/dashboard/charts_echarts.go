package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var doughnutRadius = []string{"40%", "70%"}

// EChartsRenderer builds go-echarts charts from chart configurations.
type EChartsRenderer struct {
	theme      string
	assetsHost string
	height     string
}

// EChartsOption customizes the renderer.
type EChartsOption func(*EChartsRenderer)

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// WithChartHeight overrides the chart container height.
func WithChartHeight(height string) EChartsOption {
	return func(r *EChartsRenderer) {
		if height != "" {
			r.height = height
		}
	}
}

// NewEChartsRenderer builds a renderer.
func NewEChartsRenderer(opts ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type chartRenderable interface {
	Render(w io.Writer) error
}

type echartsChart interface {
	chartRenderable
	JSONNotEscaped() template.HTML
}

// Build returns a renderable chart for the configuration. Text reaches the
// chart unchanged; ECharts draws it on a canvas.
func (r *EChartsRenderer) Build(title string, cfg ChartConfig) (chartRenderable, error) {
	title = chartTitle(cfg, title)
	var chart echartsChart
	switch strings.ToLower(cfg.Type) {
	case "bar":
		chart = r.buildBar(title, cfg)
	case "line":
		chart = r.buildLine(title, cfg)
	case "pie":
		chart = r.buildPie(title, cfg, nil)
	case "doughnut":
		chart = r.buildPie(title, cfg, doughnutRadius)
	case "scatter":
		chart = r.buildScatter(title, cfg)
	default:
		return nil, fmt.Errorf("dashboard: unsupported chart type %q", cfg.Type)
	}
	return scriptSafeChart{chart: chart}, nil
}

// funcMarkers matches the markers go-echarts strips from rendered options.
var funcMarkers = regexp.MustCompile(`(__f__")|("__f__)|(__f__)`)

var scriptEscaper = strings.NewReplacer("<", `\u003c`, ">", `\u003e`, "&", `\u0026`)

// scriptSafeChart writes the option JSON with <, > and & as unicode escapes so
// chart text cannot close the surrounding script element.
type scriptSafeChart struct {
	chart echartsChart
}

func (c scriptSafeChart) Render(w io.Writer) error {
	var buf bytes.Buffer
	if err := c.chart.Render(&buf); err != nil {
		return err
	}
	markup := buf.String()
	option := funcMarkers.ReplaceAllString(string(c.chart.JSONNotEscaped()), "")
	safe := scriptEscaper.Replace(option)
	if safe != option {
		if !strings.Contains(markup, option) {
			return errors.New("dashboard: chart options not found in rendered markup")
		}
		markup = strings.Replace(markup, option, safe, 1)
	}
	_, err := io.WriteString(w, markup)
	return err
}

// RenderHTML renders the chart as a standalone HTML fragment.
func (r *EChartsRenderer) RenderHTML(title string, cfg ChartConfig) (string, error) {
	chart, err := r.Build(title, cfg)
	if err != nil {
		return "", err
	}
	return renderChart(chart)
}

func (r *EChartsRenderer) buildBar(title string, cfg ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalChartOptions(title)...)
	bar.SetXAxis(cfg.Data.Labels)
	for i, ds := range cfg.Data.Datasets {
		data := make([]opts.BarData, len(ds.Data))
		for j, value := range ds.Data {
			data[j] = opts.BarData{Name: labelAt(cfg.Data.Labels, j), Value: value}
			if len(ds.BackgroundColor) > 1 {
				data[j].ItemStyle = &opts.ItemStyle{Color: ds.BackgroundColor.At(j)}
			}
		}
		bar.AddSeries(seriesName(ds, i), data, seriesColor(ds)...)
	}
	return bar
}

func (r *EChartsRenderer) buildLine(title string, cfg ChartConfig) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(title)...)
	line.SetXAxis(cfg.Data.Labels)
	for i, ds := range cfg.Data.Datasets {
		data := make([]opts.LineData, len(ds.Data))
		for j, value := range ds.Data {
			data[j] = opts.LineData{Name: labelAt(cfg.Data.Labels, j), Value: value}
		}
		seriesOpts := seriesColor(ds)
		if ds.Tension > 0 {
			seriesOpts = append(seriesOpts, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		}
		line.AddSeries(seriesName(ds, i), data, seriesOpts...)
	}
	return line
}

// buildPie plots the first dataset, one slice per label.
func (r *EChartsRenderer) buildPie(title string, cfg ChartConfig, radius []string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalChartOptions(title)...)
	if len(cfg.Data.Datasets) == 0 {
		return pie
	}
	ds := cfg.Data.Datasets[0]
	data := make([]opts.PieData, len(ds.Data))
	for j, value := range ds.Data {
		name := labelAt(cfg.Data.Labels, j)
		if name == "" {
			name = fmt.Sprintf("Slice %d", j+1)
		}
		data[j] = opts.PieData{Name: name, Value: value}
		if color := ds.BackgroundColor.At(j); color != "" {
			data[j].ItemStyle = &opts.ItemStyle{Color: color}
		}
	}
	var seriesOpts []charts.SeriesOpts
	if radius != nil {
		seriesOpts = append(seriesOpts, charts.WithPieChartOpts(opts.PieChart{Radius: radius}))
	}
	pie.AddSeries(seriesName(ds, 0), data, seriesOpts...)
	return pie
}

func (r *EChartsRenderer) buildScatter(title string, cfg ChartConfig) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(r.globalChartOptions(title)...)
	scatter.SetXAxis(cfg.Data.Labels)
	for i, ds := range cfg.Data.Datasets {
		data := make([]opts.ScatterData, len(ds.Data))
		for j, value := range ds.Data {
			data[j] = opts.ScatterData{Name: labelAt(cfg.Data.Labels, j), Value: value}
		}
		scatter.AddSeries(seriesName(ds, i), data, seriesColor(ds)...)
	}
	return scatter
}

func renderChart(renderable chartRenderable) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

// seriesColor applies a single dataset color to the whole series.
func seriesColor(ds Dataset) []charts.SeriesOpts {
	color := ""
	if len(ds.BackgroundColor) == 1 {
		color = ds.BackgroundColor[0]
	} else if len(ds.BackgroundColor) == 0 && len(ds.BorderColor) == 1 {
		color = ds.BorderColor[0]
	}
	if color == "" {
		return nil
	}
	return []charts.SeriesOpts{charts.WithItemStyleOpts(opts.ItemStyle{Color: color})}
}

func seriesName(ds Dataset, idx int) string {
	if ds.Label != "" {
		return ds.Label
	}
	return fmt.Sprintf("Series %d", idx+1)
}

func labelAt(labels []string, idx int) string {
	if idx < len(labels) {
		return labels[idx]
	}
	return ""
}

// chartTitle prefers the title configured under options.plugins.title.text.
func chartTitle(cfg ChartConfig, fallback string) string {
	plugins, _ := cfg.Options["plugins"].(map[string]any)
	titleOpts, _ := plugins["title"].(map[string]any)
	if text, ok := titleOpts["text"].(string); ok && strings.TrimSpace(text) != "" {
		return text
	}
	if fallback == "" {
		return "Chart"
	}
	return fallback
}
