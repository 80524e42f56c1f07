package dashboard

import (
	"context"
	"encoding/json"
	"time"
)

// WidgetTypeChart is the only widget type the dashboard accepts.
const WidgetTypeChart = "chart"

// ViewMode selects how a widget is displayed.
type ViewMode string

const (
	ViewChart ViewMode = "chart"
	ViewTable ViewMode = "table"
)

// Valid reports whether the mode is a known display mode.
func (m ViewMode) Valid() bool {
	return m == ViewChart || m == ViewTable
}

// KeyValueStore persists string values under string keys (browser local storage,
// SQLite table, in-memory map).
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Generator turns a natural language prompt into a generated widget payload.
type Generator interface {
	Generate(ctx context.Context, prompt string) (GenerationResponse, error)
}

// RefreshHook notifies transports (WebSocket/SSE, view hosts) about board changes.
type RefreshHook interface {
	BoardUpdated(ctx context.Context, event BoardEvent) error
}

// GenerationResponse is the envelope returned by the widget generation backend.
// Content holds JSON text with a title and a chart configuration.
type GenerationResponse struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Widget is a titled chart on the dashboard.
type Widget struct {
	ID     string      `json:"id" yaml:"id"`
	Title  string      `json:"title" yaml:"title"`
	Type   string      `json:"type" yaml:"type"`
	Config ChartConfig `json:"config" yaml:"config"`
	View   ViewMode    `json:"view,omitempty" yaml:"view,omitempty"`
}

// DisplayMode returns the persisted view mode, defaulting to chart.
func (w Widget) DisplayMode() ViewMode {
	if w.View.Valid() {
		return w.View
	}
	return ViewChart
}

// ChartConfig describes a chart: its kind, labelled data series and display options.
type ChartConfig struct {
	Type    string         `json:"type" yaml:"type"`
	Data    ChartData      `json:"data" yaml:"data"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// ChartData holds category labels and the series plotted against them.
type ChartData struct {
	Labels   []string  `json:"labels" yaml:"labels"`
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
}

// Dataset is a single named series.
type Dataset struct {
	Label           string    `json:"label,omitempty" yaml:"label,omitempty"`
	Data            []float64 `json:"data" yaml:"data"`
	BackgroundColor Colors    `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     Colors    `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty" yaml:"borderWidth,omitempty"`
	Fill            *bool     `json:"fill,omitempty" yaml:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty" yaml:"tension,omitempty"`
}

// Colors accepts either a single color or one color per data point.
type Colors []string

// At returns the color for the point index, repeating a single color.
func (c Colors) At(i int) string {
	switch {
	case len(c) == 0:
		return ""
	case len(c) == 1:
		return c[0]
	case i < len(c):
		return c[i]
	default:
		return ""
	}
}

// UnmarshalJSON decodes a string or an array of strings.
func (c *Colors) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = Colors{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*c = Colors(many)
	return nil
}

// MarshalJSON encodes a single color as a string.
func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

// LayoutEntry places a widget on the 12 column grid. JSON field names follow the
// grid library used by the browser client so persisted layouts stay compatible.
type LayoutEntry struct {
	ID   string `json:"i" yaml:"i"`
	X    int    `json:"x" yaml:"x"`
	Y    int    `json:"y" yaml:"y"`
	W    int    `json:"w" yaml:"w"`
	H    int    `json:"h" yaml:"h"`
	MinW int    `json:"minW,omitempty" yaml:"minW,omitempty"`
	MinH int    `json:"minH,omitempty" yaml:"minH,omitempty"`
}

// Board is a point in time copy of the widget collection and its layout.
type Board struct {
	Widgets []Widget      `json:"widgets" yaml:"widgets"`
	Layout  []LayoutEntry `json:"layout" yaml:"layout"`
}

// Board event reasons.
const (
	EventLoad    = "load"
	EventAdd     = "add"
	EventRemove  = "remove"
	EventLayout  = "layout"
	EventView    = "view"
	EventImport  = "import"
	EventRefresh = "refresh"
)

// BoardEvent describes changes that transports might care about.
type BoardEvent struct {
	Reason     string        `json:"reason"`
	WidgetID   string        `json:"widget_id,omitempty"`
	Widget     *Widget       `json:"widget,omitempty"`
	Layout     []LayoutEntry `json:"layout,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
