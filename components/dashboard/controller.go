package dashboard

import (
	"context"
	"errors"
	"io"
)

// ControllerOptions wires the controller.
type ControllerOptions struct {
	Service   *Service
	Widgets   *WidgetRenderer
	Templates Renderer
	Telemetry Telemetry
	Title     string
	// BoardEndpoint and WebSocketEndpoint are exposed to the page script.
	BoardEndpoint     string
	WebSocketEndpoint string
}

// Controller renders the dashboard page and its JSON payload.
type Controller struct {
	opts ControllerOptions
}

// BoardPayload is the JSON document served to dashboard clients.
type BoardPayload struct {
	Loaded  bool          `json:"loaded"`
	Widgets []Widget      `json:"widgets"`
	Layout  []LayoutEntry `json:"layout"`
	Columns int           `json:"columns"`
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Title == "" {
		opts.Title = "Claims Dashboard"
	}
	opts.Telemetry = NormalizeTelemetry(opts.Telemetry)
	return &Controller{opts: opts}
}

// BoardPayload returns the current board.
func (c *Controller) BoardPayload(context.Context) (BoardPayload, error) {
	if c.opts.Service == nil {
		return BoardPayload{}, errors.New("dashboard: controller has no service")
	}
	board := c.opts.Service.Snapshot()
	return BoardPayload{
		Loaded:  c.opts.Service.Loaded(),
		Widgets: board.Widgets,
		Layout:  board.Layout,
		Columns: GridColumns,
	}, nil
}

// RenderPage renders every widget in layout order into the dashboard page. A
// widget that fails to render shows its error in place.
func (c *Controller) RenderPage(ctx context.Context, out io.Writer) error {
	if c.opts.Service == nil || c.opts.Templates == nil || c.opts.Widgets == nil {
		return errors.New("dashboard: controller requires service, widget renderer and templates")
	}
	board := c.opts.Service.Snapshot()
	byID := make(map[string]Widget, len(board.Widgets))
	for _, w := range board.Widgets {
		byID[w.ID] = w
	}
	items := make([]map[string]any, 0, len(board.Layout))
	for _, entry := range board.Layout {
		widget, ok := byID[entry.ID]
		if !ok {
			continue
		}
		item := map[string]any{
			"id":      widget.ID,
			"title":   widget.Title,
			"mode":    string(widget.DisplayMode()),
			"x_start": entry.X + 1,
			"y_start": entry.Y + 1,
			"w":       entry.W,
			"h":       entry.H,
		}
		view, err := c.opts.Widgets.Render(ctx, widget, widget.DisplayMode())
		if err != nil {
			item["error"] = err.Error()
			c.opts.Telemetry.Record(ctx, "dashboard.widget.render_error", map[string]any{
				"widget_id": widget.ID,
				"error":     err.Error(),
			})
		} else {
			item["html"] = view.HTML
		}
		items = append(items, item)
	}
	_, err := c.opts.Templates.Render("dashboard", map[string]any{
		"title":          c.opts.Title,
		"columns":        GridColumns,
		"items":          items,
		"board_endpoint": c.opts.BoardEndpoint,
		"ws_endpoint":    c.opts.WebSocketEndpoint,
	}, out)
	return err
}
