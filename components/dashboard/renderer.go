package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// Renderer describes the template renderer contract used for tables and pages.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// WidgetViewRenderer renders a widget in one display mode.
type WidgetViewRenderer interface {
	Render(ctx context.Context, widget Widget, mode ViewMode) (RenderedView, error)
}

// RenderedView is a widget rendered in one display mode.
type RenderedView struct {
	WidgetID string           `json:"widget_id"`
	Title    string           `json:"title"`
	Mode     ViewMode         `json:"mode"`
	HTML     string           `json:"html"`
	Table    *TableProjection `json:"table,omitempty"`
}

// WidgetRenderer renders widgets through a ViewHost and memoizes the HTML.
type WidgetRenderer struct {
	host  *ViewHost
	cache RenderCache
}

// WidgetRendererOption customizes the renderer.
type WidgetRendererOption func(*WidgetRenderer)

// WithRenderCache injects a render cache.
func WithRenderCache(cache RenderCache) WidgetRendererOption {
	return func(r *WidgetRenderer) {
		r.cache = cache
	}
}

var _ WidgetViewRenderer = (*WidgetRenderer)(nil)

// NewWidgetRenderer builds a renderer on top of host.
func NewWidgetRenderer(host *ViewHost, opts ...WidgetRendererOption) *WidgetRenderer {
	r := &WidgetRenderer{
		host:  host,
		cache: NewChartCache(5 * time.Minute),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the widget rendered in mode. An empty mode uses the widget's
// persisted view.
func (r *WidgetRenderer) Render(ctx context.Context, widget Widget, mode ViewMode) (RenderedView, error) {
	if mode == "" {
		mode = widget.DisplayMode()
	}
	if !mode.Valid() {
		return RenderedView{}, ErrInvalidViewMode
	}
	// The container always holds the engine for the served mode, even when
	// the HTML comes from the cache.
	if err := r.host.Mount(ctx, widget, mode); err != nil {
		return RenderedView{}, err
	}
	render := func() (string, error) {
		var buf bytes.Buffer
		if err := r.host.Render(ctx, widget, mode, &buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	var (
		html string
		err  error
	)
	if r.cache != nil {
		key := fmt.Sprintf("%s:%s:%s", widget.ID, mode, configHash(widget.Config))
		html, err = r.cache.GetOrRender(key, render)
	} else {
		html, err = render()
	}
	if err != nil {
		return RenderedView{}, err
	}
	view := RenderedView{
		WidgetID: widget.ID,
		Title:    widget.Title,
		Mode:     mode,
		HTML:     html,
	}
	if mode == ViewTable {
		table := ProjectTable(widget.Config)
		view.Table = &table
	}
	return view, nil
}

// BoardUpdated releases engines and cached HTML for removed widgets.
func (r *WidgetRenderer) BoardUpdated(ctx context.Context, event BoardEvent) error {
	if event.Reason == EventRemove {
		if p, ok := r.cache.(interface{ Purge(prefix string) }); ok {
			p.Purge(event.WidgetID + ":")
		}
	}
	return r.host.BoardUpdated(ctx, event)
}
