package queries

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// WidgetViewInput identifies a widget and, optionally, a display mode that
// overrides the persisted one.
type WidgetViewInput struct {
	WidgetID string
	Mode     dashboard.ViewMode
}

type widgetLookup interface {
	Widget(id string) (dashboard.Widget, bool)
}

// WidgetViewQuery renders a single widget.
type WidgetViewQuery struct {
	service  widgetLookup
	renderer dashboard.WidgetViewRenderer
}

// NewWidgetViewQuery builds the query.
func NewWidgetViewQuery(service widgetLookup, renderer dashboard.WidgetViewRenderer) *WidgetViewQuery {
	return &WidgetViewQuery{service: service, renderer: renderer}
}

var _ gocommand.Querier[WidgetViewInput, dashboard.RenderedView] = (*WidgetViewQuery)(nil)

// Query looks up the widget and renders it.
func (q *WidgetViewQuery) Query(ctx context.Context, input WidgetViewInput) (dashboard.RenderedView, error) {
	if q.service == nil || q.renderer == nil {
		return dashboard.RenderedView{}, errors.New("widget view query requires service and renderer")
	}
	widget, ok := q.service.Widget(input.WidgetID)
	if !ok {
		return dashboard.RenderedView{}, fmt.Errorf("%w: %s", dashboard.ErrWidgetNotFound, input.WidgetID)
	}
	mode := input.Mode
	if mode == "" {
		mode = widget.DisplayMode()
	}
	return q.renderer.Render(ctx, widget, mode)
}
