package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var errEngineDisposed = errors.New("dashboard: render engine disposed")

// Engine is a live chart or table instance bound to one widget container.
type Engine interface {
	Render(w io.Writer) error
	Dispose()
}

// EngineFactory acquires engines for a widget and display mode.
type EngineFactory interface {
	Acquire(ctx context.Context, widget Widget, mode ViewMode) (Engine, error)
}

// ViewHost binds at most one engine to each widget container. The previous
// engine is disposed before a replacement is acquired, and every engine is
// disposed when its widget is removed or the host closes.
type ViewHost struct {
	factory   EngineFactory
	telemetry Telemetry

	mu      sync.Mutex
	mounted map[string]mountedEngine
}

type mountedEngine struct {
	engine Engine
	key    string
}

// NewViewHost builds a host around factory.
func NewViewHost(factory EngineFactory, telemetry Telemetry) *ViewHost {
	return &ViewHost{
		factory:   factory,
		telemetry: NormalizeTelemetry(telemetry),
		mounted:   make(map[string]mountedEngine),
	}
}

// Mount ensures the widget container holds an engine for the current config and
// mode. An unchanged widget keeps its engine.
func (h *ViewHost) Mount(ctx context.Context, widget Widget, mode ViewMode) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.mountLocked(ctx, widget, mode)
	return err
}

// Render mounts the widget and renders its engine into w.
func (h *ViewHost) Render(ctx context.Context, widget Widget, mode ViewMode, w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	engine, err := h.mountLocked(ctx, widget, mode)
	if err != nil {
		return err
	}
	return engine.Render(w)
}

func (h *ViewHost) mountLocked(ctx context.Context, widget Widget, mode ViewMode) (Engine, error) {
	if widget.ID == "" {
		return nil, errMissingWidgetID
	}
	if h.factory == nil {
		return nil, errors.New("dashboard: view host has no engine factory")
	}
	key := string(mode) + ":" + configHash(widget.Config)
	if current, ok := h.mounted[widget.ID]; ok {
		if current.key == key {
			return current.engine, nil
		}
		current.engine.Dispose()
		delete(h.mounted, widget.ID)
		h.telemetry.Record(ctx, "dashboard.view.dispose", map[string]any{"widget_id": widget.ID})
	}
	engine, err := h.factory.Acquire(ctx, widget, mode)
	if err != nil {
		return nil, fmt.Errorf("dashboard: acquire %s engine for %s: %w", mode, widget.ID, err)
	}
	h.mounted[widget.ID] = mountedEngine{engine: engine, key: key}
	h.telemetry.Record(ctx, "dashboard.view.acquire", map[string]any{
		"widget_id": widget.ID,
		"mode":      string(mode),
	})
	return engine, nil
}

// Unmount disposes the engine bound to the container.
func (h *ViewHost) Unmount(widgetID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.mounted[widgetID]
	if !ok {
		return false
	}
	current.engine.Dispose()
	delete(h.mounted, widgetID)
	return true
}

// Mounted reports whether the container holds an engine.
func (h *ViewHost) Mounted(widgetID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.mounted[widgetID]
	return ok
}

// Close disposes every engine.
func (h *ViewHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, current := range h.mounted {
		current.engine.Dispose()
		delete(h.mounted, id)
	}
}

// BoardUpdated releases engines for removed widgets and for every widget when
// the board is replaced.
func (h *ViewHost) BoardUpdated(_ context.Context, event BoardEvent) error {
	switch event.Reason {
	case EventRemove:
		h.Unmount(event.WidgetID)
	case EventLoad, EventImport:
		h.Close()
	}
	return nil
}

// DefaultEngineFactory renders chart mode with go-echarts and table mode with
// the template renderer.
type DefaultEngineFactory struct {
	Charts    *EChartsRenderer
	Templates Renderer
}

// Acquire builds a fresh engine.
func (f DefaultEngineFactory) Acquire(_ context.Context, widget Widget, mode ViewMode) (Engine, error) {
	switch mode {
	case ViewChart:
		charts := f.Charts
		if charts == nil {
			charts = NewEChartsRenderer()
		}
		chart, err := charts.Build(widget.Title, widget.Config)
		if err != nil {
			return nil, err
		}
		return &chartEngine{chart: chart}, nil
	case ViewTable:
		if f.Templates == nil {
			return nil, errors.New("dashboard: table renderer not configured")
		}
		table := ProjectTable(widget.Config)
		return &tableEngine{
			renderer: f.Templates,
			data: map[string]any{
				"widget_id": widget.ID,
				"title":     widget.Title,
				"headers":   table.Headers,
				"rows":      table.Rows,
			},
		}, nil
	default:
		return nil, ErrInvalidViewMode
	}
}

type chartEngine struct {
	mu    sync.Mutex
	chart chartRenderable
}

func (e *chartEngine) Render(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.chart == nil {
		return errEngineDisposed
	}
	return e.chart.Render(w)
}

func (e *chartEngine) Dispose() {
	e.mu.Lock()
	e.chart = nil
	e.mu.Unlock()
}

type tableEngine struct {
	mu       sync.Mutex
	renderer Renderer
	data     map[string]any
}

func (e *tableEngine) Render(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.renderer == nil {
		return errEngineDisposed
	}
	_, err := e.renderer.Render("widget_table", e.data, w)
	return err
}

func (e *tableEngine) Dispose() {
	e.mu.Lock()
	e.renderer = nil
	e.data = nil
	e.mu.Unlock()
}
