package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-claims-dashboard/pkg/activity"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations without importing internal
// packages.
type Options struct {
	Store          KeyValueStore
	RefreshHook    RefreshHook
	Telemetry      Telemetry
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
}

// Service owns the widget collection and its grid layout. Persistence is enabled
// once Load has run; earlier mutations stay in memory.
type Service struct {
	opts     Options
	activity *activity.Emitter

	mu      sync.RWMutex
	widgets []Widget
	layout  []LayoutEntry
	loaded  bool
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = NormalizeTelemetry(opts.Telemetry)
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		widgets:  []Widget{},
		layout:   []LayoutEntry{},
	}
}

// Load reads both collections from the store and enables persistence. Absent or
// unreadable entries load as empty collections. Layout entries without a widget
// are dropped and widgets without an entry are placed at the bottom.
func (s *Service) Load(ctx context.Context) error {
	widgets, err := readCollection[Widget](ctx, s.opts.Store, WidgetsKey)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.store.read_error", map[string]any{
			"key":   WidgetsKey,
			"error": err.Error(),
		})
	}
	layout, err := readCollection[LayoutEntry](ctx, s.opts.Store, LayoutKey)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.store.read_error", map[string]any{
			"key":   LayoutKey,
			"error": err.Error(),
		})
	}
	widgets, layout = reconcileBoard(widgets, layout)

	s.mu.Lock()
	s.widgets = widgets
	s.layout = layout
	s.loaded = true
	s.mu.Unlock()

	s.recordTelemetry(ctx, "dashboard.board.load", map[string]any{
		"widgets": len(widgets),
		"layout":  len(layout),
	})
	s.notify(ctx, BoardEvent{Reason: EventLoad, Layout: cloneLayout(layout)})
	return nil
}

// Loaded reports whether Load has completed.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Widgets returns the widget collection in insertion order.
func (s *Service) Widgets() []Widget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWidgets(s.widgets)
}

// Widget returns a single widget.
func (s *Service) Widget(id string) (Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOfWidget(s.widgets, id)
	if idx < 0 {
		return Widget{}, false
	}
	return cloneWidget(s.widgets[idx]), true
}

// Layout returns the ordered layout collection.
func (s *Service) Layout() []LayoutEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLayout(s.layout)
}

// Snapshot returns both collections captured under one lock.
func (s *Service) Snapshot() Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Board{Widgets: cloneWidgets(s.widgets), Layout: cloneLayout(s.layout)}
}

// addWidget appends a widget and its layout entry. Only accepted previews reach
// the board, so this stays unexported.
func (s *Service) addWidget(ctx context.Context, widget Widget) (LayoutEntry, error) {
	if strings.TrimSpace(widget.ID) == "" {
		return LayoutEntry{}, errMissingWidgetID
	}
	s.mu.Lock()
	if indexOfWidget(s.widgets, widget.ID) >= 0 {
		s.mu.Unlock()
		return LayoutEntry{}, fmt.Errorf("dashboard: widget %s already exists", widget.ID)
	}
	entry := nextLayoutEntry(s.layout, widget.ID)
	s.widgets = append(s.widgets, cloneWidget(widget))
	s.layout = append(s.layout, entry)
	s.persistLocked(ctx, true, true)
	s.mu.Unlock()

	s.notify(ctx, BoardEvent{Reason: EventAdd, WidgetID: widget.ID, Widget: &widget})
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"widget_id":  widget.ID,
		"chart_type": widget.Config.Type,
	})
	s.emitActivity(ctx, "dashboard.widget.add", "widget", widget.ID, map[string]any{
		"title":      widget.Title,
		"chart_type": widget.Config.Type,
	})
	return entry, nil
}

// RemoveWidget deletes the widget and every layout entry naming it in a single
// update.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	if strings.TrimSpace(widgetID) == "" {
		return errMissingWidgetID
	}
	s.mu.Lock()
	widgets := make([]Widget, 0, len(s.widgets))
	var removed *Widget
	for _, w := range s.widgets {
		if w.ID == widgetID {
			w := w
			removed = &w
			continue
		}
		widgets = append(widgets, w)
	}
	layout := make([]LayoutEntry, 0, len(s.layout))
	for _, entry := range s.layout {
		if entry.ID != widgetID {
			layout = append(layout, entry)
		}
	}
	if removed == nil && len(layout) == len(s.layout) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	s.widgets = widgets
	s.layout = layout
	s.persistLocked(ctx, true, true)
	s.mu.Unlock()

	s.notify(ctx, BoardEvent{Reason: EventRemove, WidgetID: widgetID})
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{"widget_id": widgetID})
	metadata := map[string]any{}
	if removed != nil {
		metadata["title"] = removed.Title
	}
	s.emitActivity(ctx, "dashboard.widget.remove", "widget", widgetID, metadata)
	return nil
}

// UpdateLayout replaces the layout after a drag or resize. Entries for unknown
// widgets are dropped and sizes are clamped to the grid.
func (s *Service) UpdateLayout(ctx context.Context, entries []LayoutEntry) ([]LayoutEntry, error) {
	s.mu.Lock()
	known := make(map[string]struct{}, len(s.widgets))
	for _, w := range s.widgets {
		known[w.ID] = struct{}{}
	}
	s.layout = normalizeLayout(entries, known, s.layout)
	layout := cloneLayout(s.layout)
	s.persistLocked(ctx, false, true)
	s.mu.Unlock()

	s.notify(ctx, BoardEvent{Reason: EventLayout, Layout: layout})
	s.recordTelemetry(ctx, "dashboard.layout.update", map[string]any{
		"submitted": len(entries),
		"kept":      len(layout),
	})
	s.emitActivity(ctx, "dashboard.layout.update", "layout", LayoutKey, map[string]any{"count": len(layout)})
	return layout, nil
}

// SetWidgetView persists the preferred display mode of a widget.
func (s *Service) SetWidgetView(ctx context.Context, widgetID string, mode ViewMode) error {
	if strings.TrimSpace(widgetID) == "" {
		return errMissingWidgetID
	}
	if !mode.Valid() {
		return ErrInvalidViewMode
	}
	s.mu.Lock()
	idx := indexOfWidget(s.widgets, widgetID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, widgetID)
	}
	s.widgets[idx].View = mode
	widget := cloneWidget(s.widgets[idx])
	s.persistLocked(ctx, true, false)
	s.mu.Unlock()

	s.notify(ctx, BoardEvent{Reason: EventView, WidgetID: widgetID, Widget: &widget})
	s.recordTelemetry(ctx, "dashboard.widget.view", map[string]any{
		"widget_id": widgetID,
		"view":      string(mode),
	})
	s.emitActivity(ctx, "dashboard.widget.view", "widget", widgetID, map[string]any{"view": string(mode)})
	return nil
}

// ImportBoard replaces the board with the provided collections. Widgets must be
// charts with unique ids; the layout is reconciled the same way Load does.
func (s *Service) ImportBoard(ctx context.Context, board Board) error {
	seen := make(map[string]struct{}, len(board.Widgets))
	for _, w := range board.Widgets {
		if strings.TrimSpace(w.ID) == "" {
			return errMissingWidgetID
		}
		if w.Type != WidgetTypeChart {
			return fmt.Errorf("dashboard: widget %s has unsupported type %q", w.ID, w.Type)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("dashboard: duplicate widget id %s", w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	widgets, layout := reconcileBoard(cloneWidgets(board.Widgets), cloneLayout(board.Layout))

	s.mu.Lock()
	s.widgets = widgets
	s.layout = layout
	s.persistLocked(ctx, true, true)
	s.mu.Unlock()

	s.notify(ctx, BoardEvent{Reason: EventImport, Layout: cloneLayout(layout)})
	s.recordTelemetry(ctx, "dashboard.board.import", map[string]any{"widgets": len(widgets)})
	s.emitActivity(ctx, "dashboard.board.import", "board", WidgetsKey, map[string]any{"widgets": len(widgets)})
	return nil
}

// NotifyBoardUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyBoardUpdated(ctx context.Context, event BoardEvent) error {
	if event.Reason == "" {
		event.Reason = EventRefresh
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.opts.RefreshHook.BoardUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.board.event", map[string]any{
		"reason":    event.Reason,
		"widget_id": event.WidgetID,
	})
	return nil
}

func (s *Service) notify(ctx context.Context, event BoardEvent) {
	event.OccurredAt = time.Now().UTC()
	if err := s.opts.RefreshHook.BoardUpdated(ctx, event); err != nil {
		s.recordTelemetry(ctx, "dashboard.refresh.error", map[string]any{
			"reason": event.Reason,
			"error":  err.Error(),
		})
	}
}

// persistLocked writes the requested collections. Callers hold s.mu. Write
// failures keep the in-memory state and are reported through telemetry.
func (s *Service) persistLocked(ctx context.Context, widgets, layout bool) {
	if !s.loaded {
		s.recordTelemetry(ctx, "dashboard.store.skip_write", map[string]any{"reason": "not_loaded"})
		return
	}
	if widgets {
		if err := writeCollection(ctx, s.opts.Store, WidgetsKey, s.widgets); err != nil {
			s.recordTelemetry(ctx, "dashboard.store.write_error", map[string]any{"key": WidgetsKey, "error": err.Error()})
		}
	}
	if layout {
		if err := writeCollection(ctx, s.opts.Store, LayoutKey, s.layout); err != nil {
			s.recordTelemetry(ctx, "dashboard.store.write_error", map[string]any{"key": LayoutKey, "error": err.Error()})
		}
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func reconcileBoard(widgets []Widget, layout []LayoutEntry) ([]Widget, []LayoutEntry) {
	known := make(map[string]struct{}, len(widgets))
	for _, w := range widgets {
		known[w.ID] = struct{}{}
	}
	kept := make([]LayoutEntry, 0, len(layout))
	placed := make(map[string]struct{}, len(layout))
	for _, entry := range layout {
		if _, ok := known[entry.ID]; !ok {
			continue
		}
		if _, dup := placed[entry.ID]; dup {
			continue
		}
		placed[entry.ID] = struct{}{}
		kept = append(kept, entry)
	}
	for _, w := range widgets {
		if _, ok := placed[w.ID]; ok {
			continue
		}
		kept = append(kept, nextLayoutEntry(kept, w.ID))
		placed[w.ID] = struct{}{}
	}
	return widgets, kept
}

func indexOfWidget(widgets []Widget, id string) int {
	for i, w := range widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func cloneWidgets(widgets []Widget) []Widget {
	out := make([]Widget, len(widgets))
	for i, w := range widgets {
		out[i] = cloneWidget(w)
	}
	return out
}

func cloneWidget(w Widget) Widget {
	out := w
	out.Config.Data.Labels = append([]string(nil), w.Config.Data.Labels...)
	out.Config.Data.Datasets = make([]Dataset, len(w.Config.Data.Datasets))
	for i, ds := range w.Config.Data.Datasets {
		ds.Data = append([]float64(nil), ds.Data...)
		ds.BackgroundColor = append(Colors(nil), ds.BackgroundColor...)
		ds.BorderColor = append(Colors(nil), ds.BorderColor...)
		out.Config.Data.Datasets[i] = ds
	}
	if w.Config.Options != nil {
		out.Config.Options = make(map[string]any, len(w.Config.Options))
		for k, v := range w.Config.Options {
			out.Config.Options[k] = v
		}
	}
	return out
}

func cloneLayout(layout []LayoutEntry) []LayoutEntry {
	out := make([]LayoutEntry, len(layout))
	copy(out, layout)
	return out
}

type noopRefreshHook struct{}

func (noopRefreshHook) BoardUpdated(context.Context, BoardEvent) error {
	return nil
}
