package queries

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

type stubBoardService struct {
	widgets map[string]dashboard.Widget
}

func (s *stubBoardService) Snapshot() dashboard.Board {
	board := dashboard.Board{}
	for _, w := range s.widgets {
		board.Widgets = append(board.Widgets, w)
	}
	return board
}

func (s *stubBoardService) Widget(id string) (dashboard.Widget, bool) {
	w, ok := s.widgets[id]
	return w, ok
}

type stubRenderer struct {
	calls    int
	lastMode dashboard.ViewMode
}

func (r *stubRenderer) Render(_ context.Context, widget dashboard.Widget, mode dashboard.ViewMode) (dashboard.RenderedView, error) {
	r.calls++
	r.lastMode = mode
	return dashboard.RenderedView{WidgetID: widget.ID, Title: widget.Title, Mode: mode, HTML: "<div></div>"}, nil
}

type stubPanels struct {
	panel      string
	year       int
	statusCode string
}

func (p *stubPanels) Widget(_ context.Context, panel string, year int) (dashboard.Widget, error) {
	p.panel, p.year = panel, year
	return dashboard.Widget{ID: "claims-" + panel}, nil
}

func (p *stubPanels) Summary(_ context.Context, statusCode string) (dashboard.ClaimSummary, error) {
	p.statusCode = statusCode
	return dashboard.ClaimSummary{Month: dashboard.PeriodSummary{Value: 42}}, nil
}

func TestBoardQuery(t *testing.T) {
	service := &stubBoardService{widgets: map[string]dashboard.Widget{"w1": {ID: "w1"}}}
	board, err := NewBoardQuery(service).Query(context.Background(), BoardInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(board.Widgets) != 1 {
		t.Fatalf("expected 1 widget, got %d", len(board.Widgets))
	}
}

func TestWidgetViewQueryUsesPersistedMode(t *testing.T) {
	service := &stubBoardService{widgets: map[string]dashboard.Widget{
		"w1": {ID: "w1", Title: "Claims", View: dashboard.ViewTable},
	}}
	renderer := &stubRenderer{}
	query := NewWidgetViewQuery(service, renderer)

	view, err := query.Query(context.Background(), WidgetViewInput{WidgetID: "w1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if view.Mode != dashboard.ViewTable || renderer.lastMode != dashboard.ViewTable {
		t.Fatalf("expected persisted table mode, got %s", view.Mode)
	}
	if _, err := query.Query(context.Background(), WidgetViewInput{WidgetID: "w1", Mode: dashboard.ViewChart}); err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if renderer.lastMode != dashboard.ViewChart {
		t.Fatalf("expected override mode, got %s", renderer.lastMode)
	}
}

func TestWidgetViewQueryUnknownWidget(t *testing.T) {
	query := NewWidgetViewQuery(&stubBoardService{}, &stubRenderer{})
	_, err := query.Query(context.Background(), WidgetViewInput{WidgetID: "missing"})
	if !errors.Is(err, dashboard.ErrWidgetNotFound) {
		t.Fatalf("expected ErrWidgetNotFound, got %v", err)
	}
}

func TestFlowQuery(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	flows := dashboard.NewFlowManager(service, dashboard.FlowOptions{})
	if _, err := flows.Open(context.Background(), "f1"); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	snap, err := NewFlowQuery(flows).Query(context.Background(), FlowInput{FlowID: "f1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if snap.State != dashboard.FlowPrompt {
		t.Fatalf("expected prompt state, got %s", snap.State)
	}
	if _, err := NewFlowQuery(flows).Query(context.Background(), FlowInput{FlowID: "nope"}); err == nil {
		t.Fatalf("expected error for unknown flow")
	}
}

func TestClaimsQueries(t *testing.T) {
	panels := &stubPanels{}
	widget, err := NewClaimsPanelQuery(panels).Query(context.Background(), ClaimsPanelInput{Panel: "monthly-claims", Year: 2024})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if widget.ID != "claims-monthly-claims" || panels.year != 2024 {
		t.Fatalf("unexpected panel call %+v / %+v", widget, panels)
	}
	summary, err := NewClaimsSummaryQuery(panels).Query(context.Background(), ClaimsSummaryInput{StatusCode: "A"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if summary.Month.Value != 42 || panels.statusCode != "A" {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestQueriesRequireDependencies(t *testing.T) {
	ctx := context.Background()
	if _, err := NewBoardQuery(nil).Query(ctx, BoardInput{}); err == nil {
		t.Fatalf("expected board query error")
	}
	if _, err := NewWidgetViewQuery(nil, nil).Query(ctx, WidgetViewInput{}); err == nil {
		t.Fatalf("expected widget view query error")
	}
	if _, err := NewFlowQuery(nil).Query(ctx, FlowInput{}); err == nil {
		t.Fatalf("expected flow query error")
	}
	if _, err := NewClaimsPanelQuery(nil).Query(ctx, ClaimsPanelInput{}); err == nil {
		t.Fatalf("expected claims query error")
	}
}
