package claims

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

func TestMockClientFeedsClaimsPanels(t *testing.T) {
	mock := NewMockClient(DemoData())
	panels := dashboard.NewClaimsPanels(mock)
	for _, key := range panels.Panels() {
		widget, err := panels.Widget(context.Background(), key, 2024)
		if err != nil {
			t.Fatalf("panel %s returned error: %v", key, err)
		}
		if len(widget.Config.Data.Datasets) == 0 {
			t.Fatalf("panel %s has no datasets", key)
		}
	}
}

func TestMockClientReturnsCopies(t *testing.T) {
	mock := NewMockClient(DemoData())
	first, _ := mock.MonthlyClaims(context.Background(), 2024)
	first.Historical.Total[0] = -1
	second, _ := mock.MonthlyClaims(context.Background(), 2024)
	if second.Historical.Total[0] == -1 {
		t.Fatalf("expected mock to return copies")
	}
	if _, err := mock.MonthlyClaims(context.Background(), 3000); err == nil {
		t.Fatalf("expected invalid year error")
	}
}
