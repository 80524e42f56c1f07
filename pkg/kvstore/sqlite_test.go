package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-claims-dashboard/components/dashboard"
)

func TestSQLiteStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, ok, err := store.Get(ctx, dashboard.WidgetsKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, dashboard.WidgetsKey, `[]`))
	require.NoError(t, store.Set(ctx, dashboard.WidgetsKey, `[{"id":"w1"}]`))
	value, ok, err := store.Get(ctx, dashboard.WidgetsKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"w1"}]`, value)

	require.NoError(t, store.Set(ctx, dashboard.LayoutKey, `[]`))
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{dashboard.LayoutKey, dashboard.WidgetsKey}, keys)
}

func TestSQLiteStoreBacksDashboardService(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dashboard.db")
	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	board := dashboard.Board{Widgets: []dashboard.Widget{{
		ID:    "claims-monthly",
		Title: "Monthly claims",
		Type:  dashboard.WidgetTypeChart,
		Config: dashboard.ChartConfig{
			Type: "line",
			Data: dashboard.ChartData{
				Labels:   []string{"Jan", "Feb"},
				Datasets: []dashboard.Dataset{{Label: "Total", Data: []float64{48, 52}}},
			},
		},
		View: dashboard.ViewTable,
	}}}
	svc := dashboard.NewService(dashboard.Options{Store: store})
	require.NoError(t, svc.Load(ctx))
	require.NoError(t, svc.ImportBoard(ctx, board))
	before := svc.Snapshot()
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	again := dashboard.NewService(dashboard.Options{Store: reopened})
	require.NoError(t, again.Load(ctx))
	if diff := cmp.Diff(before, again.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("board changed across reopen (-want +got):\n%s", diff)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.Error(t, err)
	_, err = NewSQLiteStore(context.Background(), nil)
	assert.Error(t, err)
}
