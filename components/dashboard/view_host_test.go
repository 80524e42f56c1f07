package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lifecycleLog records engine acquisition and disposal in order.
type lifecycleLog struct {
	mu     sync.Mutex
	events []string
	live   int
}

func (l *lifecycleLog) add(event string, delta int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	l.live += delta
}

func (l *lifecycleLog) snapshot() ([]string, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...), l.live
}

type fakeEngine struct {
	log      *lifecycleLog
	name     string
	disposed bool
}

func (e *fakeEngine) Render(w io.Writer) error {
	if e.disposed {
		return errEngineDisposed
	}
	_, err := io.WriteString(w, e.name)
	return err
}

func (e *fakeEngine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.log.add("dispose:"+e.name, -1)
}

type fakeFactory struct {
	log *lifecycleLog
	err error
}

func (f *fakeFactory) Acquire(_ context.Context, widget Widget, mode ViewMode) (Engine, error) {
	if f.err != nil {
		return nil, f.err
	}
	name := fmt.Sprintf("%s/%s", widget.ID, mode)
	f.log.add("acquire:"+name, 1)
	return &fakeEngine{log: f.log, name: name}, nil
}

func TestViewHostDisposesBeforeAcquiring(t *testing.T) {
	ctx := context.Background()
	log := &lifecycleLog{}
	host := NewViewHost(&fakeFactory{log: log}, nil)
	widget := sampleWidget("w1")

	var buf bytes.Buffer
	require.NoError(t, host.Render(ctx, widget, ViewChart, &buf))
	assert.Equal(t, "w1/chart", buf.String())

	require.NoError(t, host.Mount(ctx, widget, ViewChart))
	require.NoError(t, host.Mount(ctx, widget, ViewTable))
	require.NoError(t, host.Mount(ctx, widget, ViewChart))

	events, live := log.snapshot()
	assert.Equal(t, []string{
		"acquire:w1/chart",
		"dispose:w1/chart",
		"acquire:w1/table",
		"dispose:w1/table",
		"acquire:w1/chart",
	}, events)
	assert.Equal(t, 1, live)
}

func TestViewHostRemountsOnConfigChange(t *testing.T) {
	ctx := context.Background()
	log := &lifecycleLog{}
	host := NewViewHost(&fakeFactory{log: log}, nil)
	widget := sampleWidget("w1")
	require.NoError(t, host.Mount(ctx, widget, ViewChart))

	widget.Config.Data.Datasets[0].Data[0] = 42
	require.NoError(t, host.Mount(ctx, widget, ViewChart))

	events, live := log.snapshot()
	assert.Equal(t, []string{"acquire:w1/chart", "dispose:w1/chart", "acquire:w1/chart"}, events)
	assert.Equal(t, 1, live)
}

func TestViewHostReleasesOnRemoveAndClose(t *testing.T) {
	ctx := context.Background()
	log := &lifecycleLog{}
	host := NewViewHost(&fakeFactory{log: log}, nil)
	require.NoError(t, host.Mount(ctx, sampleWidget("w1"), ViewChart))
	require.NoError(t, host.Mount(ctx, sampleWidget("w2"), ViewTable))

	require.NoError(t, host.BoardUpdated(ctx, BoardEvent{Reason: EventRemove, WidgetID: "w1"}))
	assert.False(t, host.Mounted("w1"))
	assert.True(t, host.Mounted("w2"))
	assert.False(t, host.Unmount("w1"))

	host.Close()
	_, live := log.snapshot()
	assert.Equal(t, 0, live)
	assert.False(t, host.Mounted("w2"))
}

func TestViewHostReleasesEverythingOnImport(t *testing.T) {
	ctx := context.Background()
	log := &lifecycleLog{}
	host := NewViewHost(&fakeFactory{log: log}, nil)
	require.NoError(t, host.Mount(ctx, sampleWidget("w1"), ViewChart))
	require.NoError(t, host.BoardUpdated(ctx, BoardEvent{Reason: EventImport}))
	_, live := log.snapshot()
	assert.Equal(t, 0, live)
}

func TestViewHostAcquireFailureLeavesContainerEmpty(t *testing.T) {
	ctx := context.Background()
	log := &lifecycleLog{}
	factory := &fakeFactory{log: log}
	host := NewViewHost(factory, nil)
	require.NoError(t, host.Mount(ctx, sampleWidget("w1"), ViewChart))

	factory.err = errors.New("canvas unavailable")
	err := host.Mount(ctx, sampleWidget("w1"), ViewTable)
	require.Error(t, err)
	assert.False(t, host.Mounted("w1"))
	_, live := log.snapshot()
	assert.Equal(t, 0, live)
}

func TestViewHostRequiresWidgetID(t *testing.T) {
	host := NewViewHost(&fakeFactory{log: &lifecycleLog{}}, nil)
	assert.Error(t, host.Mount(context.Background(), Widget{}, ViewChart))
	assert.Error(t, NewViewHost(nil, nil).Mount(context.Background(), sampleWidget("w1"), ViewChart))
}

func TestDefaultEngineFactory(t *testing.T) {
	ctx := context.Background()
	templates := &stubRenderer{}
	factory := DefaultEngineFactory{Templates: templates}

	chart, err := factory.Acquire(ctx, sampleWidget("w1"), ViewChart)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, chart.Render(&buf))
	assert.Contains(t, buf.String(), "echarts")
	chart.Dispose()
	assert.ErrorIs(t, chart.Render(&buf), errEngineDisposed)

	table, err := factory.Acquire(ctx, sampleWidget("w1"), ViewTable)
	require.NoError(t, err)
	require.NoError(t, table.Render(&buf))
	assert.Equal(t, "widget_table", templates.lastTemplate)
	assert.Equal(t, []string{"Model", "Claims"}, templates.lastPayload["headers"])
	assert.Equal(t, [][]string{{"Corolla", "12"}, {"Camry", "7"}}, templates.lastPayload["rows"])
	table.Dispose()
	assert.ErrorIs(t, table.Render(&buf), errEngineDisposed)

	_, err = factory.Acquire(ctx, sampleWidget("w1"), "grid")
	assert.ErrorIs(t, err, ErrInvalidViewMode)
	_, err = DefaultEngineFactory{}.Acquire(ctx, sampleWidget("w1"), ViewTable)
	assert.Error(t, err)
}
