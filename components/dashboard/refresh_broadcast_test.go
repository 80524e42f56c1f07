package dashboard

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := BoardEvent{Reason: EventRemove, WidgetID: "w1"}
	if err := hook.BoardUpdated(context.Background(), event); err != nil {
		t.Fatalf("BoardUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.WidgetID != event.WidgetID || e.Reason != EventRemove {
			t.Fatalf("expected %+v, got %+v", event, e)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < 32; i++ {
		require.NoError(t, hook.BoardUpdated(context.Background(), BoardEvent{Reason: EventLayout}))
	}
}

func TestBroadcastHookCancelAndClose(t *testing.T) {
	hook := NewBroadcastHook()
	ch1, cancel1 := hook.Subscribe()
	ch2, _ := hook.Subscribe()
	assert.Equal(t, 2, hook.Subscribers())

	cancel1()
	cancel1()
	_, open := <-ch1
	assert.False(t, open)
	assert.Equal(t, 1, hook.Subscribers())

	hook.Close()
	_, open = <-ch2
	assert.False(t, open)
	assert.Equal(t, 0, hook.Subscribers())

	late, cancel := hook.Subscribe()
	defer cancel()
	_, open = <-late
	assert.False(t, open)
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.BoardUpdated(context.Background(), BoardEvent{Reason: EventAdd, WidgetID: "w1"}))

	var got BoardEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventAdd, got.Reason)
	assert.Equal(t, "w1", got.WidgetID)

	hook.Close()
	_ = conn.Close()
	server.Close()
}

func TestBroadcastHookServeSSE(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.BoardUpdated(context.Background(), BoardEvent{Reason: EventView, WidgetID: "w2"}))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: view\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: {"))
	assert.Contains(t, line, `"widget_id":"w2"`)

	hook.Close()
	_ = resp.Body.Close()
	server.Close()
}
