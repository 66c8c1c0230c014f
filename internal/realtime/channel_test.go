package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfellner/pinnwand/internal/model"
	"github.com/mfellner/pinnwand/internal/session"
)

// brokerStub is a minimal websocket event broker for tests. It records
// connection attempts and the subscribe frame, then plays back frames
// pushed through send.
type brokerStub struct {
	srv        *httptest.Server
	upgrader   websocket.Upgrader
	mu         sync.Mutex
	conn       *websocket.Conn
	subscribed subscribeFrame
	dials      atomic.Int32
}

func newBrokerStub(t *testing.T) *brokerStub {
	t.Helper()
	b := &brokerStub{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.dials.Add(1)
		conn, err := b.upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		var frame subscribeFrame
		require.NoError(t, conn.ReadJSON(&frame))

		b.mu.Lock()
		b.conn = conn
		b.subscribed = frame
		b.mu.Unlock()
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *brokerStub) wsURL() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

// send pushes a raw frame to the connected client, waiting for the
// connection to be established first.
func (b *brokerStub) send(t *testing.T, frame interface{}) {
	t.Helper()
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.conn != nil
	}, time.Second, 5*time.Millisecond)

	b.mu.Lock()
	defer b.mu.Unlock()
	require.NoError(t, b.conn.WriteJSON(frame))
}

func (b *brokerStub) subscribeFrame() subscribeFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribed
}

func commentFrame(messageID, commentID int, content string) map[string]interface{} {
	return map[string]interface{}{
		"event": EventCommentCreated,
		"data": map[string]interface{}{
			"chat": model.Comment{
				ID:        commentID,
				MessageID: messageID,
				Content:   content,
				User:      model.User{ID: 2, Name: "Bernd Maier"},
			},
		},
	}
}

func newTestChannel(t *testing.T, b *brokerStub) *Channel {
	t.Helper()
	sessions := session.New(keyring.NewArrayKeyring(nil))
	require.NoError(t, sessions.Set("ws-token", model.User{ID: 7}))
	ch := NewChannel(b.wsURL(), "test", sessions, nil)
	t.Cleanup(func() { ch.Close() })
	return ch
}

func TestConnectSubscribesPrivateUserChannel(t *testing.T) {
	broker := newBrokerStub(t)
	ch := newTestChannel(t, broker)

	require.NoError(t, ch.Connect(context.Background(), 7))

	require.Eventually(t, func() bool {
		return broker.subscribeFrame().Channel != ""
	}, time.Second, 5*time.Millisecond)

	frame := broker.subscribeFrame()
	assert.Equal(t, "subscribe", frame.Event)
	assert.Equal(t, "private-test-user.7", frame.Channel)
	assert.Equal(t, "Bearer ws-token", frame.Auth)
}

func TestConnectIsIdempotent(t *testing.T) {
	broker := newBrokerStub(t)
	ch := newTestChannel(t, broker)

	require.NoError(t, ch.Connect(context.Background(), 7))
	require.NoError(t, ch.Connect(context.Background(), 7))
	require.NoError(t, ch.Connect(context.Background(), 8))

	// Give any accidental second dial time to land.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), broker.dials.Load())
}

func TestEventsFanOutToAllListeners(t *testing.T) {
	broker := newBrokerStub(t)
	ch := newTestChannel(t, broker)

	got1 := make(chan Event, 4)
	got2 := make(chan Event, 4)
	ch.Subscribe(func(ev Event) { got1 <- ev })
	ch.Subscribe(func(ev Event) { got2 <- ev })

	require.NoError(t, ch.Connect(context.Background(), 7))
	broker.send(t, commentFrame(42, 501, "hello"))

	for _, got := range []chan Event{got1, got2} {
		select {
		case ev := <-got:
			require.NotNil(t, ev.Comment)
			assert.Equal(t, 501, ev.Comment.ID)
			assert.Equal(t, 42, ev.MessageID())
		case <-time.After(time.Second):
			t.Fatal("listener did not receive the event")
		}
	}
}

func TestRemovedListenerStopsReceiving(t *testing.T) {
	broker := newBrokerStub(t)
	ch := newTestChannel(t, broker)

	kept := make(chan Event, 4)
	removedCount := atomic.Int32{}
	ch.Subscribe(func(ev Event) { kept <- ev })
	remove := ch.Subscribe(func(ev Event) { removedCount.Add(1) })

	require.NoError(t, ch.Connect(context.Background(), 7))

	broker.send(t, commentFrame(42, 1, "first"))
	select {
	case <-kept:
	case <-time.After(time.Second):
		t.Fatal("first event not delivered")
	}
	require.Eventually(t, func() bool {
		return removedCount.Load() == 1
	}, time.Second, 5*time.Millisecond)

	remove()
	broker.send(t, commentFrame(42, 2, "second"))
	select {
	case <-kept:
	case <-time.After(time.Second):
		t.Fatal("second event not delivered")
	}

	// The removed listener saw only the first event.
	assert.Equal(t, int32(1), removedCount.Load())
}

func TestEventsArriveInOrder(t *testing.T) {
	broker := newBrokerStub(t)
	ch := newTestChannel(t, broker)

	var mu sync.Mutex
	var ids []int
	done := make(chan struct{})
	ch.Subscribe(func(ev Event) {
		mu.Lock()
		ids = append(ids, ev.Comment.ID)
		full := len(ids) == 3
		mu.Unlock()
		if full {
			close(done)
		}
	})

	require.NoError(t, ch.Connect(context.Background(), 7))
	for i := 1; i <= 3; i++ {
		broker.send(t, commentFrame(42, i, "n"))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestMessageCreatedDecodesSummary(t *testing.T) {
	raw := `{"event":"message.created","data":{"id":9,"title":"Serverwartung","creator":{"id":3,"name":"Clara Vogt"}}}`
	event, ok, err := decodeEvent([]byte(raw))
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, event.Message)
	assert.Equal(t, 9, event.MessageID())
	assert.Equal(t, "Serverwartung", event.Message.Title)
}

func TestStringEncodedPayloadDecodes(t *testing.T) {
	inner, err := json.Marshal(map[string]interface{}{
		"chat": model.Comment{ID: 77, MessageID: 42, Content: "doppelt"},
	})
	require.NoError(t, err)
	frame, err := json.Marshal(map[string]interface{}{
		"event": EventCommentCreated,
		"data":  string(inner),
	})
	require.NoError(t, err)

	event, ok, derr := decodeEvent(frame)
	require.NoError(t, derr)
	require.True(t, ok)
	require.NotNil(t, event.Comment)
	assert.Equal(t, 77, event.Comment.ID)
}

func TestUnknownEventsAreSkipped(t *testing.T) {
	_, ok, err := decodeEvent([]byte(`{"event":"pusher:ping","data":{}}`))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailedConnectAllowsRetry(t *testing.T) {
	var attempts atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First attempt is rejected before the upgrade, as a broker
		// restart would do.
		if attempts.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		var frame subscribeFrame
		require.NoError(t, conn.ReadJSON(&frame))
	}))
	t.Cleanup(srv.Close)

	sessions := session.New(keyring.NewArrayKeyring(nil))
	require.NoError(t, sessions.Set("ws-token", model.User{ID: 7}))
	ch := NewChannel("ws"+strings.TrimPrefix(srv.URL, "http"), "test", sessions, nil)
	t.Cleanup(func() { ch.Close() })

	require.Error(t, ch.Connect(context.Background(), 7))

	// The failed attempt must not claim the connection slot.
	require.NoError(t, ch.Connect(context.Background(), 7))
	assert.Equal(t, int32(2), attempts.Load())
}
