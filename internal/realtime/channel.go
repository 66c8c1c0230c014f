// Package realtime maintains the websocket subscription to the
// per-user private event channel and fans incoming events out to
// registered listeners.
//
// The channel is an explicitly-owned object passed to whoever needs
// it; listeners register through Subscribe and can remove themselves
// independently. At most one underlying connection exists per process
// lifetime: once connected, later Connect calls are no-ops. A failed
// attempt leaves the channel unconnected, so the next Connect dials
// again. Events that arrive before Connect are lost; there is no
// buffering or replay.
//
// Transport failures are not surfaced to listeners. The channel is
// best-effort: when the connection drops, events silently stop and the
// failure is only visible in the log.
package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mfellner/pinnwand/internal/session"
)

// Handler receives events in arrival order. Dispatch is synchronous:
// a slow handler delays subsequent events.
type Handler func(Event)

// Channel is the process-wide realtime subscription.
type Channel struct {
	url         string
	environment string
	sessions    *session.Store
	logger      *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	listeners map[int]Handler
	nextID    int
}

// NewChannel creates an unconnected channel. The url is the websocket
// endpoint of the event broker; environment goes into the channel name
// so clients of different deployments never share a channel.
func NewChannel(url, environment string, sessions *session.Store, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		url:         url,
		environment: environment,
		sessions:    sessions,
		logger:      logger,
		listeners:   make(map[int]Handler),
	}
}

// Subscribe registers a listener and returns a function that removes
// it. Listeners added after Connect receive only events that arrive
// after registration.
func (c *Channel) Subscribe(fn Handler) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// subscribeFrame is the first frame sent after dialing; it names the
// private channel and proves the session token.
type subscribeFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Auth    string `json:"auth"`
}

// Connect dials the broker and subscribes to the user's private
// channel. If a connection already exists for this process, Connect
// returns immediately without touching it.
func (c *Channel) Connect(ctx context.Context, userID int) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = true
	c.mu.Unlock()

	token, err := c.sessions.Token()
	if err != nil {
		token = ""
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.reset()
		c.logger.Warn("realtime dial failed", zap.String("url", c.url), zap.Error(err))
		return fmt.Errorf("dialing realtime broker: %w", err)
	}

	channelName := fmt.Sprintf("private-%s-user.%d", c.environment, userID)
	frame := subscribeFrame{
		Event:   "subscribe",
		Channel: channelName,
		Auth:    "Bearer " + token,
	}
	if err := conn.WriteJSON(frame); err != nil {
		conn.Close()
		c.reset()
		c.logger.Warn("realtime subscribe failed", zap.String("channel", channelName), zap.Error(err))
		return fmt.Errorf("subscribing to %s: %w", channelName, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("realtime channel open",
		zap.String("channel", channelName),
		zap.Int("user_id", userID),
	)

	go c.readLoop(conn)
	return nil
}

// reset gives up the connection claim after a failed Connect so a
// later call gets to dial again. Only a live connection makes further
// Connect calls no-ops.
func (c *Channel) reset() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

// readLoop reads frames until the connection dies. The single reader
// guarantees listeners see events in arrival order.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Best-effort channel: events stop, the log is the only trace.
			c.logger.Warn("realtime channel closed", zap.Error(err))
			return
		}

		event, ok, err := decodeEvent(raw)
		if err != nil {
			c.logger.Warn("dropping malformed event", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		c.dispatch(event)
	}
}

// dispatch delivers one event to the listeners registered right now.
func (c *Channel) dispatch(event Event) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.listeners))
	for _, fn := range c.listeners {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(event)
	}
}

// Close tears down the connection. The application never calls this —
// the subscription lives for the process lifetime — but tests do.
func (c *Channel) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
