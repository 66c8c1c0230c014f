// Package feedback drives the single-slot transient banner shown at the
// bottom of every screen. The HTTP gateway raises a loading notice
// before each request and a success or error notice when the response
// arrives; success and error notices expire on their own after a fixed
// delay, and every new notice replaces whatever is currently shown.
package feedback

import (
	"sync"
	"time"
)

// Kind classifies a notice.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
	KindLoading
)

// DefaultTTL is how long a success or error notice stays visible.
const DefaultTTL = 5 * time.Second

// Notice is the banner content. A zero Notice (empty text) means the
// slot is clear.
type Notice struct {
	Text string
	Kind Kind
}

// Center owns the notice slot. It is safe for concurrent use: HTTP
// calls running as Bubble Tea commands raise notices from their own
// goroutines.
type Center struct {
	mu       sync.Mutex
	current  *Notice
	gen      uint64
	ttl      time.Duration
	timer    *time.Timer
	listener func(Notice)

	// dispatchMu serializes listener deliveries so they cannot cross
	// each other when notices race.
	dispatchMu sync.Mutex
}

// NewCenter returns a Center with the given notice lifetime. A ttl of
// zero means DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl}
}

// SetListener registers the callback invoked after every slot change.
// The app wires this to program.Send so the banner re-renders. The
// callback receives the zero Notice when the slot clears.
func (c *Center) SetListener(fn func(Notice)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = fn
}

// Loading shows a loading notice. Loading notices do not expire on
// their own; the response path replaces or clears them.
func (c *Center) Loading(text string) {
	c.set(Notice{Text: text, Kind: KindLoading}, false)
}

// Success shows a success notice that expires after the configured TTL.
func (c *Center) Success(text string) {
	c.set(Notice{Text: text, Kind: KindSuccess}, true)
}

// Error shows an error notice that expires after the configured TTL.
func (c *Center) Error(text string) {
	c.set(Notice{Text: text, Kind: KindError}, true)
}

// Clear empties the slot and invalidates any pending expiry.
func (c *Center) Clear() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.current = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.notify(gen, Notice{})
}

// Current returns the notice currently in the slot, or false if the
// slot is clear.
func (c *Center) Current() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notice{}, false
	}
	return *c.current, true
}

// set replaces the slot content. The generation counter ties each
// expiry timer to the notice it was armed for, so a timer that fires
// after its notice was replaced does nothing.
func (c *Center) set(n Notice, expire bool) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.current = &n
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if expire {
		c.timer = time.AfterFunc(c.ttl, func() {
			c.expire(gen)
		})
	}
	c.mu.Unlock()

	c.notify(gen, n)
}

// expire clears the slot only if it still holds the notice the timer
// was armed for.
func (c *Center) expire(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	cleared := c.gen
	c.current = nil
	c.timer = nil
	c.mu.Unlock()

	c.notify(cleared, Notice{})
}

// notify delivers one slot change to the listener. Deliveries are
// serialized, and a delivery whose generation no longer matches the
// slot is dropped, so the last delivery the listener sees is always
// the notice the slot holds.
func (c *Center) notify(gen uint64, n Notice) {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	fn := c.listener
	stale := c.gen != gen
	c.mu.Unlock()

	if fn == nil || stale {
		return
	}
	fn(n)
}
