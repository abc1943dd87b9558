// Package session holds the per-widget conversational state: the session
// identifier, the latest booking target and the single-flight send flag.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Context is the session state of one widget instance. The zero value is
// not usable; create one with New.
type Context struct {
	mu         sync.Mutex
	sessionID  string
	fallbackID string
	bookingURL string
	sending    bool
	newID      func() string
}

// Option configures a Context.
type Option func(*Context)

// WithIDGenerator overrides how the fallback session identifier is made.
func WithIDGenerator(gen func() string) Option {
	return func(c *Context) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// New returns a Context. A non-empty initialID is adopted as the session
// identifier immediately.
func New(initialID string, opts ...Option) *Context {
	c := &Context{
		sessionID: initialID,
		newID:     defaultID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultID() string {
	return "sess-" + uuid.NewString()
}

// SessionID returns the assigned identifier, or "" while unset.
func (c *Context) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// SetSessionID assigns the identifier if none is set yet. It reports
// whether id was accepted.
func (c *Context) SetSessionID(id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != "" {
		return false
	}
	c.sessionID = id
	return true
}

// RequestSessionID is the identifier to put on the wire: the assigned one,
// or a fallback generated once for the life of this Context.
func (c *Context) RequestSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != "" {
		return c.sessionID
	}
	if c.fallbackID == "" {
		c.fallbackID = c.newID()
	}
	return c.fallbackID
}

// BookingURL returns the latest known booking target, or "".
func (c *Context) BookingURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bookingURL
}

// SetBookingURL records url when non-empty. An empty url never clears a
// previously learned value.
func (c *Context) SetBookingURL(url string) bool {
	if url == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookingURL = url
	return true
}

// TryAcquireSend sets the sending flag if it is clear and reports whether
// the caller may proceed.
func (c *Context) TryAcquireSend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sending {
		return false
	}
	c.sending = true
	return true
}

// ReleaseSend clears the sending flag.
func (c *Context) ReleaseSend() {
	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()
}

// Sending reports whether a send is outstanding.
func (c *Context) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}
