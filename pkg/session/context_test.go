package session

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSessionIDAcceptsOnce(t *testing.T) {
	c := New("")
	assert.True(t, c.SetSessionID("a"))
	assert.False(t, c.SetSessionID("b"))
	assert.Equal(t, "a", c.SessionID())
}

func TestSetSessionIDIgnoresEmpty(t *testing.T) {
	c := New("")
	assert.False(t, c.SetSessionID(""))
	assert.Equal(t, "", c.SessionID())
}

func TestInitialSessionIDWins(t *testing.T) {
	c := New("host-provided")
	assert.False(t, c.SetSessionID("server"))
	assert.Equal(t, "host-provided", c.SessionID())
	assert.Equal(t, "host-provided", c.RequestSessionID())
}

func TestBookingURLIsMonotonic(t *testing.T) {
	c := New("")
	assert.Equal(t, "", c.BookingURL())
	assert.True(t, c.SetBookingURL("u1"))
	assert.False(t, c.SetBookingURL(""))
	assert.Equal(t, "u1", c.BookingURL())
	assert.True(t, c.SetBookingURL("u2"))
	assert.Equal(t, "u2", c.BookingURL())
}

func TestRequestSessionIDFallback(t *testing.T) {
	calls := 0
	c := New("", WithIDGenerator(func() string {
		calls++
		return "fallback"
	}))

	assert.Equal(t, "fallback", c.RequestSessionID())
	assert.Equal(t, "fallback", c.RequestSessionID())
	assert.Equal(t, 1, calls, "fallback must be generated once")
	assert.Equal(t, "", c.SessionID(), "fallback is not an assignment")

	require.True(t, c.SetSessionID("s1"))
	assert.Equal(t, "s1", c.RequestSessionID())
}

func TestDefaultFallbackIsUniquePerContext(t *testing.T) {
	a := New("").RequestSessionID()
	b := New("").RequestSessionID()
	assert.True(t, strings.HasPrefix(a, "sess-"))
	assert.NotEqual(t, a, b)
}

func TestAcquireRelease(t *testing.T) {
	c := New("")
	require.True(t, c.TryAcquireSend())
	assert.True(t, c.Sending())
	assert.False(t, c.TryAcquireSend())
	c.ReleaseSend()
	assert.False(t, c.Sending())
	assert.True(t, c.TryAcquireSend())
}

func TestConcurrentAcquireGrantsOne(t *testing.T) {
	c := New("")
	var granted int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryAcquireSend() {
				atomic.AddInt32(&granted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), granted)
}
