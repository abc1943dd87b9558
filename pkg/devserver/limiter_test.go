package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterPool(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	p := newLimiterPool(5)
	p.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.True(t, p.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, p.Allow("10.0.0.1"))
	assert.True(t, p.Allow("10.0.0.2"), "clients are limited separately")

	// one token refills every 12s
	now = now.Add(12 * time.Second)
	assert.True(t, p.Allow("10.0.0.1"))
	assert.False(t, p.Allow("10.0.0.1"))
}

func TestLimiterPoolEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	p := newLimiterPool(1)
	p.now = func() time.Time { return now }

	p.Allow("a")
	now = now.Add(11 * time.Minute)
	p.Allow("b")
	_, ok := p.m["a"]
	assert.False(t, ok)
}

func TestLimiterPoolDisabled(t *testing.T) {
	p := newLimiterPool(-1)
	for i := 0; i < 100; i++ {
		assert.True(t, p.Allow("x"))
	}
}
