package devserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterEntry is a per-client limiter and when it was last used.
type limiterEntry struct {
	l        *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client key, allowing
// perMinute requests per minute with an equal burst.
type limiterPool struct {
	mu        sync.Mutex
	m         map[string]*limiterEntry
	perMinute int
	ttl       time.Duration
	now       func() time.Time
}

func newLimiterPool(perMinute int) *limiterPool {
	return &limiterPool{
		m:         make(map[string]*limiterEntry),
		perMinute: perMinute,
		ttl:       10 * time.Minute,
		now:       time.Now,
	}
}

// Allow reports whether key may make a request now. A pool with a
// non-positive limit allows everything.
func (p *limiterPool) Allow(key string) bool {
	if p.perMinute <= 0 {
		return true
	}
	return p.get(key).AllowN(p.now(), 1)
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if e, ok := p.m[key]; ok {
		e.lastSeen = now
		return e.l
	}
	p.evictLocked(now)

	every := time.Minute / time.Duration(p.perMinute)
	l := rate.NewLimiter(rate.Every(every), p.perMinute)
	p.m[key] = &limiterEntry{l: l, lastSeen: now}
	return l
}

// evictLocked removes limiters unused for longer than the ttl.
func (p *limiterPool) evictLocked(now time.Time) {
	cutoff := now.Add(-p.ttl)
	for k, e := range p.m {
		if e.lastSeen.Before(cutoff) {
			delete(p.m, k)
		}
	}
}
