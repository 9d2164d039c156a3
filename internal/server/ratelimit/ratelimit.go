// Package ratelimit provides per-client token bucket rate limiting.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// bucket is a token bucket for one client+endpoint pair. Tokens refill
// continuously at the endpoint's rate up to the burst capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	refill   float64 // tokens per second
	tokens   float64
	last     time.Time
}

func newBucket(capacity int, refill float64) *bucket {
	return &bucket{
		capacity: float64(capacity),
		refill:   refill,
		tokens:   float64(capacity),
		last:     time.Now(),
	}
}

// take consumes one token if available.
func (b *bucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fill(time.Now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// status reports remaining whole tokens and when the bucket is full again.
func (b *bucket) status() (remaining int, resetAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.fill(now)

	remaining = int(b.tokens)
	resetAt = now
	if b.tokens < b.capacity {
		secondsUntilFull := (b.capacity - b.tokens) / b.refill
		resetAt = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return remaining, resetAt
}

func (b *bucket) fill(now time.Time) {
	elapsed := now.Sub(b.last).Seconds()
	b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refill)
	b.last = now
}

// Info describes the rate limit decision for one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter tracks one token bucket per client and limited endpoint.
// Idle buckets are swept periodically so long-gone clients do not
// accumulate.
type Limiter struct {
	cfg *Config

	mu       sync.Mutex
	buckets  map[string]*bucket
	lastSeen map[string]time.Time

	ticker *time.Ticker
	stop   chan struct{}
}

// NewLimiter creates a limiter for the given configuration. A nil
// config gets the default limit with no per-endpoint rules.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:       true,
			DefaultLimit:  defaultLimit,
			DefaultWindow: defaultWindow,
		}
	}

	l := &Limiter{
		cfg:      cfg,
		buckets:  make(map[string]*bucket),
		lastSeen: make(map[string]time.Time),
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		l.ticker = time.NewTicker(cfg.CleanupInterval)
		l.stop = make(chan struct{})
		go l.cleanupLoop()
	}

	return l
}

// Allow decides whether a request from clientID to the given endpoint
// may proceed.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.cfg.Allowlist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.cfg.Blocklist[clientID] {
		return false, Info{}
	}

	rule := MatchRule(path, method, l.cfg.Rules)
	if rule == nil {
		rule = &Rule{Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
	}
	if rule.Limit <= 0 {
		// Unlimited endpoint
		return true, Info{Allowed: true}
	}

	b := l.bucket(clientID+":"+method+" "+path, rule)
	allowed := b.take()
	remaining, resetAt := b.status()

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		if wait := time.Until(resetAt); wait > 0 {
			info.RetryAfter = wait
		}
	}
	return allowed, info
}

// bucket returns the bucket for a key, creating it on first use.
func (l *Limiter) bucket(key string, rule *Rule) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastSeen[key] = time.Now()
	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for over an hour.
func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, seen := range l.lastSeen {
		if seen.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastSeen, key)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.stop != nil {
		close(l.stop)
	}
}
