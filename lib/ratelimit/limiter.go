// Package ratelimit provides a simple token bucket rate limiter.
// It is used to throttle connection dials so that eviction churn cannot
// turn into a connection storm against the database.
package ratelimit

import (
	"sync"
	"time"

	dberrors "github.com/go-i2p/dbpool/lib/errors"
	"github.com/go-i2p/dbpool/lib/pool"
)

// Limiter is a token bucket rate limiter.
type Limiter struct {
	mu       sync.Mutex
	rate     float64   // tokens per second
	capacity float64   // max tokens
	tokens   float64   // current tokens
	lastTime time.Time // last refill time
}

// New creates a new rate limiter.
// rate is tokens per second, capacity is the maximum burst size.
func New(rate float64, capacity int) *Limiter {
	return &Limiter{
		rate:     rate,
		capacity: float64(capacity),
		tokens:   float64(capacity),
		lastTime: time.Now(),
	}
}

// Allow returns true if a dial is allowed, consuming one token.
// Returns false if the rate limit is exceeded.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()

	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastTime = now
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	return l.tokens
}

// Limit wraps a connection factory with the limiter. Dials beyond the
// configured rate fail with ErrRateLimited; the pool reports that as an
// ordinary factory failure with no table mutation, so the blocked worker
// can simply try again.
func (l *Limiter) Limit(factory pool.Factory) pool.Factory {
	return func() (pool.Connection, error) {
		if !l.Allow() {
			return nil, dberrors.ErrRateLimited
		}
		return factory()
	}
}
